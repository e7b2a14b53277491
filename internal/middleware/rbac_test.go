package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newRoleApp(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserRole, role)
		return c.Next()
	})
	app.Use(RequireRole("staff", "teacher", "admin"))
	app.Get("/staff", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsStaffRoles(t *testing.T) {
	for _, role := range []string{"staff", "teacher", "admin", " Teacher "} {
		app := newRoleApp(role)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "role %q", role)
	}
}

func TestRequireRoleRejectsLearners(t *testing.T) {
	for _, role := range []string{"student", "", "observer"} {
		app := newRoleApp(role)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode, "role %q", role)
	}
}

func TestJWTProtectedResolvesIdentity(t *testing.T) {
	const secret = "test-secret"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "alice",
		"role": "Student",
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(JWTProtected(secret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		require.Equal(t, "alice", c.Locals(LocalUserID))
		require.Equal(t, "student", c.Locals(LocalUserRole))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(JWTProtected("test-secret"))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
