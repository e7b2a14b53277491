package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/skilltrack/rubric-api/internal/middleware"
	"github.com/skilltrack/rubric-api/internal/service"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

// actorFromCtx resolves the caller identity placed in locals by the JWT
// middleware.
func actorFromCtx(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}

	if value := c.Locals(middleware.LocalUserID); value != nil {
		actor.ID = fmt.Sprintf("%v", value)
	}
	if value := c.Locals(middleware.LocalUserRole); value != nil {
		actor.Role = fmt.Sprintf("%v", value)
	}

	return actor
}
