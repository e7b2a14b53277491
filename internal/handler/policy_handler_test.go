package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonRequest(method, path, body, user, role string) *http.Request {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)
	return req
}

func TestPolicyHandlerCreateAndFetch(t *testing.T) {
	f := setupGradingApp(t)

	payload := `{"title":"History Essay","prompt_topic":"the reforms of Peter the Great","weight":1,"credential":"course-key"}`
	resp, err := f.app.Test(jsonRequest(http.MethodPost, "/api/v1/assignments", payload, "reviewer", "staff"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}
	decodeData(t, resp, &created)
	require.NotZero(t, created.ID)
	require.Equal(t, "History Essay", created.Title)

	// The credential never appears in any response body.
	resp, err = f.app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d/policy", created.ID), "", "reviewer", "staff"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var policy struct {
		PromptTopic   string  `json:"prompt_topic"`
		Weight        float64 `json:"weight"`
		CredentialSet bool    `json:"credential_set"`
	}
	decodeData(t, resp, &policy)
	require.Equal(t, "the reforms of Peter the Great", policy.PromptTopic)
	require.True(t, policy.CredentialSet)

	resp, err = f.app.Test(jsonRequest(http.MethodGet, "/api/v1/assignments", "", "alice", "student"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []struct {
		ID         uint    `json:"id"`
		Credential *string `json:"credential"`
	}
	decodeData(t, resp, &list)
	require.Len(t, list, 1)
	require.Nil(t, list[0].Credential)
}

func TestPolicyHandlerStudentCannotManage(t *testing.T) {
	f := setupGradingApp(t)
	assignment := f.createAssignment(t)

	payload := `{"title":"Rogue","prompt_topic":"anything at all"}`
	resp, err := f.app.Test(jsonRequest(http.MethodPost, "/api/v1/assignments", payload, "alice", "student"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = f.app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d/policy", assignment.ID), "", "alice", "student"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	update := `{"prompt_topic":"hijacked topic"}`
	resp, err = f.app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/assignments/%d/policy", assignment.ID), update, "alice", "student"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPolicyHandlerUpdatePolicy(t *testing.T) {
	f := setupGradingApp(t)
	assignment := f.createAssignment(t)

	update := `{"prompt_topic":"the industrial revolution","weight":0.5}`
	resp, err := f.app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/assignments/%d/policy", assignment.ID), update, "reviewer", "staff"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var policy struct {
		PromptTopic string  `json:"prompt_topic"`
		Weight      float64 `json:"weight"`
	}
	decodeData(t, resp, &policy)
	require.Equal(t, "the industrial revolution", policy.PromptTopic)
	require.InDelta(t, 0.5, policy.Weight, 1e-9)
}

func TestPolicyHandlerUpdateMissingAssignment(t *testing.T) {
	f := setupGradingApp(t)

	update := `{"prompt_topic":"anything here"}`
	resp, err := f.app.Test(jsonRequest(http.MethodPut, "/api/v1/assignments/404/policy", update, "reviewer", "staff"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
