package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/skilltrack/rubric-api/internal/dto"
)

func newPolicyService(t *testing.T) (PolicyService, *memoryAssignmentRepo) {
	t.Helper()
	repo := newMemoryAssignmentRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewPolicyService(repo, validate, testLogger()), repo
}

func TestPolicyServiceCreateAssignment(t *testing.T) {
	svc, _ := newPolicyService(t)

	result, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "History Essay",
		PromptTopic: "the reforms of Peter the Great",
		Weight:      0.5,
	}, staff)
	require.NoError(t, err)
	require.Equal(t, "History Essay", result.Title)
	require.InDelta(t, 0.5, result.Weight, 1e-9)
	require.NotZero(t, result.ID)
}

func TestPolicyServiceCreateAssignmentRequiresStaff(t *testing.T) {
	svc, repo := newPolicyService(t)

	_, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "History Essay",
		PromptTopic: "anything",
	}, alice)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, repo.assignments)
}

func TestPolicyServiceCreateAssignmentValidation(t *testing.T) {
	svc, _ := newPolicyService(t)

	_, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "ok",
		PromptTopic: "",
	}, staff)
	require.Error(t, err)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestPolicyServiceGetAssignmentMissing(t *testing.T) {
	svc, _ := newPolicyService(t)

	_, err := svc.GetAssignment(context.Background(), 42)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestPolicyServicePolicyRoundTrip(t *testing.T) {
	svc, _ := newPolicyService(t)

	created, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "History Essay",
		PromptTopic: "the reforms of Peter the Great",
		Weight:      1,
	}, staff)
	require.NoError(t, err)

	policy, err := svc.GetPolicy(context.Background(), created.ID, staff)
	require.NoError(t, err)
	require.Equal(t, "the reforms of Peter the Great", policy.PromptTopic)
	require.False(t, policy.CredentialSet)

	topic := "the industrial revolution"
	credential := "course-api-key"
	weight := 0.25
	updated, err := svc.SetPolicy(context.Background(), created.ID, dto.PolicyUpdateRequest{
		PromptTopic: &topic,
		Weight:      &weight,
		Credential:  &credential,
	}, staff)
	require.NoError(t, err)
	require.Equal(t, topic, updated.PromptTopic)
	require.InDelta(t, 0.25, updated.Weight, 1e-9)
	require.True(t, updated.CredentialSet)
}

func TestPolicyServiceSetPolicyPartialUpdate(t *testing.T) {
	svc, _ := newPolicyService(t)

	created, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "History Essay",
		PromptTopic: "original topic",
		Weight:      1,
	}, staff)
	require.NoError(t, err)

	weight := 0.75
	updated, err := svc.SetPolicy(context.Background(), created.ID, dto.PolicyUpdateRequest{Weight: &weight}, staff)
	require.NoError(t, err)
	require.Equal(t, "original topic", updated.PromptTopic)
	require.InDelta(t, 0.75, updated.Weight, 1e-9)
}

func TestPolicyServicePolicyAccessRequiresStaff(t *testing.T) {
	svc, _ := newPolicyService(t)

	created, err := svc.CreateAssignment(context.Background(), dto.AssignmentCreateRequest{
		Title:       "History Essay",
		PromptTopic: "topic here",
		Weight:      1,
	}, staff)
	require.NoError(t, err)

	_, err = svc.GetPolicy(context.Background(), created.ID, alice)
	require.ErrorIs(t, err, ErrUnauthorized)

	topic := "hijacked"
	_, err = svc.SetPolicy(context.Background(), created.ID, dto.PolicyUpdateRequest{PromptTopic: &topic}, alice)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPolicyServiceSetPolicyMissingAssignment(t *testing.T) {
	svc, _ := newPolicyService(t)

	topic := "whatever"
	_, err := svc.SetPolicy(context.Background(), 99, dto.PolicyUpdateRequest{PromptTopic: &topic}, staff)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
