package dto

import (
	"time"

	"github.com/skilltrack/rubric-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment
// instance together with its grading policy.
type AssignmentCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	PromptTopic string  `json:"prompt_topic" validate:"required,min=3"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
	Credential  string  `json:"credential"`
}

// PolicyUpdateRequest updates the grading policy of an existing assignment.
type PolicyUpdateRequest struct {
	PromptTopic *string  `json:"prompt_topic" validate:"omitempty,min=3"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0,lte=1"`
	Credential  *string  `json:"credential"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	PromptTopic string    `json:"prompt_topic"`
	Weight      float64   `json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PolicyResponse exposes the grading policy without leaking the credential.
type PolicyResponse struct {
	PromptTopic   string  `json:"prompt_topic"`
	Weight        float64 `json:"weight"`
	CredentialSet bool    `json:"credential_set"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		PromptTopic: model.PromptTopic,
		Weight:      model.Weight,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// NewPolicyResponse converts an Assignment model into a policy DTO.
func NewPolicyResponse(model models.Assignment) PolicyResponse {
	return PolicyResponse{
		PromptTopic:   model.PromptTopic,
		Weight:        model.Weight,
		CredentialSet: model.Credential != "",
	}
}
