package dto

import (
	"time"

	"github.com/skilltrack/rubric-api/internal/models"
)

// OverrideRequest carries a staff grade override. Any subset of the fields
// may be supplied; omitted fields keep their current value.
type OverrideRequest struct {
	Score   *float64 `json:"score" validate:"omitempty,gte=0,lte=1"`
	Comment *string  `json:"comment"`
	Approve *bool    `json:"approve"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint      `json:"id"`
	AssignmentID   uint      `json:"assignment_id"`
	StudentID      string    `json:"student_id"`
	FileURL        string    `json:"file_url"`
	Status         string    `json:"status"`
	Score          *float64  `json:"score"`
	Comment        string    `json:"comment"`
	Graded         bool      `json:"graded"`
	Approved       bool      `json:"approved"`
	Degraded       bool      `json:"degraded"`
	DegradedReason string    `json:"degraded_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             model.ID,
		AssignmentID:   model.AssignmentID,
		StudentID:      model.StudentID,
		FileURL:        model.FileURL,
		Status:         model.Status,
		Score:          model.Score,
		Comment:        model.Comment,
		Graded:         model.Graded,
		Approved:       model.Approved,
		Degraded:       model.Degraded,
		DegradedReason: model.DegradedReason,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
