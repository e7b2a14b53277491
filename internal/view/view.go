package view

import "github.com/skilltrack/rubric-api/internal/models"

// Role selects which view of the workflow state gets rendered.
type Role string

// Caller roles.
const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

// SubmissionState summarises a learner's progress through the workflow.
type SubmissionState string

// Workflow states surfaced to clients.
const (
	StateNoSubmission SubmissionState = "no_submission"
	StateUploaded     SubmissionState = "uploaded"
	StateGraded       SubmissionState = "graded"
	StateApproved     SubmissionState = "approved"
)

// Model is the render-engine-independent view model for one learner's
// workflow state.
type Model struct {
	Role            Role            `json:"role"`
	AssignmentTitle string          `json:"assignment_title"`
	State           SubmissionState `json:"state"`
	Score           *float64        `json:"score,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	// DegradedNotice is set when the displayed grade is a sentinel produced
	// by a grading-provider failure.
	DegradedNotice string `json:"degraded_notice,omitempty"`
	// Staff-only affordances.
	PromptTopic string   `json:"prompt_topic,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	FileURL     string   `json:"file_url,omitempty"`
}

// Render produces the view model for a caller role and workflow state. It is
// a pure function of its inputs; submission may be nil when the learner has
// not submitted yet.
func Render(role Role, assignment models.Assignment, submission *models.Submission) Model {
	model := Model{
		Role:            role,
		AssignmentTitle: assignment.Title,
		State:           StateNoSubmission,
	}

	if submission != nil {
		model.State = stateOf(*submission)
		model.Score = submission.Score
		model.Comment = submission.Comment
		if submission.Degraded {
			model.DegradedNotice = submission.DegradedReason
		}
	}

	if role == RoleStaff {
		model.PromptTopic = assignment.PromptTopic
		model.Weight = assignment.Weight
		model.Actions = staffActions(submission)
		if submission != nil {
			model.FileURL = submission.FileURL
		}
	}

	return model
}

func stateOf(submission models.Submission) SubmissionState {
	switch {
	case submission.Approved:
		return StateApproved
	case submission.Graded:
		return StateGraded
	default:
		return StateUploaded
	}
}

func staffActions(submission *models.Submission) []string {
	actions := []string{"edit_policy"}
	if submission == nil {
		return actions
	}

	actions = append(actions, "override", "reset")
	if submission.Graded && !submission.Approved {
		actions = append(actions, "approve")
	}

	return actions
}
