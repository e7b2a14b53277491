package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skilltrack/rubric-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestRenderStudentWithoutSubmission(t *testing.T) {
	assignment := models.Assignment{Title: "History Essay", PromptTopic: "Peter the Great", Weight: 0.5}

	model := Render(RoleStudent, assignment, nil)

	require.Equal(t, StateNoSubmission, model.State)
	require.Equal(t, "History Essay", model.AssignmentTitle)
	require.Nil(t, model.Score)
	require.Empty(t, model.PromptTopic, "students must not see the rubric topic")
	require.Empty(t, model.Actions)
}

func TestRenderStudentGraded(t *testing.T) {
	assignment := models.Assignment{Title: "History Essay"}
	submission := models.Submission{
		Status:  models.SubmissionStatusGraded,
		Score:   floatPtr(0.8),
		Comment: "Good start",
		Graded:  true,
	}

	model := Render(RoleStudent, assignment, &submission)

	require.Equal(t, StateGraded, model.State)
	require.Equal(t, 0.8, *model.Score)
	require.Equal(t, "Good start", model.Comment)
	require.Empty(t, model.DegradedNotice)
}

func TestRenderStudentDegradedGrade(t *testing.T) {
	assignment := models.Assignment{Title: "History Essay"}
	submission := models.Submission{
		Status:         models.SubmissionStatusGraded,
		Score:          floatPtr(0),
		Graded:         true,
		Degraded:       true,
		DegradedReason: "provider unreachable",
	}

	model := Render(RoleStudent, assignment, &submission)

	require.Equal(t, "provider unreachable", model.DegradedNotice)
}

func TestRenderStaffAffordances(t *testing.T) {
	assignment := models.Assignment{Title: "History Essay", PromptTopic: "Peter the Great", Weight: 0.7}
	submission := models.Submission{
		Status:  models.SubmissionStatusGraded,
		Score:   floatPtr(0.8),
		Graded:  true,
		FileURL: "https://files.test/essay.docx",
	}

	model := Render(RoleStaff, assignment, &submission)

	require.Equal(t, "Peter the Great", model.PromptTopic)
	require.Equal(t, 0.7, model.Weight)
	require.Contains(t, model.Actions, "override")
	require.Contains(t, model.Actions, "approve")
	require.Contains(t, model.Actions, "reset")
	require.Equal(t, "https://files.test/essay.docx", model.FileURL)
}

func TestRenderStaffApprovedHidesApproveAction(t *testing.T) {
	assignment := models.Assignment{Title: "History Essay"}
	submission := models.Submission{
		Status:   models.SubmissionStatusApproved,
		Graded:   true,
		Approved: true,
	}

	model := Render(RoleStaff, assignment, &submission)

	require.Equal(t, StateApproved, model.State)
	require.NotContains(t, model.Actions, "approve")
	require.Contains(t, model.Actions, "reset")
}

func TestRenderIsPure(t *testing.T) {
	assignment := models.Assignment{Title: "Essay"}
	submission := models.Submission{Graded: true, Score: floatPtr(0.4)}

	first := Render(RoleStaff, assignment, &submission)
	second := Render(RoleStaff, assignment, &submission)
	require.Equal(t, first, second)
}
