package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is the current submission record for one student on one
// assignment. A new upload replaces the previous record, so the
// (assignment_id, student_id) pair is unique.
type Submission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AssignmentID uint   `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    string `gorm:"size:255;not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	FileURL      string `gorm:"size:512" json:"file_url"`
	FilePublicID string `gorm:"size:512" json:"-"`
	Status       string `gorm:"size:32;not null" json:"status"`
	// Score lies in [0, 1]; nil until graded.
	Score   *float64 `json:"score"`
	Comment string   `gorm:"type:text" json:"comment"`
	Graded  bool     `gorm:"not null;default:false" json:"graded"`
	// Approved implies Graded. It resets to false on every re-submission.
	Approved bool `gorm:"not null;default:false" json:"approved"`
	// Degraded marks a sentinel grade produced when the grading provider
	// failed or returned an unparsable reply.
	Degraded       bool           `gorm:"not null;default:false" json:"degraded"`
	DegradedReason string         `gorm:"size:512" json:"degraded_reason,omitempty"`
	RawResult      datatypes.JSON `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Assignment     Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Submission lifecycle states.
const (
	// SubmissionStatusUploaded means the file is stored but no grade is
	// attached, typically because text extraction failed.
	SubmissionStatusUploaded = "uploaded"
	// SubmissionStatusGraded means an automated or manual grade is attached.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusApproved means a staff reviewer confirmed the grade.
	SubmissionStatusApproved = "approved"
)

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Graded
}
