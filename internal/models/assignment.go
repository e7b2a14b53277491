package models

import "time"

// Assignment represents a graded assignment instance together with its
// grading policy. The policy parameterises the rubric prompt and the
// connection to the external grading provider.
type Assignment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	PromptTopic string `gorm:"type:text" json:"prompt_topic"`
	// Weight is the multiplier applied when this grade is aggregated into a
	// course grade. Aggregation itself happens in the host gradebook.
	Weight float64 `gorm:"not null;default:1" json:"weight"`
	// Credential overrides the service-wide grading API key for this
	// assignment. Never serialized into API responses.
	Credential  string    `gorm:"size:512" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Submissions []Submission
}
