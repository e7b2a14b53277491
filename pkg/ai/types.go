package ai

import "context"

// GradeInput carries the artefacts needed to grade one submitted document.
type GradeInput struct {
	AssignmentTitle string
	// Topic is the instructor-supplied rubric topic. It is treated as
	// untrusted and neutralized before entering the prompt.
	Topic        string
	DocumentText string
	// Credential optionally overrides the service-wide API key for this call.
	Credential string
}

// GradeResult is the structured outcome of a grading call.
type GradeResult struct {
	// Score lies in [0, 1].
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
	// Degraded marks a sentinel result produced because the provider reply
	// could not be parsed. Transport failures surface as errors instead and
	// are converted by the caller.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
	// RawReply preserves the provider output for auditing.
	RawReply string `json:"raw_reply,omitempty"`
}

// Grader describes an LLM capable of scoring a document against a rubric.
type Grader interface {
	Grade(ctx context.Context, input GradeInput) (GradeResult, error)
}
