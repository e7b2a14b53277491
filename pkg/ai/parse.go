package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// gradeReplySchema pins the shape the provider must return. Range handling
// is deliberately left out of the schema: out-of-range scores are clamped
// rather than rejected, so a provider that returns 1.05 still yields a
// usable grade.
const gradeReplySchema = `{
	"type": "object",
	"required": ["score", "comment"],
	"properties": {
		"score": {"type": "number"},
		"comment": {"type": "string"}
	}
}`

var replySchema = jsonschema.MustCompileString("grade-reply.json", gradeReplySchema)

// ParseGradeResponse decodes the provider reply into a GradeResult. It never
// fails: any decode or schema violation produces the sentinel result
// {score: 0, comment: diagnostic} with Degraded set, so the caller always
// has something displayable.
func ParseGradeResponse(raw string) GradeResult {
	content := stripCodeFence(raw)

	var value interface{}
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return sentinelResult(fmt.Sprintf("reply is not valid JSON: %v", err), raw)
	}

	if err := replySchema.Validate(value); err != nil {
		return sentinelResult(fmt.Sprintf("reply does not match the expected shape: %v", err), raw)
	}

	var payload struct {
		Score   float64 `json:"score"`
		Comment string  `json:"comment"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return sentinelResult(fmt.Sprintf("reply could not be decoded: %v", err), raw)
	}

	return GradeResult{
		Score:    clampScore(payload.Score),
		Comment:  payload.Comment,
		RawReply: raw,
	}
}

func sentinelResult(reason, raw string) GradeResult {
	return GradeResult{
		Score:          0,
		Comment:        "Automated grading could not produce a result: " + reason + ". A member of staff will review this submission.",
		Degraded:       true,
		DegradedReason: reason,
		RawReply:       raw,
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// stripCodeFence unwraps replies of the form ```json ... ``` that chat
// models produce despite being told not to.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || strings.EqualFold(first, "json") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
