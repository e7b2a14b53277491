package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradeResponseValid(t *testing.T) {
	result := ParseGradeResponse(`{"score": 0.8, "comment": "Good start"}`)

	require.False(t, result.Degraded)
	require.Equal(t, 0.8, result.Score)
	require.Equal(t, "Good start", result.Comment)
}

func TestParseGradeResponseFencedJSON(t *testing.T) {
	result := ParseGradeResponse("```json\n{\"score\": 0.5, \"comment\": \"Average\"}\n```")

	require.False(t, result.Degraded)
	require.Equal(t, 0.5, result.Score)
	require.Equal(t, "Average", result.Comment)
}

func TestParseGradeResponseNonJSONYieldsSentinel(t *testing.T) {
	result := ParseGradeResponse("The essay was quite good, I would say 8 out of 10.")

	require.True(t, result.Degraded)
	require.Zero(t, result.Score)
	require.NotEmpty(t, result.Comment)
	require.NotEmpty(t, result.DegradedReason)
}

func TestParseGradeResponseMissingKeysYieldsSentinel(t *testing.T) {
	result := ParseGradeResponse(`{"score": 0.7}`)

	require.True(t, result.Degraded)
	require.Zero(t, result.Score)
	require.NotEmpty(t, result.Comment)
}

func TestParseGradeResponseWrongTypesYieldsSentinel(t *testing.T) {
	result := ParseGradeResponse(`{"score": "high", "comment": "fine"}`)

	require.True(t, result.Degraded)
	require.Zero(t, result.Score)
}

func TestParseGradeResponseClampsScore(t *testing.T) {
	result := ParseGradeResponse(`{"score": 1.4, "comment": "over-enthusiastic"}`)
	require.False(t, result.Degraded)
	require.Equal(t, 1.0, result.Score)

	result = ParseGradeResponse(`{"score": -0.2, "comment": "harsh"}`)
	require.False(t, result.Degraded)
	require.Zero(t, result.Score)
}

func TestParseGradeResponseNeverPanics(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", "42", "{", "```", "```json\n```"} {
		require.NotPanics(t, func() {
			result := ParseGradeResponse(raw)
			require.NotEmpty(t, result.Comment)
		})
	}
}
