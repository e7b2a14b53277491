package ai

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxTopicLength = 500

// promptTemplate is the fixed rubric. The topic appears twice: once in the
// role framing and once in the completeness criterion. The closing section
// pins the required JSON-only output shape.
const promptTemplate = `You are grading a student essay on the topic: %[1]s.

Assess the essay against the following criteria:
1. Topic coverage: how fully the essay addresses %[1]s, including the key events, periods, and figures involved.
2. Argumentation and analysis: whether claims are supported, sources are compared, and reasoning is sound.
3. Structure and logic: whether the essay is logically organised and the exposition follows a coherent order.
4. Factual accuracy: whether the stated facts match established sources.
5. Style and literacy: language quality, spelling, and punctuation.

After your analysis respond with a single JSON object and nothing else:
- "score": a number from 0 to 1, where 0 means extremely poor quality and 1 means excellent quality.
- "comment": a detailed justification of the score describing strengths, weaknesses, and concrete suggestions for improvement.

Do not wrap the JSON in markdown fences and do not add any prose outside the object.`

var topicSanitizer = bluemonday.StrictPolicy()

// NeutralizeTopic renders an instructor-supplied topic safe for template
// substitution: markup is stripped, characters that could break the
// JSON-only output contract are removed, whitespace is collapsed, and the
// result is length-capped.
func NeutralizeTopic(topic string) string {
	cleaned := html.UnescapeString(topicSanitizer.Sanitize(topic))

	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '[', ']', '`', '"', '\\':
			return -1
		}
		if r < ' ' {
			return ' '
		}
		return r
	}, cleaned)

	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if len(cleaned) > maxTopicLength {
		cleaned = cleaned[:maxTopicLength]
	}

	if cleaned == "" {
		cleaned = "the assigned subject"
	}

	return cleaned
}

// BuildPrompt produces the rubric prompt for the given topic. It is a pure
// function: equal topics always yield equal prompts.
func BuildPrompt(topic string) string {
	return fmt.Sprintf(promptTemplate, NeutralizeTopic(topic))
}
