package genai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

// MaxPromptChars bounds how much extracted lecture text is interpolated into
// a generation prompt.
const MaxPromptChars = 18000

func modeDescription(mode quiz.Mode) string {
	switch mode.Normalize() {
	case quiz.ModeOX:
		return "true/false (OX) questions, where the answer is exactly O or X"
	case quiz.ModeShort:
		return "short free-response questions answerable in one sentence"
	case quiz.ModeMultiple:
		return "multiple-choice questions with four choices each"
	default:
		return "a mix of multiple-choice (four choices), OX, and short free-response questions"
	}
}

// safeCut trims and caps text at limit characters, not bytes, so non-ASCII
// lecture text gets the full budget and never splits a rune.
func safeCut(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}

// BuildQuizPrompt assembles the generation instruction around the extracted
// lecture text. The contract with the model: one JSON array, fixed fields,
// no letter prefixes on choices, no prose.
func BuildQuizPrompt(text string, mode quiz.Mode) string {
	return fmt.Sprintf(`The following is the combined text of lecture materials.
Based on this content, write 3 %s that test comprehension.

Requirements:
1. Output a single JSON array and nothing else.
2. Each item has exactly the fields question, choices (list of strings), answer, and explanation.
3. Do not prefix choices with letters like "A." or "B.".
4. No prose, comments, or code fences outside the JSON array.

-----
%s
-----`, modeDescription(mode), safeCut(text, MaxPromptChars))
}

// BuildNarrativePrompt wraps a learning-report summary into an instruction
// for the fixed-shape coaching report object.
func BuildNarrativePrompt(summaryJSON string) string {
	return fmt.Sprintf(`The following is a learner's study report data:

%s

Produce a JSON object with exactly this shape:

{
  "overview": "2-3 sentence summary of the learner's study",
  "strengths": ["strength 1", "strength 2", "strength 3"],
  "weaknesses": ["improvement 1", "improvement 2", "improvement 3"],
  "recommendation": "3-4 sentence study direction",
  "title": "one-line title",
  "metrics": {
      "focus_score": 0,
      "balance_score": 0,
      "readiness_score": 0
  }
}

Rules:
- Output JSON only.
- No explanations, comments, or backticks.`, summaryJSON)
}
