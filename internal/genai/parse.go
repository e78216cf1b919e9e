package genai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

var (
	ErrNoJSONArray  = errors.New("generation parse error: no JSON array in response")
	ErrNoJSONObject = errors.New("narrative parse error: no JSON object in response")
)

// choicePrefixRe strips a leading enumeration token like "A. " from a choice
// string, applied once.
var choicePrefixRe = regexp.MustCompile(`^[A-Z]\. `)

// jsonObjectRe is the greedy match for the outermost {...} block.
var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// rawQuestion tolerates the field aliases the model actually emits.
type rawQuestion struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	Options       []string `json:"options"`
	Answer        string   `json:"answer"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// ParseQuizArray salvages the question array out of free-text model output:
// everything from the first '[' through the last ']' is parsed as JSON.
func ParseQuizArray(raw string) ([]quiz.QuestionRecord, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, ErrNoJSONArray
	}
	var items []rawQuestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, ErrNoJSONArray
	}

	out := make([]quiz.QuestionRecord, 0, len(items))
	for _, it := range items {
		answer := it.Answer
		if answer == "" {
			answer = it.CorrectAnswer
		}
		choices := it.Choices
		if len(choices) == 0 {
			choices = it.Options
		}
		cleaned := make([]string, 0, len(choices))
		for _, c := range choices {
			cleaned = append(cleaned, strings.TrimSpace(choicePrefixRe.ReplaceAllString(strings.TrimSpace(c), "")))
		}
		out = append(out, quiz.QuestionRecord{
			Question:    strings.TrimSpace(it.Question),
			Choices:     cleaned,
			Answer:      strings.TrimSpace(answer),
			Explanation: strings.TrimSpace(it.Explanation),
		})
	}
	return out, nil
}

// ParseObject extracts the first {...} block from raw output and unmarshals
// it into a generic map.
func ParseObject(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoJSONObject
	}
	m := jsonObjectRe.FindString(raw)
	if m == "" {
		return nil, ErrNoJSONObject
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(m), &out); err != nil {
		return nil, ErrNoJSONObject
	}
	return out, nil
}
