package genai

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

type cannedCompletion struct {
	response   string
	err        error
	lastUser   string
	lastSystem string
	lastModel  string
}

func (c *cannedCompletion) Complete(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	c.lastModel, c.lastSystem, c.lastUser = model, system, user
	return c.response, c.err
}

func TestBuildQuizPromptTruncatesAndDescribesMode(t *testing.T) {
	long := strings.Repeat("x", MaxPromptChars+500)
	p := BuildQuizPrompt("  "+long, quiz.ModeOX)
	if !strings.Contains(p, "OX") {
		t.Error("OX mode description missing")
	}
	if strings.Count(p, "x") > MaxPromptChars {
		t.Errorf("text not truncated to %d chars", MaxPromptChars)
	}
	if !strings.Contains(p, "JSON array") {
		t.Error("JSON-array mandate missing")
	}
}

func TestBuildQuizPromptBudgetCountsRunes(t *testing.T) {
	// Three-byte Hangul: a byte-based cut would fit only a third of the
	// budget and could split a rune at the boundary.
	long := strings.Repeat("한", MaxPromptChars+100)
	p := BuildQuizPrompt(long, quiz.ModeMixed)
	if got := strings.Count(p, "한"); got != MaxPromptChars {
		t.Errorf("interpolated %d runes, want %d", got, MaxPromptChars)
	}
	if !utf8.ValidString(p) {
		t.Error("truncation split a rune")
	}

	short := strings.Repeat("한", 10)
	if !strings.Contains(BuildQuizPrompt(short, quiz.ModeMixed), short) {
		t.Error("text under the budget must pass through whole")
	}
}

func TestBuildQuizPromptUnknownModeFallsBackToMixed(t *testing.T) {
	p := BuildQuizPrompt("text", quiz.Mode("essay"))
	if !strings.Contains(p, "mix of") {
		t.Errorf("unknown mode should use mixed phrasing: %q", p)
	}
}

func TestParseQuizArraySalvagesWrappedJSON(t *testing.T) {
	raw := "Sure! Here is your quiz:\n" +
		`[{"question":"Water boils at 100C. O or X?","choices":[],"answer":"O","explanation":"At sea level."}]` +
		"\nLet me know if you need more."
	recs, err := ParseQuizArray(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Answer != "O" {
		t.Errorf("answer = %q, want O", recs[0].Answer)
	}
	if len(recs[0].Choices) != 0 {
		t.Errorf("choices = %v, want empty", recs[0].Choices)
	}
}

func TestParseQuizArrayFieldAliases(t *testing.T) {
	raw := `[{"question":"Pick one","options":["A. first","B. second","C. third  ","fourth"],"correct_answer":" second ","explanation":""}]`
	recs, err := ParseQuizArray(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := recs[0]
	if r.Answer != "second" {
		t.Errorf("answer = %q (correct_answer alias broken)", r.Answer)
	}
	want := []string{"first", "second", "third", "fourth"}
	if len(r.Choices) != len(want) {
		t.Fatalf("choices = %v", r.Choices)
	}
	for i := range want {
		if r.Choices[i] != want[i] {
			t.Errorf("choices[%d] = %q, want %q", i, r.Choices[i], want[i])
		}
	}
}

func TestParseQuizArrayKeepsInteriorLetters(t *testing.T) {
	// Only a leading enumeration token is stripped.
	raw := `[{"question":"q","choices":["Vitamin B. complex"],"answer":"a","explanation":""}]`
	recs, err := ParseQuizArray(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if recs[0].Choices[0] != "Vitamin B. complex" {
		t.Errorf("interior token stripped: %q", recs[0].Choices[0])
	}
}

func TestParseQuizArrayMissingQuestionField(t *testing.T) {
	recs, err := ParseQuizArray(`[{"answer":"X"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if recs[0].Question != "" {
		t.Errorf("question = %q, want empty substitute", recs[0].Question)
	}
}

func TestParseQuizArrayNoArray(t *testing.T) {
	if _, err := ParseQuizArray("I could not generate a quiz."); err != ErrNoJSONArray {
		t.Fatalf("err = %v, want ErrNoJSONArray", err)
	}
	if _, err := ParseQuizArray("]["); err != ErrNoJSONArray {
		t.Fatalf("err = %v, want ErrNoJSONArray", err)
	}
}

func TestParseObject(t *testing.T) {
	out, err := ParseObject("noise {\"title\":\"Good week\",\"metrics\":{\"focus_score\":80}} trailing")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out["title"] != "Good week" {
		t.Errorf("title = %v", out["title"])
	}
	if _, err := ParseObject(""); err != ErrNoJSONObject {
		t.Errorf("empty input err = %v", err)
	}
	if _, err := ParseObject("no json here"); err != ErrNoJSONObject {
		t.Errorf("no-object err = %v", err)
	}
}

func TestGenerateQuizWiresPromptAndParse(t *testing.T) {
	canned := &cannedCompletion{
		response: `prose [{"question":"Water boils at 100C?","choices":[],"answer":"O","explanation":"yes"}] prose`,
	}
	svc := NewService(canned, "gpt-4o-mini", "gpt-4o")
	recs, err := svc.GenerateQuiz(context.Background(), "Water boils at 100C", quiz.ModeOX)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 1 || recs[0].Answer != "O" {
		t.Fatalf("records = %+v", recs)
	}
	if !strings.Contains(canned.lastUser, "Water boils at 100C") {
		t.Error("extracted text missing from prompt")
	}
	if !strings.Contains(canned.lastUser, "OX") {
		t.Error("mode description missing from prompt")
	}
	if canned.lastModel != "gpt-4o-mini" {
		t.Errorf("model = %q", canned.lastModel)
	}
}

func TestGenerateNarrativeUsesNarrativeModel(t *testing.T) {
	canned := &cannedCompletion{response: `{"overview":"ok","metrics":{"focus_score":1}}`}
	svc := NewService(canned, "gpt-4o-mini", "gpt-4o")
	out, err := svc.GenerateNarrative(context.Background(), map[string]any{"days": 3})
	if err != nil {
		t.Fatalf("narrative: %v", err)
	}
	if out["overview"] != "ok" {
		t.Errorf("overview = %v", out["overview"])
	}
	if canned.lastModel != "gpt-4o" {
		t.Errorf("model = %q, want narrative model", canned.lastModel)
	}
	if !strings.Contains(canned.lastUser, `"days":3`) {
		t.Error("summary payload missing from prompt")
	}
}
