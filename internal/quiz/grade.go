package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GradeResult is what the attempt endpoint returns to the client.
type GradeResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Grader records submitted answers against stored questions.
type Grader struct {
	store Store
	now   func() time.Time
}

func NewGrader(store Store) *Grader {
	return &Grader{store: store, now: time.Now}
}

// answersEqual is the whole grading rule: trimmed, case-insensitive exact
// match. No fuzzy matching, no partial credit.
func answersEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Grade looks up the question, records the answer row, and on a miss records
// an incorrect note. It also appends the user/ai message pair to the run
// transcript. The writes are independent statements; a late failure after the
// answer insert is surfaced but leaves the earlier rows in place.
func (g *Grader) Grade(ctx context.Context, sessionID, runID, userID, questionID, userAnswer string) (GradeResult, error) {
	q, err := g.store.GetQuestion(ctx, questionID)
	if err != nil {
		return GradeResult{}, err
	}

	submitted := strings.TrimSpace(userAnswer)
	correct := strings.TrimSpace(q.Answer)
	res := GradeResult{
		IsCorrect:     answersEqual(submitted, correct),
		CorrectAnswer: correct,
		Explanation:   q.Explanation,
	}

	if _, err := g.store.InsertAnswer(ctx, Answer{
		SessionID:  sessionID,
		RunID:      runID,
		QuestionID: questionID,
		UserID:     userID,
		UserAnswer: submitted,
		IsCorrect:  res.IsCorrect,
	}); err != nil {
		return GradeResult{}, err
	}

	if !res.IsCorrect {
		if err := g.store.InsertIncorrectNote(ctx, userID, questionID); err != nil {
			return GradeResult{}, err
		}
	}

	orderIdx := g.now().Unix()
	userPayload, _ := json.Marshal(map[string]string{"text": submitted})
	verdict := "Correct!"
	if !res.IsCorrect {
		verdict = fmt.Sprintf("Incorrect. The answer is %s", correct)
	}
	aiPayload, _ := json.Marshal(map[string]string{"text": verdict})

	msgs := []Message{
		{SessionID: sessionID, RunID: runID, UserID: userID, Role: "user", Kind: "text", Payload: string(userPayload), OrderIndex: orderIdx},
		{SessionID: sessionID, RunID: runID, UserID: userID, Role: "ai", Kind: "text", Payload: string(aiPayload), OrderIndex: orderIdx + 1},
	}
	for _, m := range msgs {
		if err := g.store.LogMessage(ctx, m); err != nil {
			return GradeResult{}, err
		}
	}
	return res, nil
}
