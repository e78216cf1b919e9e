package quiz

import (
	"context"
	"testing"
	"time"
)

func seedQuestion(t *testing.T, store *MemoryStore, answer string) Question {
	t.Helper()
	ctx := context.Background()
	sess, err := store.EnsureSession(ctx, "u1", "lec-1", "wk-1", ModeShort)
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	run, err := store.CreateRun(ctx, sess.ID, "u1")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	qs, err := store.InsertQuestions(ctx, sess.ID, run.ID, []QuestionRecord{
		{Question: "Capital of France?", Answer: answer, Explanation: "Geography."},
	})
	if err != nil {
		t.Fatalf("insert questions: %v", err)
	}
	return qs[0]
}

func TestGradeTrimsAndCasefolds(t *testing.T) {
	store := NewInMemoryStore()
	q := seedQuestion(t, store, "Paris")
	g := NewGrader(store)

	res, err := g.Grade(context.Background(), q.SessionID, "run-1", "u1", q.ID, "  paris ")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.IsCorrect {
		t.Fatalf("expected correct for case/space variant, got %+v", res)
	}
	if res.CorrectAnswer != "Paris" {
		t.Errorf("correct_answer = %q, want %q", res.CorrectAnswer, "Paris")
	}
	if res.Explanation != "Geography." {
		t.Errorf("explanation = %q", res.Explanation)
	}
}

func TestGradeWrongAnswerWritesIncorrectNote(t *testing.T) {
	store := NewInMemoryStore()
	q := seedQuestion(t, store, "Paris")
	g := NewGrader(store)
	g.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := g.Grade(context.Background(), q.SessionID, "run-1", "u1", q.ID, "London")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.IsCorrect {
		t.Fatal("expected incorrect")
	}
	if len(store.notes) != 1 {
		t.Fatalf("incorrect notes = %d, want 1", len(store.notes))
	}
	if store.notes[0].UserID != "u1" || store.notes[0].QuestionID != q.ID {
		t.Errorf("note keyed wrong: %+v", store.notes[0])
	}
	if store.notes[0].Reviewed {
		t.Error("new note must start unreviewed")
	}
	// transcript gets a user/ai pair with adjacent order indexes
	if len(store.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(store.messages))
	}
	if store.messages[0].Role != "user" || store.messages[1].Role != "ai" {
		t.Errorf("message roles = %s,%s", store.messages[0].Role, store.messages[1].Role)
	}
	if store.messages[1].OrderIndex != store.messages[0].OrderIndex+1 {
		t.Errorf("order indexes not adjacent: %d,%d", store.messages[0].OrderIndex, store.messages[1].OrderIndex)
	}
}

func TestGradeUnknownQuestion(t *testing.T) {
	store := NewInMemoryStore()
	g := NewGrader(store)
	_, err := g.Grade(context.Background(), "s", "r", "u1", "nope", "x")
	if err != ErrQuestionNotFound {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestGradeCorrectLeavesNoNote(t *testing.T) {
	store := NewInMemoryStore()
	q := seedQuestion(t, store, "O")
	g := NewGrader(store)
	if _, err := g.Grade(context.Background(), q.SessionID, "run-1", "u1", q.ID, "o"); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if len(store.notes) != 0 {
		t.Fatalf("notes = %d, want 0", len(store.notes))
	}
	if len(store.answers) != 1 || !store.answers[0].IsCorrect {
		t.Fatalf("answer row missing or wrong: %+v", store.answers)
	}
}

func TestInsertQuestionsSetsCounts(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	sess, _ := store.EnsureSession(ctx, "u1", "lec-1", "wk-1", ModeMultiple)
	run, _ := store.CreateRun(ctx, sess.ID, "u1")

	recs := []QuestionRecord{
		{Question: "q1", Choices: []string{"a", "b"}, Answer: "a"},
		{Question: "q2", Choices: []string{"c", "d"}, Answer: "d"},
		{Question: "q3", Answer: "O"},
	}
	inserted, err := store.InsertQuestions(ctx, sess.ID, run.ID, recs)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(inserted) != 3 {
		t.Fatalf("inserted = %d", len(inserted))
	}
	gotSess, _ := store.GetSession(ctx, sess.ID)
	if gotSess.QuizCount != 3 {
		t.Errorf("session quiz_count = %d, want 3", gotSess.QuizCount)
	}
	runs, _ := store.ListRuns(ctx, "u1")
	if runs[0].QuizCount != 3 {
		t.Errorf("run quiz_count = %d, want 3", runs[0].QuizCount)
	}
	// choices survive with order intact
	got, _ := store.GetQuestion(ctx, inserted[1].ID)
	if len(got.Choices) != 2 || got.Choices[0] != "c" || got.Choices[1] != "d" {
		t.Errorf("choices round-trip broken: %v", got.Choices)
	}
}

func TestEnsureSessionReusesByKey(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	a, _ := store.EnsureSession(ctx, "u1", "lec-1", "wk-1", ModeMixed)
	b, _ := store.EnsureSession(ctx, "u1", "lec-1", "wk-1", ModeMultiple)
	if a.ID != b.ID {
		t.Fatalf("same (user,lecture,week) must reuse the session: %s vs %s", a.ID, b.ID)
	}
	c, _ := store.EnsureSession(ctx, "u1", "lec-1", "wk-2", ModeMixed)
	if c.ID == a.ID {
		t.Fatal("different week must get its own session")
	}
}

func TestCreateRunDenormalizesSession(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	sess, _ := store.EnsureSession(ctx, "u1", "lec-9", "wk-3", ModeOX)
	run, err := store.CreateRun(ctx, sess.ID, "u1")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.LectureID != "lec-9" || run.WeekID != "wk-3" || run.Mode != ModeOX {
		t.Errorf("run did not copy session fields: %+v", run)
	}
	if _, err := store.CreateRun(ctx, "missing", "u1"); err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestAddAttendanceMonotonicAndSessionCount(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	r1, _ := store.AddAttendance(ctx, "u1", "2024-01-01", 30)
	if r1.Seconds != 30 || r1.SessionCount != 1 {
		t.Fatalf("first heartbeat: %+v", r1)
	}
	r2, _ := store.AddAttendance(ctx, "u1", "2024-01-01", 15)
	if r2.Seconds != 45 {
		t.Errorf("seconds = %d, want 45", r2.Seconds)
	}
	if r2.SessionCount != 1 {
		t.Errorf("session_count bumped on non-first heartbeat: %d", r2.SessionCount)
	}
}
