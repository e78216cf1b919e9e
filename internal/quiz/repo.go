package quiz

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrProfileNotFound  = errors.New("user not found")
)

// QuestionRecord is the shape the generation client produces, before ids are
// assigned by the store.
type QuestionRecord struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Store is the relational persistence surface. Operations are individual
// statements; nothing here spans tables atomically. A failure between the
// question insert and the quiz_count updates leaves the counts stale, which
// callers accept.
type Store interface {
	// EnsureSession finds the session for (userID, lectureID, weekID) or
	// creates one with quiz_count=0.
	EnsureSession(ctx context.Context, userID, lectureID, weekID string, mode Mode) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)

	// CreateRun starts a new run under an existing session, copying the
	// session's lecture/week/mode.
	CreateRun(ctx context.Context, sessionID, userID string) (Run, error)
	ListRuns(ctx context.Context, userID string) ([]Run, error)

	// InsertQuestions bulk-inserts the records and then sets quiz_count on
	// both the run and the session to the inserted row count.
	InsertQuestions(ctx context.Context, sessionID, runID string, recs []QuestionRecord) ([]Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)

	InsertAnswer(ctx context.Context, a Answer) (Answer, error)
	ListAnswersByRun(ctx context.Context, runID string) ([]Answer, error)
	InsertIncorrectNote(ctx context.Context, userID, questionID string) error

	LogMessage(ctx context.Context, m Message) error

	// AddAttendance adds delta seconds to the (userID, day) row, bumping
	// session_count when the day had no seconds yet. Returns the new totals.
	AddAttendance(ctx context.Context, userID, day string, delta int) (AttendanceRow, error)
	ListAttendance(ctx context.Context, userID string) ([]AttendanceRow, error)

	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
}
