package quiz

// Mode selects the question style a session was generated with.
type Mode string

const (
	ModeMultiple Mode = "multiple"
	ModeOX       Mode = "ox"
	ModeShort    Mode = "short"
	ModeMixed    Mode = "mixed"
)

// Normalize maps unknown modes onto ModeMixed.
func (m Mode) Normalize() Mode {
	switch m {
	case ModeMultiple, ModeOX, ModeShort, ModeMixed:
		return m
	default:
		return ModeMixed
	}
}

// Session is a (user, lecture, week, mode) study context. Reused across
// requests for the same key; never deleted.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	LectureID string `json:"lecture_id"`
	WeekID    string `json:"week_id"`
	Mode      Mode   `json:"mode"`
	QuizCount int    `json:"quiz_count"`
	CreatedAt string `json:"created_at"`
}

// Run is one attempt at a batch of questions within a Session. Lecture, week
// and mode are denormalized copies of the parent Session at creation time.
type Run struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	LectureID string `json:"lecture_id"`
	WeekID    string `json:"week_id"`
	Mode      Mode   `json:"mode"`
	QuizCount int    `json:"quiz_count"`
	StartedAt string `json:"started_at"`
}

// Question is one generated quiz item; immutable after insert. Choices is
// empty for free-response modes.
type Question struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Answer is one submitted response. Append-only; IsCorrect is computed at
// write time and never mutated.
type Answer struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	RunID      string `json:"run_id"`
	QuestionID string `json:"question_id"`
	UserID     string `json:"user_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
	AnsweredAt string `json:"answered_at"`
}

// IncorrectNote marks a wrong answer for later review.
type IncorrectNote struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Reviewed   bool   `json:"reviewed"`
}

// Message is one entry in the chat-style transcript of a run.
type Message struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	RunID      string `json:"run_id"`
	UserID     string `json:"user_id"`
	Role       string `json:"role"` // user|ai
	Kind       string `json:"kind"` // text|quiz
	Payload    string `json:"payload"`
	OrderIndex int64  `json:"order_index"`
}

// AttendanceRow is one (user, date) attendance record. Seconds only ever grow
// within a day.
type AttendanceRow struct {
	UserID       string `json:"user_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Seconds      int    `json:"seconds"`
	SessionCount int    `json:"session_count"`
}

// Profile is the user row the identity provider writes.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
