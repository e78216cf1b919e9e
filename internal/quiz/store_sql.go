package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// stampFormat is fixed-width so timestamp strings sort lexicographically.
const stampFormat = "2006-01-02T15:04:05.000000Z07:00"

func nowStamp() string { return time.Now().UTC().Format(stampFormat) }

func (s *SQLStore) EnsureSession(ctx context.Context, userID, lectureID, weekID string, mode Mode) (Session, error) {
	mode = mode.Normalize()
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,lecture_id,week_id,mode,quiz_count,created_at
		   FROM quiz_sessions WHERE user_id=$1 AND lecture_id=$2 AND week_id=$3 LIMIT 1`,
		userID, lectureID, weekID)
	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.LectureID, &sess.WeekID, &sess.Mode, &sess.QuizCount, &sess.CreatedAt)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, err
	}
	sess = Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		LectureID: lectureID,
		WeekID:    weekID,
		Mode:      mode,
		CreatedAt: nowStamp(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_sessions (id,user_id,lecture_id,week_id,mode,quiz_count,created_at)
		 VALUES ($1,$2,$3,$4,$5,0,$6)`,
		sess.ID, sess.UserID, sess.LectureID, sess.WeekID, string(sess.Mode), sess.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,lecture_id,week_id,mode,quiz_count,created_at FROM quiz_sessions WHERE id=$1`, id)
	var sess Session
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.LectureID, &sess.WeekID, &sess.Mode, &sess.QuizCount, &sess.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) CreateRun(ctx context.Context, sessionID, userID string) (Run, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Run{}, err
	}
	r := Run{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		UserID:    userID,
		LectureID: sess.LectureID,
		WeekID:    sess.WeekID,
		Mode:      sess.Mode,
		StartedAt: nowStamp(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_runs (id,session_id,user_id,lecture_id,week_id,mode,quiz_count,started_at)
		 VALUES ($1,$2,$3,$4,$5,$6,0,$7)`,
		r.ID, r.SessionID, r.UserID, r.LectureID, r.WeekID, string(r.Mode), r.StartedAt)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *SQLStore) ListRuns(ctx context.Context, userID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,session_id,user_id,lecture_id,week_id,mode,quiz_count,started_at
		   FROM quiz_runs WHERE user_id=$1 ORDER BY started_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SessionID, &r.UserID, &r.LectureID, &r.WeekID, &r.Mode, &r.QuizCount, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertQuestions(ctx context.Context, sessionID, runID string, recs []QuestionRecord) ([]Question, error) {
	out := make([]Question, 0, len(recs))
	for _, rec := range recs {
		q := Question{
			ID:          uuid.NewString(),
			SessionID:   sessionID,
			Question:    rec.Question,
			Choices:     rec.Choices,
			Answer:      rec.Answer,
			Explanation: rec.Explanation,
		}
		if q.Choices == nil {
			q.Choices = []string{}
		}
		cj, err := json.Marshal(q.Choices)
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO quiz_questions (id,session_id,question,choices_json,answer,explanation)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			q.ID, q.SessionID, q.Question, string(cj), q.Answer, q.Explanation)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	// Counts are caches of the inserted row count. Not atomic with the
	// inserts above; a failure here leaves them stale.
	n := len(out)
	if _, err := s.db.ExecContext(ctx, `UPDATE quiz_runs SET quiz_count=$1 WHERE id=$2`, n, runID); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE quiz_sessions SET quiz_count=$1 WHERE id=$2`, n, sessionID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,session_id,question,choices_json,answer,explanation FROM quiz_questions WHERE id=$1`, id)
	var q Question
	var cj string
	if err := row.Scan(&q.ID, &q.SessionID, &q.Question, &cj, &q.Answer, &q.Explanation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(cj), &q.Choices); err != nil {
		q.Choices = []string{}
	}
	return q, nil
}

func (s *SQLStore) InsertAnswer(ctx context.Context, a Answer) (Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnsweredAt == "" {
		a.AnsweredAt = nowStamp()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_answers (id,session_id,run_id,question_id,user_id,user_answer,is_correct,answered_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.SessionID, a.RunID, a.QuestionID, a.UserID, a.UserAnswer, a.IsCorrect, a.AnsweredAt)
	if err != nil {
		return Answer{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAnswersByRun(ctx context.Context, runID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,session_id,run_id,question_id,user_id,user_answer,is_correct,answered_at
		   FROM quiz_answers WHERE run_id=$1 ORDER BY answered_at ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.RunID, &a.QuestionID, &a.UserID, &a.UserAnswer, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertIncorrectNote(ctx context.Context, userID, questionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_incorrect_notes (id,user_id,question_id,reviewed) VALUES ($1,$2,$3,$4)`,
		uuid.NewString(), userID, questionID, false)
	return err
}

func (s *SQLStore) LogMessage(ctx context.Context, m Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_messages (id,session_id,run_id,user_id,role,kind,payload,order_index)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.SessionID, m.RunID, m.UserID, m.Role, m.Kind, m.Payload, m.OrderIndex)
	return err
}

func (s *SQLStore) AddAttendance(ctx context.Context, userID, day string, delta int) (AttendanceRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT seconds,session_count FROM attendance_logs WHERE user_id=$1 AND date=$2`, userID, day)
	var prevSeconds, prevSessions int
	err := row.Scan(&prevSeconds, &prevSessions)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		prevSeconds, prevSessions = 0, 0
	case err != nil:
		return AttendanceRow{}, err
	}

	out := AttendanceRow{
		UserID:       userID,
		Date:         day,
		Seconds:      prevSeconds + delta,
		SessionCount: prevSessions,
	}
	// First seconds of the day open a new visit.
	if prevSeconds == 0 {
		out.SessionCount++
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attendance_logs (user_id,date,seconds,session_count) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id,date) DO UPDATE SET seconds=EXCLUDED.seconds, session_count=EXCLUDED.session_count`,
		out.UserID, out.Date, out.Seconds, out.SessionCount)
	if err != nil {
		return AttendanceRow{}, err
	}
	return out, nil
}

func (s *SQLStore) ListAttendance(ctx context.Context, userID string) ([]AttendanceRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,date,seconds,session_count FROM attendance_logs WHERE user_id=$1 ORDER BY date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AttendanceRow
	for rows.Next() {
		var r AttendanceRow
		if err := rows.Scan(&r.UserID, &r.Date, &r.Seconds, &r.SessionCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetProfile(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,email,full_name FROM profiles WHERE id=$1`, id)
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (s *SQLStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,email,full_name FROM profiles WHERE email=$1`, email)
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}
