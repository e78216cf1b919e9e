package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore mirrors SQLStore for tests and offline development.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	runs      map[string]Run
	questions map[string]Question
	answers   []Answer
	notes     []IncorrectNote
	messages  []Message
	// attendance keyed by userID|date
	attendance map[string]AttendanceRow
	profiles   map[string]Profile
}

func NewInMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   map[string]Session{},
		runs:       map[string]Run{},
		questions:  map[string]Question{},
		attendance: map[string]AttendanceRow{},
		profiles:   map[string]Profile{},
	}
}

func (m *MemoryStore) EnsureSession(ctx context.Context, userID, lectureID, weekID string, mode Mode) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.LectureID == lectureID && s.WeekID == weekID {
			return s, nil
		}
	}
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		LectureID: lectureID,
		WeekID:    weekID,
		Mode:      mode.Normalize(),
		CreatedAt: time.Now().UTC().Format(stampFormat),
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) CreateRun(ctx context.Context, sessionID, userID string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Run{}, ErrSessionNotFound
	}
	r := Run{
		ID:        uuid.NewString(),
		SessionID: s.ID,
		UserID:    userID,
		LectureID: s.LectureID,
		WeekID:    s.WeekID,
		Mode:      s.Mode,
		StartedAt: time.Now().UTC().Format(stampFormat),
	}
	m.runs[r.ID] = r
	return r, nil
}

func (m *MemoryStore) ListRuns(ctx context.Context, userID string) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Run
	for _, r := range m.runs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt < out[j].StartedAt })
	return out, nil
}

func (m *MemoryStore) InsertQuestions(ctx context.Context, sessionID, runID string, recs []QuestionRecord) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
		m.questions[q.ID] = q
		out = append(out, q)
	}
	if r, ok := m.runs[runID]; ok {
		r.QuizCount = len(out)
		m.runs[runID] = r
	}
	if s, ok := m.sessions[sessionID]; ok {
		s.QuizCount = len(out)
		m.sessions[sessionID] = s
	}
	return out, nil
}

func (m *MemoryStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (m *MemoryStore) InsertAnswer(ctx context.Context, a Answer) (Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnsweredAt == "" {
		a.AnsweredAt = time.Now().UTC().Format(stampFormat)
	}
	m.answers = append(m.answers, a)
	return a, nil
}

func (m *MemoryStore) ListAnswersByRun(ctx context.Context, runID string) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Answer
	for _, a := range m.answers {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertIncorrectNote(ctx context.Context, userID, questionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, IncorrectNote{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: questionID,
	})
	return nil
}

func (m *MemoryStore) LogMessage(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MemoryStore) AddAttendance(ctx context.Context, userID, day string, delta int) (AttendanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := userID + "|" + day
	row, ok := m.attendance[k]
	if !ok {
		row = AttendanceRow{UserID: userID, Date: day}
	}
	if row.Seconds == 0 {
		row.SessionCount++
	}
	row.Seconds += delta
	m.attendance[k] = row
	return row, nil
}

func (m *MemoryStore) ListAttendance(ctx context.Context, userID string) ([]AttendanceRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []AttendanceRow
	for _, r := range m.attendance {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, id string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

// PutProfile seeds a profile; identity-provider sync writes these in
// production, tests use it directly.
func (m *MemoryStore) PutProfile(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}
