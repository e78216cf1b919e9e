package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ST-CK/Sturoom/internal/auth"
	"github.com/ST-CK/Sturoom/internal/extract"
	"github.com/ST-CK/Sturoom/internal/genai"
	"github.com/ST-CK/Sturoom/internal/quiz"
)

// fileRef accepts both "https://..." and {"url": "https://..."} entries in
// file_urls, which older clients still send.
type fileRef struct {
	URL string
}

func (f *fileRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.URL = s
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	f.URL = obj.URL
	return nil
}

// POST /quiz/session/start  {room_id, post_id, mode}
func StartSessionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeErr(w, http.StatusUnauthorized, "authentication required")
			return
		}
		var req struct {
			RoomID string `json:"room_id"`
			PostID string `json:"post_id"`
			Mode   string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.RoomID == "" || req.PostID == "" {
			writeErr(w, http.StatusBadRequest, "room_id and post_id required")
			return
		}
		sess, err := store.EnsureSession(r.Context(), u.ID, req.RoomID, req.PostID, quiz.Mode(req.Mode))
		if err != nil {
			storeErr(w, err)
			return
		}
		run, err := store.CreateRun(r.Context(), sess.ID, u.ID)
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID, "run_id": run.ID})
	}
}

// POST /quiz/run/start  {session_id}
func StartRunHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeErr(w, http.StatusUnauthorized, "authentication required")
			return
		}
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.SessionID == "" {
			writeErr(w, http.StatusBadRequest, "session_id required")
			return
		}
		run, err := store.CreateRun(r.Context(), req.SessionID, u.ID)
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session_id": run.SessionID, "run_id": run.ID})
	}
}

// POST /quiz/from-url  {file_urls, mode, session_id, run_id}
func GenerateFromURLHandler(store quiz.Store, ex *extract.Extractor, gen *genai.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeErr(w, http.StatusUnauthorized, "authentication required")
			return
		}
		var req struct {
			FileURLs  []fileRef `json:"file_urls"`
			Mode      string    `json:"mode"`
			SessionID string    `json:"session_id"`
			RunID     string    `json:"run_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(req.FileURLs) == 0 {
			writeErr(w, http.StatusBadRequest, "file_urls required")
			return
		}
		if req.SessionID == "" || req.RunID == "" {
			writeErr(w, http.StatusBadRequest, "session_id and run_id required")
			return
		}

		urls := make([]string, 0, len(req.FileURLs))
		for _, f := range req.FileURLs {
			if f.URL != "" {
				urls = append(urls, f.URL)
			}
		}
		text := ex.FromURLs(r.Context(), urls)

		recs, err := gen.GenerateQuiz(r.Context(), text, quiz.Mode(req.Mode))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		inserted, err := store.InsertQuestions(r.Context(), req.SessionID, req.RunID, recs)
		if err != nil {
			storeErr(w, err)
			return
		}
		logQuizMessage(r.Context(), store, req.SessionID, req.RunID, u.ID, inserted)

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": req.SessionID,
			"run_id":     req.RunID,
			"quiz_count": len(inserted),
			"quiz":       inserted,
		})
	}
}

// logQuizMessage appends the generated batch to the run transcript.
// Best-effort: a logging failure does not fail the generation request.
func logQuizMessage(ctx context.Context, store quiz.Store, sessionID, runID, userID string, qs []quiz.Question) {
	payload, err := json.Marshal(map[string]any{"quiz": qs})
	if err != nil {
		return
	}
	_ = store.LogMessage(ctx, quiz.Message{
		SessionID:  sessionID,
		RunID:      runID,
		UserID:     userID,
		Role:       "ai",
		Kind:       "quiz",
		Payload:    string(payload),
		OrderIndex: 1,
	})
}

// POST /quiz/attempt  {question_id, user_answer, session_id, run_id, user_email?}
// The user comes from the bearer token when present, else from user_email.
func AttemptHandler(store quiz.Store, grader *quiz.Grader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
			UserAnswer string `json:"user_answer"`
			UserEmail  string `json:"user_email"`
			SessionID  string `json:"session_id"`
			RunID      string `json:"run_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.QuestionID == "" {
			writeErr(w, http.StatusBadRequest, "question_id required")
			return
		}

		var userID string
		if u, ok := auth.UserFromContext(r.Context()); ok {
			userID = u.ID
		} else if req.UserEmail != "" {
			p, err := store.GetProfileByEmail(r.Context(), req.UserEmail)
			if err != nil {
				storeErr(w, err)
				return
			}
			userID = p.ID
		} else {
			writeErr(w, http.StatusBadRequest, "user_email or bearer token required")
			return
		}

		res, err := grader.Grade(r.Context(), req.SessionID, req.RunID, userID, req.QuestionID, req.UserAnswer)
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
