package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

// POST /attendance/log  {user_id, seconds}
// Each heartbeat adds a delta; seconds within a day only ever grow.
func AttendanceLogHandler(store quiz.Store) http.HandlerFunc {
	return AttendanceLogHandlerAt(store, time.Now)
}

// AttendanceLogHandlerAt lets tests pin the clock.
func AttendanceLogHandlerAt(store quiz.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  string `json:"user_id"`
			Seconds *int   `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.UserID == "" {
			writeErr(w, http.StatusBadRequest, "user_id required")
			return
		}
		delta := 1
		if req.Seconds != nil {
			delta = *req.Seconds
		}
		if delta < 0 {
			writeErr(w, http.StatusBadRequest, "seconds must be non-negative")
			return
		}
		day := now().Format("2006-01-02")
		row, err := store.AddAttendance(r.Context(), req.UserID, day, delta)
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"seconds":       row.Seconds,
			"session_count": row.SessionCount,
		})
	}
}
