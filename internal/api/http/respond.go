// Package http holds the chi handlers for the quiz, chat, report and
// attendance endpoint groups.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeErr maps not-found sentinels to 404 and everything else to 500, with
// the underlying message surfaced as-is.
func storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound),
		errors.Is(err, quiz.ErrQuestionNotFound),
		errors.Is(err, quiz.ErrProfileNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
