package http

import (
	"encoding/json"
	"net/http"

	"github.com/ST-CK/Sturoom/internal/genai"
)

// POST /chat/  {message}
func ChatHandler(gen *genai.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Message == "" {
			writeErr(w, http.StatusBadRequest, "message required")
			return
		}
		reply, err := gen.Chat(r.Context(), req.Message)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	}
}
