package http

import (
	"encoding/json"
	"net/http"

	"github.com/ST-CK/Sturoom/internal/genai"
	"github.com/ST-CK/Sturoom/internal/report"
)

// GET /report/summary?user_id=<uuid|email>
func ReportSummaryHandler(agg *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeErr(w, http.StatusBadRequest, "user_id required")
			return
		}
		sum, err := agg.Summary(r.Context(), userID)
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// POST /report/ai-summary  {summary: <object>}
func AIReportHandler(gen *genai.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Summary json.RawMessage `json:"summary"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(req.Summary) == 0 || string(req.Summary) == "null" {
			writeErr(w, http.StatusBadRequest, "summary required")
			return
		}
		narrative, err := gen.GenerateNarrative(r.Context(), req.Summary)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ai_report": narrative})
	}
}
