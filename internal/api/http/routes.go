package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ST-CK/Sturoom/internal/auth"
	"github.com/ST-CK/Sturoom/internal/extract"
	"github.com/ST-CK/Sturoom/internal/genai"
	"github.com/ST-CK/Sturoom/internal/quiz"
	"github.com/ST-CK/Sturoom/internal/report"
)

// Deps bundles the service handles the route tree needs. Everything is
// injected so tests can swap in fakes.
type Deps struct {
	Store     quiz.Store
	Grader    *quiz.Grader
	Extractor *extract.Extractor
	GenAI     *genai.Service
	Reports   *report.Aggregator
	Verifier  auth.TokenVerifier
	Now       func() time.Time
}

// Mount attaches every endpoint group to r.
func Mount(r chi.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	r.Route("/quiz", func(qr chi.Router) {
		qr.With(auth.Middleware(d.Verifier)).Post("/session/start", StartSessionHandler(d.Store))
		qr.With(auth.Middleware(d.Verifier)).Post("/run/start", StartRunHandler(d.Store))
		qr.With(auth.Middleware(d.Verifier)).Post("/from-url", GenerateFromURLHandler(d.Store, d.Extractor, d.GenAI))
		// attempt accepts a user_email fallback for older clients
		qr.With(auth.OptionalMiddleware(d.Verifier)).Post("/attempt", AttemptHandler(d.Store, d.Grader))
	})

	r.Post("/chat/", ChatHandler(d.GenAI))

	r.Route("/report", func(rr chi.Router) {
		rr.Get("/summary", ReportSummaryHandler(d.Reports))
		rr.Post("/ai-summary", AIReportHandler(d.GenAI))
	})

	r.Post("/attendance/log", AttendanceLogHandlerAt(d.Store, d.Now))

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "Sturoom server running",
			"routes": []string{"/quiz", "/chat", "/attendance", "/report"},
		})
	})
}
