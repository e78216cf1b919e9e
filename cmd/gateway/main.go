package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/ST-CK/Sturoom/internal/api/http"
	"github.com/ST-CK/Sturoom/internal/auth"
	"github.com/ST-CK/Sturoom/internal/config"
	"github.com/ST-CK/Sturoom/internal/db"
	"github.com/ST-CK/Sturoom/internal/extract"
	"github.com/ST-CK/Sturoom/internal/genai"
	"github.com/ST-CK/Sturoom/internal/quiz"
	"github.com/ST-CK/Sturoom/internal/report"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)

	// --- Completion API ---
	completion, err := genai.NewOpenAICompletion(cfg.OpenAIKey)
	if err != nil {
		log.Fatalf("openai client: %v", err)
	}
	gen := genai.NewService(completion, cfg.OpenAIModel, cfg.NarrativeModel)

	// --- Auth ---
	// With an identity provider configured, tokens are verified against it.
	// Otherwise local HMAC tokens keep dev and offline setups working.
	var verifier auth.TokenVerifier
	if cfg.AuthURL != "" {
		verifier = auth.NewRemoteVerifier(cfg.AuthURL, cfg.AuthServiceKey)
	} else {
		verifier = auth.NewLocalVerifier(cfg.HMACSecret)
		log.Printf("AUTH_URL unset, using local HMAC tokens")
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := dbh.PingContext(req.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	api.Mount(r, api.Deps{
		Store:     store,
		Grader:    quiz.NewGrader(store),
		Extractor: extract.New(cfg.FetchTimeout),
		GenAI:     gen,
		Reports:   report.NewAggregator(store),
		Verifier:  verifier,
	})

	log.Printf("gateway listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
