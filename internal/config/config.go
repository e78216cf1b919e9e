package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Completion API.
	OpenAIKey      string
	OpenAIModel    string
	NarrativeModel string

	// Identity provider (remote token verification). When AuthURL is empty the
	// service falls back to local HMAC tokens signed with HMACSecret.
	AuthURL        string
	AuthServiceKey string
	HMACSecret     string

	CORSOrigins []string

	// Outbound file-download budget.
	FetchTimeout time.Duration
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:       addr,
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOr("OPENAI_MODEL", "gpt-4o-mini"),
		NarrativeModel: envOr("OPENAI_NARRATIVE_MODEL", "gpt-4o"),
		AuthURL:        os.Getenv("AUTH_URL"),
		AuthServiceKey: os.Getenv("AUTH_SERVICE_KEY"),
		HMACSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,https://sturoom.vercel.app"),
		FetchTimeout:   envSeconds("FETCH_TIMEOUT_SEC", 20*time.Second),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envSeconds(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
