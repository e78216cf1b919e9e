package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocalVerifierRoundTrip(t *testing.T) {
	v := NewLocalVerifier("test-secret")
	tok, err := v.IssueToken("u1", "kim@sturoom.dev")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	u, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "u1" || u.Email != "kim@sturoom.dev" {
		t.Errorf("user = %+v", u)
	}
}

func TestLocalVerifierRejectsWrongSecret(t *testing.T) {
	tok, _ := NewLocalVerifier("secret-a").IssueToken("u1", "")
	if _, err := NewLocalVerifier("secret-b").Verify(context.Background(), tok); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestRemoteVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"u-42","email":"kim@sturoom.dev"}`))
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL, "service-key")
	u, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "u-42" {
		t.Errorf("id = %q", u.ID)
	}
	if _, err := v.Verify(context.Background(), "bad-token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestMiddleware(t *testing.T) {
	v := NewLocalVerifier("test-secret")
	tok, _ := v.IssueToken("u1", "")

	var sawUser User
	h := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser, _ = UserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: code = %d", rec.Code)
	}
	if sawUser.ID != "u1" {
		t.Errorf("context user = %+v", sawUser)
	}
}
