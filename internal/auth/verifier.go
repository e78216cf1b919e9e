// Package auth verifies bearer tokens and carries the resolved user through
// the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// User is what token verification resolves to. The id is trusted for
// subsequent writes.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenVerifier turns a bearer token into a User.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// RemoteVerifier forwards the token to the identity provider's user-info
// endpoint and trusts the id it returns.
type RemoteVerifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewRemoteVerifier(baseURL, serviceKey string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.serviceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return User{}, ErrInvalidToken
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, err
	}
	if u.ID == "" {
		return User{}, ErrInvalidToken
	}
	return u, nil
}

// LocalVerifier parses HMAC-signed JWTs issued for offline development.
type LocalVerifier struct {
	hmac []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{hmac: []byte(secret)}
}

type localClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken mints a dev token for the given user.
func (v *LocalVerifier) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &localClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "sturoom-local",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(v.hmac)
}

func (v *LocalVerifier) Verify(ctx context.Context, token string) (User, error) {
	parsed, err := jwt.ParseWithClaims(token, &localClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.hmac, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*localClaims)
	if !ok || c.Subject == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: c.Subject, Email: c.Email}, nil
}
