package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sqlarena/sqlarena/internal/model"
)

var testUser = &model.User{ID: 42, Username: "testuser123", Email: "testuser123@example.com"}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("super-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}

	tok, err := issuer.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := issuer.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.UserID != testUser.ID || claims.Username != testUser.Username {
		t.Fatalf("claims mismatch: got %+v", claims)
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != TokenTTL {
		t.Errorf("expected ttl %s, got %s", TokenTTL, ttl)
	}
}

func TestIssue_PayloadShape(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer("super-secret")
	tok, err := issuer.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("payload is not base64url: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}

	if payload["userId"] != float64(42) {
		t.Errorf("expected userId 42, got %v", payload["userId"])
	}
	if payload["username"] != "testuser123" {
		t.Errorf("expected username testuser123, got %v", payload["username"])
	}
	if _, ok := payload["exp"]; !ok {
		t.Error("expected exp claim")
	}
}

func TestIssue_DistinctTokens(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, _ := NewTokenIssuer("super-secret", WithClock(func() time.Time { return fixed }))

	first, _ := issuer.Issue(testUser)
	second, _ := issuer.Issue(testUser)

	if first == second {
		t.Error("tokens issued at the same instant should still differ")
	}
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past, _ := NewTokenIssuer("secret", WithClock(func() time.Time { return now.Add(-25 * time.Hour) }))
	tok, err := past.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	current, _ := NewTokenIssuer("secret")
	if _, err := current.Validate(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	signer, _ := NewTokenIssuer("right-secret")
	tok, _ := signer.Issue(testUser)

	verifier, _ := NewTokenIssuer("wrong-secret")
	if _, err := verifier.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID:   1,
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	issuer, _ := NewTokenIssuer("secret")
	if _, err := issuer.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer("k")
	if _, err := issuer.Validate("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
