package utils

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "ADMIN", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.UserID != 42 || id.Role != "ADMIN" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAccessTokenRejected(t *testing.T) {
	tok, _ := NewAccessToken("secret", 42, "USER", 5)
	if _, err := ParseAccessToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret accepted: %v", err)
	}
	expired, _ := NewAccessToken("secret", 42, "USER", -1)
	if _, err := ParseAccessToken("secret", expired.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, err := ParseAccessToken("secret", "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length %d", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) == rt.Raw || len(HashRefreshRaw(rt.Raw)) != 64 {
		t.Fatalf("hash not applied")
	}
}

func TestPassword(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	h, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(h, "correct horse") || VerifyPassword(h, "wrong horse") {
		t.Fatalf("verify mismatch")
	}
}
