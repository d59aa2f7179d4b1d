package auth

import (
	"testing"
	"time"

	"github.com/EsnatJahan/E-Commerce/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, 42, "a@b.com", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@b.com" || claims.Role != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	// 过期时间应为签发时间 + 24 小时
	lifetime := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if lifetime != TokenTTL {
		t.Fatalf("token lifetime = %v, want %v", lifetime, TokenTTL)
	}
	if time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("fresh token already expired")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "right"}, 1, "a@b.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(&config.JWTConfig{Secret: "wrong"}, token); err == nil {
		t.Fatalf("token with wrong secret accepted")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := ParseToken(cfg, tok); err == nil {
			t.Fatalf("garbage token %q accepted", tok)
		}
	}
}
