package auth

import (
	"errors"
	"testing"
	"time"
)

func testConfig() TokenConfig {
	return TokenConfig{
		SecretKey:       "test-secret-key",
		AccessLifetime:  15 * time.Minute,
		RefreshLifetime: 7 * 24 * time.Hour,
		Issuer:          "test-issuer",
	}
}

func TestTokenManager_GenerateAndValidateAccessToken(t *testing.T) {
	manager := NewTokenManager(testConfig())

	token, err := manager.GenerateAccessToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Error("GenerateAccessToken() returned empty token")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %v, want user-123", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("claims.Username = %v, want alice", claims.Username)
	}
	if claims.TokenType != tokenTypeAccess {
		t.Errorf("claims.TokenType = %v, want access", claims.TokenType)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("claims.Issuer = %v, want test-issuer", claims.Issuer)
	}
}

func TestTokenManager_GenerateAndValidateRefreshToken(t *testing.T) {
	manager := NewTokenManager(testConfig())

	token, err := manager.GenerateRefreshToken("user-456", "bob")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := manager.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		t.Errorf("claims.TokenType = %v, want refresh", claims.TokenType)
	}
}

func TestTokenManager_TokenTypesDoNotCross(t *testing.T) {
	manager := NewTokenManager(testConfig())

	access, err := manager.GenerateAccessToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	refresh, err := manager.GenerateRefreshToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if _, err := manager.ValidateRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token accepted as refresh: %v", err)
	}
	if _, err := manager.ValidateAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token accepted as access: %v", err)
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	config := testConfig()
	config.AccessLifetime = -time.Minute
	manager := NewTokenManager(config)

	token, err := manager.GenerateAccessToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got: %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	manager := NewTokenManager(testConfig())

	token, err := manager.GenerateAccessToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	other := testConfig()
	other.SecretKey = "a-different-secret"
	if _, err := NewTokenManager(other).ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret must not validate: %v", err)
	}
}

func TestTokenManager_GarbageToken(t *testing.T) {
	manager := NewTokenManager(testConfig())

	if _, err := manager.ValidateAccessToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}
