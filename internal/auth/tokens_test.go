package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", 15*time.Minute, 24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %s", claims.UserID)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("Email = %s", claims.Email)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %s, want %s", claims.TokenType, TokenTypeAccess)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret", 15*time.Minute, 24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute, 24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := ValidateToken(token, "secret"); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}

func TestRefreshToken_CarriesRefreshType(t *testing.T) {
	issuer := NewTokenIssuer("secret", 15*time.Minute, 24*time.Hour)

	token, err := issuer.IssueRefreshToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("TokenType = %s, want %s", claims.TokenType, TokenTypeRefresh)
	}
}
