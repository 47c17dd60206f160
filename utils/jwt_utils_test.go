package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")

	token, err := GenerateAccessToken("652f1a2b3c4d5e6f70819202", "ACME-jdoe")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "652f1a2b3c4d5e6f70819202" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Username != "ACME-jdoe" {
		t.Errorf("Username = %q", claims.Username)
	}
}

// The secret arrives via .env well after package init; tokens must be
// signed and checked with the value in effect at call time, never a key
// snapshotted at startup.
func TestTokenUsesSecretSetAfterInit(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateAccessToken("652f1a2b3c4d5e6f70819202", "ACME-jdoe")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	t.Setenv("JWT_SECRET", "rotated-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed under the old secret still verifies after rotation")
	}

	t.Setenv("JWT_SECRET", "first-secret")
	if _, err := ValidateToken(token); err != nil {
		t.Errorf("token rejected under its own secret: %v", err)
	}
}

func TestTokenWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateAccessToken("652f1a2b3c4d5e6f70819202", "ACME-jdoe"); err == nil {
		t.Error("GenerateAccessToken signed a token with no secret configured")
	}
	if _, err := ValidateToken("whatever"); err == nil {
		t.Error("ValidateToken accepted input with no secret configured")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "garbage-secret")

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for a malformed token")
	}
}

func TestValidateToken_TamperedSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "tamper-secret")

	token, err := GenerateRefreshToken("652f1a2b3c4d5e6f70819202", "ACME-jdoe")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	if _, err := ValidateToken(token + "x"); err == nil {
		t.Error("expected error for a tampered token")
	}
}
