package auth

import (
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute)

	token, expiresAt, err := m.GenerateAccessToken("operador")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 14*time.Minute {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	claims, err := m.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "operador" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestJWTManagerRejectsExpired(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.GenerateAccessToken("operador")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m.now = time.Now
	if _, err := m.ParseAndValidate(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestJWTManagerRejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTManager(testSecret, time.Minute).GenerateAccessToken("operador")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := NewJWTManager("fedcba9876543210fedcba9876543210", time.Minute)
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
