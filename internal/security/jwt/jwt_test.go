package jwt

import (
	"testing"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndDecode(t *testing.T) {
	m := NewTokenManager("secret")
	token, err := m.Generate("u1", "employer", time.Minute)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := m.DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if id, role := Identity(claims); id != "u1" || role != "employer" {
		t.Errorf("Identity() = %q, %q", id, role)
	}
}

func TestDecodeRejects(t *testing.T) {
	m := NewTokenManager("secret")

	expired, _ := m.Generate("u1", "worker", -time.Minute)
	if _, err := m.DecodeToken(expired); err == nil {
		t.Errorf("DecodeToken() accepted an expired token")
	}

	other, _ := NewTokenManager("other").Generate("u1", "worker", time.Minute)
	if _, err := m.DecodeToken(other); err == nil {
		t.Errorf("DecodeToken() accepted a token signed with another key")
	}

	none, _ := jwtstd.NewWithClaims(jwtstd.SigningMethodNone, jwtstd.MapClaims{"sub": "u1"}).SignedString(jwtstd.UnsafeAllowNoneSignatureType)
	if _, err := m.DecodeToken(none); err == nil {
		t.Errorf("DecodeToken() accepted an unsigned token")
	}

	if _, err := NewTokenManager("").DecodeToken(expired); err != ErrMissingKey {
		t.Errorf("DecodeToken() without key error = %v, want ErrMissingKey", err)
	}
}

func TestIdentityNestedPayload(t *testing.T) {
	claims := map[string]any{
		"sub":     "access",
		"payload": map[string]any{"user_id": "u9", "role": "worker"},
	}
	if id, role := Identity(claims); id != "u9" || role != "worker" {
		t.Errorf("Identity() = %q, %q", id, role)
	}

	claims = map[string]any{"id": "u3", "role": "employer"}
	if id, role := Identity(claims); id != "u3" || role != "employer" {
		t.Errorf("Identity() = %q, %q", id, role)
	}
}
