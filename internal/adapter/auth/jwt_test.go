package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, string(pemBytes)
}

func signToken(t *testing.T, priv *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestNoopVerifierAlwaysReturnsGuest(t *testing.T) {
	v := NewNoopVerifier()
	id := v.Resolve("Bearer whatever", "conn-1", "Anon")
	if !id.IsGuest || id.UserID != "conn-1" || id.Username != "Anon" {
		t.Errorf("got %+v, want guest identity bound to connID", id)
	}
}

func TestVerifierResolvesValidToken(t *testing.T) {
	priv, pubPEM := generateKeyPair(t)
	v, err := NewVerifier(pubPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	claims := Claims{
		UserID:   "user-42",
		Username: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok := signToken(t, priv, claims)

	id := v.Resolve("Bearer "+tok, "conn-1", "")
	if id.IsGuest || id.UserID != "user-42" || id.Username != "Alice" {
		t.Errorf("got %+v, want resolved identity user-42/Alice", id)
	}
}

func TestVerifierFallsBackToGuestOnMissingHeader(t *testing.T) {
	_, pubPEM := generateKeyPair(t)
	v, err := NewVerifier(pubPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	id := v.Resolve("", "conn-2", "Guesty")
	if !id.IsGuest || id.UserID != "conn-2" {
		t.Errorf("got %+v, want guest fallback bound to connID", id)
	}
}

func TestVerifierFallsBackToGuestOnExpiredToken(t *testing.T) {
	priv, pubPEM := generateKeyPair(t)
	v, err := NewVerifier(pubPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok := signToken(t, priv, claims)

	id := v.Resolve("Bearer "+tok, "conn-3", "")
	if !id.IsGuest {
		t.Errorf("got %+v, want guest fallback on expired token", id)
	}
}

func TestVerifierFallsBackToGuestOnWrongKey(t *testing.T) {
	priv, _ := generateKeyPair(t)
	_, otherPubPEM := generateKeyPair(t)
	v, err := NewVerifier(otherPubPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok := signToken(t, priv, claims)

	id := v.Resolve("Bearer "+tok, "conn-4", "")
	if !id.IsGuest {
		t.Errorf("got %+v, want guest fallback when signed by a different key", id)
	}
}

func TestNewVerifierRejectsInvalidPEM(t *testing.T) {
	if _, err := NewVerifier("not a pem block"); err == nil {
		t.Error("expected error for invalid PEM input")
	}
}
