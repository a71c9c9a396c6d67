// Package auth resolves an externally-issued bearer token into an
// identity at WebSocket upgrade. It only verifies: token issuance is
// somebody else's service, not this one's job.
package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a verified token (or a guest fallback) resolves to.
type Identity struct {
	UserID   string
	Username string
	IsGuest  bool
}

// Claims is the shape this server expects an upstream auth service to
// have signed.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier validates RS256 bearer tokens against a single public key.
type Verifier struct {
	publicKey *rsa.PublicKey
}

// NewVerifier parses a PEM-encoded RSA public key. A Verifier with no key
// configured (NewNoopVerifier) always falls back to guest identities.
func NewVerifier(publicKeyPEM string) (*Verifier, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM encoded public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not of type RSA")
	}
	return &Verifier{publicKey: rsaPub}, nil
}

// NewNoopVerifier returns a Verifier that has no key configured: every
// connection resolves to a guest identity. Used when AUTH_PUBLIC_KEY is
// unset, so a bare deployment still runs without a token issuer.
func NewNoopVerifier() *Verifier {
	return &Verifier{}
}

// Resolve extracts and verifies the bearer token from an Authorization
// header, or returns a guest identity (bound to connID) if the header is
// absent or the Verifier has no key configured.
func (v *Verifier) Resolve(authHeader, connID, guestName string) Identity {
	if v.publicKey == nil {
		return Identity{UserID: connID, Username: guestName, IsGuest: true}
	}
	token, err := extractBearer(authHeader)
	if err != nil {
		return Identity{UserID: connID, Username: guestName, IsGuest: true}
	}
	claims, err := v.validate(token)
	if err != nil {
		return Identity{UserID: connID, Username: guestName, IsGuest: true}
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}
}

func (v *Verifier) validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func extractBearer(authHeader string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", errors.New("missing bearer prefix")
	}
	return strings.TrimPrefix(authHeader, prefix), nil
}
