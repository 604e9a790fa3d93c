// Package jwt implements generation and parsing of JWT tokens with custom claims.
//
// Maker defines the interface for issuing and verifying tokens carrying the
// username, role and user UID. MakerImpl is the concrete implementation backed
// by a secret key and a token TTL.
package jwt

import (
	"time"
)

// Maker describes the interface for generating and parsing JWT tokens.
type Maker interface {
	// GenerateToken issues a signed token for the given username, role and user UID.
	GenerateToken(username, role, userUID string) (string, error)
	// ParseToken verifies a token and returns its custom claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker using an HS256 secret key and a token lifetime.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a new MakerImpl from a secret key and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
