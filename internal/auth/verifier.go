// Package auth verifies bearer tokens issued by the external identity
// service. Tokens are HS256-signed JWTs whose subject claim carries the
// customer id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors.
var (
	ErrInvalidToken = errors.New("invalid token")
)

// Config holds verifier configuration.
type Config struct {
	SecretKey string
}

// Verifier validates HS256 JWTs against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{secret: []byte(cfg.SecretKey)}
}

// ValidateToken verifies the token signature and expiry and returns the
// customer id from the subject claim.
func (v *Verifier) ValidateToken(_ context.Context, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return 0, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	customerID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject is not a customer id", ErrInvalidToken)
	}

	return customerID, nil
}
