package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// StreamClaims are the claims carried by a live record stream token. Endpoints, when present,
// limits which endpoints the holder may subscribe to.
type StreamClaims struct {
	Endpoints []string `json:"endpoints,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the claims grant access to endpoint.
func (c *StreamClaims) Allows(endpoint string) bool {
	if c == nil || len(c.Endpoints) == 0 {
		return true
	}
	for _, allowed := range c.Endpoints {
		if strings.EqualFold(strings.TrimSpace(allowed), endpoint) {
			return true
		}
	}
	return false
}

type TokenValidator interface {
	Validate(token string) (*StreamClaims, error)
}

// HMACValidator validates HS256 tokens signed with a shared secret.
type HMACValidator struct {
	secret []byte
	now    func() time.Time
}

func NewHMACValidator(secret string) *HMACValidator {
	return &HMACValidator{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

func (v *HMACValidator) Validate(token string) (*StreamClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: stream secret not configured", ErrInvalidToken)
	}

	claims := &StreamClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
