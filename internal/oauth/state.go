package oauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

type stateClaims struct {
	Provider string `json:"prv"`
	Platform string `json:"plt"`
	jwt.RegisteredClaims
}

// stateSigner issues the OAuth state parameter as a short-lived HS256 JWT, so
// the callback needs no server-side session.
type stateSigner struct {
	secret []byte
	ttl    time.Duration
}

func newStateSigner(secret string, ttl time.Duration) *stateSigner {
	return &stateSigner{secret: []byte(secret), ttl: ttl}
}

func (s *stateSigner) Sign(provider, platform string) (string, error) {
	now := time.Now()
	claims := &stateClaims{
		Provider: provider,
		Platform: platform,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *stateSigner) Verify(state string) (*stateClaims, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidState
	}
	return claims, nil
}
