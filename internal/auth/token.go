package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionToken is the signed cookie value referencing a stored session.
type SessionToken struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}

// Issue creates a new session id and signs it with HS256.
func Issue(issuer, key string, ttl time.Duration) (SessionToken, error) {
	now := time.Now()
	sid := uuid.NewString()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		ID:        sid,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Value: signed, SessionID: sid, ExpiresAt: exp}, nil
}

// Parse validates a signed token and returns its session id.
func Parse(tokenStr, key, issuer string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.ID == "" {
		return "", errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return "", errors.New("issuer mismatch")
	}
	return claims.ID, nil
}
