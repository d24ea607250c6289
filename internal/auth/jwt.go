package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "mindleap"

// verifyToken validates an HS256-signed token against the configured secret
// and returns the subject user ID. Verification failures are differentiated
// so callers can surface distinct messages for expired, not-yet-valid and
// malformed tokens.
func verifyToken(tokenString string, secret []byte) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, Unauthenticated("Token expired")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return uuid.Nil, Unauthenticated("Token not active")
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, Unauthenticated("Invalid token")
		default:
			return uuid.Nil, Unauthenticated("Authentication failed")
		}
	}

	if !parsed.Valid {
		return uuid.Nil, Unauthenticated("Invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, Unauthenticated("Invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, Unauthenticated("Invalid token")
	}

	return userID, nil
}
