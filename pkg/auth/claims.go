package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	// SessionID becomes the jti and keys the persisted session.
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued to clients. The role is
// deliberately absent: it can change mid-session and is read from the user
// record instead.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
