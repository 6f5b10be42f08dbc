package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Username string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to the dashboard client.
type AccessTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
