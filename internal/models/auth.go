package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by an access token. The subject is the
// account handle.
type TokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Handle returns the account handle the token was issued for
func (c *TokenClaims) Handle() string {
	return c.Subject
}
