package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lanceraa/api/internal/models"
)

// TokenManager issues and verifies signed access tokens
type TokenManager struct {
	secret            []byte
	method            *jwt.SigningMethodHMAC
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenManager creates a TokenManager for an HMAC algorithm name
// (HS256, HS384 or HS512)
func NewTokenManager(secret, algorithm string, accessExpiry time.Duration) (*TokenManager, error) {
	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256", "":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenManager{
		secret:            []byte(secret),
		method:            method,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}, nil
}

// AccessTokenExpiry returns the lifetime of issued tokens
func (tm *TokenManager) AccessTokenExpiry() time.Duration {
	return tm.accessTokenExpiry
}

// IssueToken creates an access token whose subject is the account handle
func (tm *TokenManager) IssueToken(account *models.Account) (string, error) {
	now := tm.now()

	claims := &models.TokenClaims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   account.Handle,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies signature, algorithm and expiry and returns the
// claims. Every failure wraps models.ErrUnauthenticated.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthenticated
	}

	if claims.Subject == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", models.ErrUnauthenticated)
	}

	return claims, nil
}
