package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Uniqueness violations. Each wraps ErrConflict.
var (
	ErrDuplicateEmail  = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrDuplicateHandle = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrDuplicatePhone  = fmt.Errorf("%w: phone number already registered", ErrConflict)
)

// Account lifecycle errors
var (
	ErrInvalidCode = errors.New("invalid verification code")
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeConsumed is returned once a verification code has been used
	// (or was never issued). It wraps ErrNotFound.
	ErrCodeConsumed               = fmt.Errorf("%w: no pending verification code", ErrNotFound)
	ErrEmailNotVerified           = errors.New("email address not verified")
	ErrInvalidCredentials         = errors.New("incorrect username or password")
	ErrPasswordMismatch           = errors.New("passwords do not match")
	ErrInvalidPassword            = errors.New("invalid password")
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired reset token")
	ErrUnauthenticated            = errors.New("unauthenticated")
)

// Chat gateway errors
var (
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamError       = errors.New("upstream provider error")
	ErrServiceUnavailable  = errors.New("service unavailable")
)
