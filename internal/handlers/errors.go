package handlers

import (
	"errors"
	"net/http"

	"github.com/lanceraa/api/internal/models"
	pkgauth "github.com/lanceraa/api/pkg/auth"
	pkghttp "github.com/lanceraa/api/pkg/http"
)

const passwordPolicyMessage = "Password must be at least 8 characters and contain a letter, a number and a special character (" +
	pkgauth.PasswordSpecialChars + ")"

// writeServiceError maps a service error to its HTTP response. Order
// matters: ErrCodeConsumed wraps ErrNotFound and the duplicate errors wrap
// ErrConflict.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrCodeExpired):
		pkghttp.WriteCodedError(w, http.StatusBadRequest, "code_expired", "EXPIRED_CODE",
			"Verification code has expired. Please request a new one.")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_code", "Invalid verification code")
	case errors.Is(err, models.ErrCodeConsumed):
		pkghttp.WriteNotFound(w, "No pending verification code. Please request a new one.")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "User not found")

	case errors.Is(err, models.ErrDuplicateEmail):
		pkghttp.WriteConflict(w, "Email already registered")
	case errors.Is(err, models.ErrDuplicateHandle):
		pkghttp.WriteConflict(w, "Username already taken")
	case errors.Is(err, models.ErrDuplicatePhone):
		pkghttp.WriteConflict(w, "Phone number already registered")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")

	case errors.Is(err, models.ErrPasswordMismatch):
		pkghttp.WriteBadRequest(w, "Passwords do not match")
	case errors.Is(err, models.ErrInvalidPassword):
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "invalid_password", passwordPolicyMessage, detailsOf(err))
	case errors.Is(err, models.ErrInvalidOrExpiredResetToken):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired reset token")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")

	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Incorrect username or password")
	case errors.Is(err, models.ErrUnauthenticated):
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
	case errors.Is(err, models.ErrEmailNotVerified):
		pkghttp.WriteForbidden(w, "Please verify your email first")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")

	case errors.Is(err, models.ErrServiceUnavailable):
		pkghttp.WriteServiceUnavailable(w, "AI service overloaded. Please try again later")
	case errors.Is(err, models.ErrUpstreamError):
		pkghttp.WriteBadGateway(w, "AI service temporarily unavailable")

	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// detailsOf returns the policy violations carried by a password error
func detailsOf(err error) string {
	var policyErr *pkgauth.PasswordValidationError
	if errors.As(err, &policyErr) {
		return policyErr.Detail()
	}
	return ""
}
