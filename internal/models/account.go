package models

import (
	"strings"
	"time"
)

// Account roles
const (
	RoleUser       = "user"
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
)

// Lifecycle states reported to clients
const (
	StatePendingVerification       = "pending_verification"
	StateVerifiedIncompleteProfile = "verified_incomplete_profile"
	StateProfileComplete           = "profile_complete"
)

// Next-step hints returned by the signup and recovery flows
const (
	NextStepVerifyEmail      = "verify_email"
	NextStepCompleteProfile  = "complete_profile"
	NextStepContactInfo      = "contact_info"
	NextStepProfessionalInfo = "professional_info"
	NextStepDashboard        = "dashboard"
	NextStepCheckEmail       = "check_email"
	NextStepLogin            = "login"
)

type Account struct {
	ID               string
	Handle           string
	Email            string
	Phone            string // digits only, empty when unset
	PasswordHash     string
	FirstName        string
	LastName         string
	Role             string
	Active           bool
	Verified         bool
	ProfileCompleted bool

	VerificationCode          string
	VerificationCodeExpiresAt *time.Time

	ResetTokenHash      string // SHA-256 fingerprint, never the token itself
	ResetTokenExpiresAt *time.Time

	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// FullName joins first and last name, returning "" when both are empty
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// HasPendingVerification reports whether a verification code is outstanding
func (a *Account) HasPendingVerification() bool {
	return a.VerificationCode != ""
}

// VerificationExpired reports whether the outstanding verification code is past its expiry
func (a *Account) VerificationExpired(now time.Time) bool {
	return a.VerificationCodeExpiresAt != nil && now.After(*a.VerificationCodeExpiresAt)
}

// HasValidResetToken reports whether a reset token is outstanding and unexpired
func (a *Account) HasValidResetToken(now time.Time) bool {
	return a.ResetTokenHash != "" && a.ResetTokenExpiresAt != nil && now.Before(*a.ResetTokenExpiresAt)
}

// ClearVerification drops the outstanding verification code
func (a *Account) ClearVerification() {
	a.VerificationCode = ""
	a.VerificationCodeExpiresAt = nil
}

// ClearResetToken drops the outstanding password reset token
func (a *Account) ClearResetToken() {
	a.ResetTokenHash = ""
	a.ResetTokenExpiresAt = nil
}

// LifecycleState derives the signup state from the status flags
func (a *Account) LifecycleState() string {
	switch {
	case !a.Active:
		return StatePendingVerification
	case !a.ProfileCompleted:
		return StateVerifiedIncompleteProfile
	default:
		return StateProfileComplete
	}
}
