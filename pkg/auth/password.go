package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8
	MaxPasswordLen = 72 // bcrypt ignores input past 72 bytes
)

// PasswordSpecialChars is the set a password must draw at least one character from
const PasswordSpecialChars = "@$!%*#?&"

// PasswordValidationError holds validation error details (internal use only)
type PasswordValidationError struct {
	Errors []string
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return "invalid password"
}

// Detail joins the individual policy violations
func (e *PasswordValidationError) Detail() string {
	return strings.Join(e.Errors, "; ")
}

// Common weak passwords to reject
var commonPasswords = map[string]bool{
	"password1!":   true,
	"password123!": true,
	"passw0rd!":    true,
	"p@ssw0rd":     true,
	"p@ssword1":    true,
	"qwerty123!":   true,
	"welcome1!":    true,
	"letmein1!":    true,
	"admin123!":    true,
	"abc12345!":    true,
	"12345678a!":   true,
	"trustno1!":    true,
}

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, BcryptCost)
}

// HashPasswordWithCost hashes with an explicit bcrypt cost
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword enforces the password policy: at least MinPasswordLen
// characters with a letter, a digit and one of PasswordSpecialChars
func ValidatePassword(password string) error {
	errors := make([]string, 0)

	if len(password) < MinPasswordLen {
		errors = append(errors, fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	if len(password) > MaxPasswordLen {
		errors = append(errors, fmt.Sprintf("must be at most %d bytes", MaxPasswordLen))
	}

	hasLetter := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasLetter {
		errors = append(errors, "must contain at least one letter")
	}
	if !hasDigit {
		errors = append(errors, "must contain at least one digit")
	}
	if !hasSpecial {
		errors = append(errors, "must contain at least one of "+PasswordSpecialChars)
	}

	if commonPasswords[strings.ToLower(password)] {
		errors = append(errors, "is too common, please choose a more unique password")
	}

	if len(errors) > 0 {
		return &PasswordValidationError{Errors: errors}
	}

	return nil
}
