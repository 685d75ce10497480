package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/internal/repositories"
	pkgauth "github.com/lanceraa/api/pkg/auth"
	pkglogger "github.com/lanceraa/api/pkg/logger"
)

// maxHandleAttempts bounds how often signup retries after losing a handle
// race to a concurrent insert
const maxHandleAttempts = 5

// TokenIssuer issues bearer tokens for authenticated accounts
type TokenIssuer interface {
	IssueToken(account *models.Account) (string, error)
	AccessTokenExpiry() time.Duration
}

// Transactor runs a unit of work against repositories sharing one transaction
type Transactor interface {
	WithinTransaction(ctx context.Context, fn repositories.TxFunc) error
}

// AccountServiceConfig holds the tunables of the account lifecycle
type AccountServiceConfig struct {
	ResetTokenTTL time.Duration
	ResetURLBase  string // frontend page that accepts ?token=
}

// StepResult reports the outcome of a lifecycle step and what the client
// should do next
type StepResult struct {
	Message  string
	NextStep string
	UserID   string
}

// LoginResult is returned by a successful Login
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Account     *models.Account
}

// AccountView bundles an account with its profile. Profile is nil until
// the email address has been verified.
type AccountView struct {
	Account *models.Account
	Profile *models.Profile
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

type BasicProfileInput struct {
	Handle    string
	FirstName string
	LastName  string
	Role      string
}

type ContactInfoInput struct {
	Phone   string
	Address models.Address
}

type ProfessionalInfoInput struct {
	Skills          []string
	Bio             string
	YearsExperience *int
	HourlyRate      *float64
}

// ProfileUpdateInput carries a partial update; nil fields are left unchanged
type ProfileUpdateInput struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Bio          *string
	Skills       []string
	Zip          *string
	Website      *string
	LinkedIn     *string
	GitHub       *string
	Twitter      *string
	ProfileImage *string
}

// AccountService implements the signup, verification, profile completion,
// password recovery and login flows
type AccountService struct {
	accounts repositories.AccountStore
	profiles repositories.ProfileStore
	tx       Transactor
	codes    *CodeIssuer
	notifier Notifier
	tokens   TokenIssuer
	timing   *auth.TimingDelay
	audit    *pkglogger.AuditLogger
	logger   *slog.Logger
	config   AccountServiceConfig
	now      func() time.Time
}

func NewAccountService(
	accounts repositories.AccountStore,
	profiles repositories.ProfileStore,
	tx Transactor,
	codes *CodeIssuer,
	notifier Notifier,
	tokens TokenIssuer,
	timing *auth.TimingDelay,
	audit *pkglogger.AuditLogger,
	logger *slog.Logger,
	config AccountServiceConfig,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		profiles: profiles,
		tx:       tx,
		codes:    codes,
		notifier: notifier,
		tokens:   tokens,
		timing:   timing,
		audit:    audit,
		logger:   logger,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// comparisonHash returns a fixed bcrypt hash used when no account matches,
// so unknown identifiers cost the same as wrong passwords
func comparisonHash() string {
	dummyHashOnce.Do(func() {
		hash, err := pkgauth.HashPassword("dummy-password-for-timing@1")
		if err == nil {
			dummyHash = hash
		}
	})
	return dummyHash
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeHandle trims and lowercases a handle. Handles are stored
// lowercase, so lookups are case-insensitive.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// NormalizePhone strips everything but digits. It returns "" when the input
// holds no digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isPhoneIdentifier reports whether a login identifier is a phone number:
// all digits once a leading + is removed
func isPhoneIdentifier(identifier string) bool {
	digits := strings.TrimPrefix(identifier, "+")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InitialSignup creates an inactive account and dispatches a verification code
func (s *AccountService) InitialSignup(ctx context.Context, in SignupInput) (*StepResult, error) {
	email := NormalizeEmail(in.Email)

	if in.Password != in.ConfirmPassword {
		return nil, models.ErrPasswordMismatch
	}
	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidPassword, err)
	}

	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if exists {
		s.audit.LogFailure(ctx, pkglogger.EventSignup, "", email, "duplicate_email")
		return nil, models.ErrDuplicateEmail
	}

	passwordHash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	code, expiresAt, err := s.codes.Issue(email)
	if err != nil {
		s.logger.Error("failed to issue verification code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.createWithUniqueHandle(ctx, &models.Account{
		Email:                     email,
		PasswordHash:              passwordHash,
		FirstName:                 strings.TrimSpace(in.FirstName),
		LastName:                  strings.TrimSpace(in.LastName),
		Role:                      models.RoleUser,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			s.audit.LogFailure(ctx, pkglogger.EventSignup, "", email, "duplicate_email")
			return nil, models.ErrDuplicateEmail
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The account exists either way; a failed send is recoverable through
	// ResendVerification
	if err := s.notifier.SendVerificationCode(ctx, created.Email, code, expiresAt); err != nil {
		s.logger.Warn("failed to dispatch verification code",
			slog.String("account_id", created.ID),
			slog.Any("error", err))
	}

	s.audit.LogSuccess(ctx, pkglogger.EventSignup, created.ID, created.Email)

	return &StepResult{
		Message:  "Account created. Check your email for the verification code.",
		NextStep: models.NextStepVerifyEmail,
		UserID:   created.ID,
	}, nil
}

// createWithUniqueHandle derives a handle from the email and inserts the
// account. The unique constraint is authoritative: losing a race moves the
// counter on and tries again.
func (s *AccountService) createWithUniqueHandle(ctx context.Context, account *models.Account) (*models.Account, error) {
	base := DeriveHandleBase(account.Email)
	start := 0

	for attempt := 0; attempt < maxHandleAttempts; attempt++ {
		handle, counter, err := nextAvailableHandle(ctx, s.accounts, base, start)
		if err != nil {
			return nil, err
		}

		account.Handle = handle
		created, err := s.accounts.Create(ctx, account)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, models.ErrDuplicateHandle) {
			return nil, err
		}

		s.logger.Info("handle taken concurrently, retrying",
			slog.String("handle", handle),
			slog.Int("attempt", attempt+1))
		start = counter + 1
	}

	return nil, fmt.Errorf("could not allocate handle for base %q: %w", base, models.ErrDuplicateHandle)
}

// VerifyEmail consumes the outstanding verification code and activates the
// account. Checks run in order: account exists, a code is outstanding, the
// code matches, the code has not expired.
func (s *AccountService) VerifyEmail(ctx context.Context, accountID, code string) (*StepResult, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.HasPendingVerification() {
		return nil, models.ErrCodeConsumed
	}

	if !CodesEqual(account.VerificationCode, strings.TrimSpace(code)) {
		s.audit.LogFailure(ctx, pkglogger.EventEmailVerified, account.ID, account.Email, "invalid_code")
		return nil, models.ErrInvalidCode
	}

	if account.VerificationExpired(s.now()) {
		s.audit.LogFailure(ctx, pkglogger.EventEmailVerified, account.ID, account.Email, "code_expired")
		return nil, models.ErrCodeExpired
	}

	err = s.tx.WithinTransaction(ctx, func(accounts repositories.AccountStore, profiles repositories.ProfileStore) error {
		account.ClearVerification()
		account.Active = true
		account.Verified = true

		if _, err := accounts.Save(ctx, account); err != nil {
			return fmt.Errorf("activate account: %w", err)
		}
		if _, err := profiles.EnsureExists(ctx, account.ID); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to verify email",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogSuccess(ctx, pkglogger.EventEmailVerified, account.ID, account.Email)

	return &StepResult{
		Message:  "Email verified successfully",
		NextStep: models.NextStepCompleteProfile,
		UserID:   account.ID,
	}, nil
}

// ResendVerification issues a fresh code, replacing any outstanding one.
// Already active accounts succeed without a new code.
func (s *AccountService) ResendVerification(ctx context.Context, accountID string) (*StepResult, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Active {
		return &StepResult{
			Message:  "Email already verified",
			NextStep: models.NextStepCompleteProfile,
			UserID:   account.ID,
		}, nil
	}

	code, expiresAt, err := s.codes.Issue(account.Email)
	if err != nil {
		s.logger.Error("failed to issue verification code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account.VerificationCode = code
	account.VerificationCodeExpiresAt = &expiresAt

	if _, err := s.accounts.Save(ctx, account); err != nil {
		s.logger.Error("failed to store verification code",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.notifier.SendVerificationCode(ctx, account.Email, code, expiresAt); err != nil {
		s.logger.Error("failed to dispatch verification code",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogSuccess(ctx, pkglogger.EventVerificationResent, account.ID, account.Email)

	return &StepResult{
		Message:  "Verification code sent",
		NextStep: models.NextStepVerifyEmail,
		UserID:   account.ID,
	}, nil
}

// CheckEmail reports whether an account is registered under email
func (s *AccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.accounts.EmailExists(ctx, NormalizeEmail(email))
	if err != nil {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return exists, nil
}

// CompleteBasicProfile sets handle, names and role on a verified account
func (s *AccountService) CompleteBasicProfile(ctx context.Context, accountID string, in BasicProfileInput) (*StepResult, error) {
	account, err := s.verifiedAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	handle := NormalizeHandle(in.Handle)
	if handle != "" && handle != account.Handle {
		exists, err := s.accounts.HandleExists(ctx, handle)
		if err != nil {
			s.logger.Error("failed to check handle", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if exists {
			return nil, models.ErrDuplicateHandle
		}
		account.Handle = handle
	}

	account.FirstName = strings.TrimSpace(in.FirstName)
	account.LastName = strings.TrimSpace(in.LastName)
	account.Role = in.Role

	if _, err := s.accounts.Save(ctx, account); err != nil {
		return nil, s.mapSaveError(account.ID, err)
	}

	s.audit.LogSuccess(ctx, pkglogger.EventProfileUpdated, account.ID, account.Email)

	return &StepResult{
		Message:  "Basic information saved",
		NextStep: models.NextStepContactInfo,
		UserID:   account.ID,
	}, nil
}

// CompleteContactInfo stores the phone number and postal address
func (s *AccountService) CompleteContactInfo(ctx context.Context, accountID string, in ContactInfoInput) (*StepResult, error) {
	account, err := s.verifiedAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	phone := NormalizePhone(in.Phone)
	if err := s.ensurePhoneAvailable(ctx, account, phone); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(accounts repositories.AccountStore, profiles repositories.ProfileStore) error {
		account.Phone = phone
		if _, err := accounts.Save(ctx, account); err != nil {
			return err
		}

		profile, err := profiles.EnsureExists(ctx, account.ID)
		if err != nil {
			return err
		}
		profile.Address = in.Address
		_, err = profiles.Save(ctx, profile)
		return err
	})
	if err != nil {
		return nil, s.mapSaveError(account.ID, err)
	}

	s.audit.LogSuccess(ctx, pkglogger.EventProfileUpdated, account.ID, account.Email)

	return &StepResult{
		Message:  "Contact information saved",
		NextStep: models.NextStepProfessionalInfo,
		UserID:   account.ID,
	}, nil
}

// CompleteProfile stores professional details and marks the profile complete
func (s *AccountService) CompleteProfile(ctx context.Context, accountID string, in ProfessionalInfoInput) (*StepResult, error) {
	account, err := s.verifiedAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(accounts repositories.AccountStore, profiles repositories.ProfileStore) error {
		profile, err := profiles.EnsureExists(ctx, account.ID)
		if err != nil {
			return err
		}
		profile.Skills = cleanSkills(in.Skills)
		profile.Bio = strings.TrimSpace(in.Bio)
		profile.YearsExperience = in.YearsExperience
		profile.HourlyRate = in.HourlyRate
		if _, err := profiles.Save(ctx, profile); err != nil {
			return err
		}

		account.ProfileCompleted = true
		_, err = accounts.Save(ctx, account)
		return err
	})
	if err != nil {
		return nil, s.mapSaveError(account.ID, err)
	}

	s.audit.LogSuccess(ctx, pkglogger.EventProfileUpdated, account.ID, account.Email)

	return &StepResult{
		Message:  "Profile completed successfully",
		NextStep: models.NextStepDashboard,
		UserID:   account.ID,
	}, nil
}

// UpdateProfile applies a partial update. The profile counts as complete
// once first name, last name, bio and skills are all present.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, in ProfileUpdateInput) (*StepResult, error) {
	account, err := s.verifiedAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if in.Phone != nil {
		phone := NormalizePhone(*in.Phone)
		if err := s.ensurePhoneAvailable(ctx, account, phone); err != nil {
			return nil, err
		}
		account.Phone = phone
	}

	err = s.tx.WithinTransaction(ctx, func(accounts repositories.AccountStore, profiles repositories.ProfileStore) error {
		profile, err := profiles.EnsureExists(ctx, account.ID)
		if err != nil {
			return err
		}

		applyString(&account.FirstName, in.FirstName)
		applyString(&account.LastName, in.LastName)
		applyString(&profile.Bio, in.Bio)
		applyString(&profile.Address.Zip, in.Zip)
		applyString(&profile.Website, in.Website)
		applyString(&profile.LinkedIn, in.LinkedIn)
		applyString(&profile.GitHub, in.GitHub)
		applyString(&profile.Twitter, in.Twitter)
		applyString(&profile.ProfileImage, in.ProfileImage)
		if in.Skills != nil {
			profile.Skills = cleanSkills(in.Skills)
		}

		if _, err := profiles.Save(ctx, profile); err != nil {
			return err
		}

		if account.FirstName != "" && account.LastName != "" && profile.Bio != "" && len(profile.Skills) > 0 {
			account.ProfileCompleted = true
		}
		_, err = accounts.Save(ctx, account)
		return err
	})
	if err != nil {
		return nil, s.mapSaveError(account.ID, err)
	}

	s.audit.LogSuccess(ctx, pkglogger.EventProfileUpdated, account.ID, account.Email)

	next := models.NextStepCompleteProfile
	if account.ProfileCompleted {
		next = models.NextStepDashboard
	}

	return &StepResult{
		Message:  "Profile updated successfully",
		NextStep: next,
		UserID:   account.ID,
	}, nil
}

// GetCurrentAccount loads an account and its profile
func (s *AccountService) GetCurrentAccount(ctx context.Context, accountID string) (*AccountView, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByAccountID(ctx, account.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to load profile",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AccountView{Account: account, Profile: profile}, nil
}

// ForgotPassword issues a reset token when the email is registered. The
// result is identical whether or not it is.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (*StepResult, error) {
	email = NormalizeEmail(email)
	generic := &StepResult{
		Message:  "If an account exists for this email, a password reset link has been sent.",
		NextStep: models.NextStepCheckEmail,
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.LogFailure(ctx, pkglogger.EventPasswordResetRequest, "", email, "unknown_email")
			return generic, nil
		}
		s.logger.Error("failed to look up account for reset", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := pkgauth.GenerateToken(pkgauth.ResetTokenSize)
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	expiresAt := s.now().Add(s.config.ResetTokenTTL)
	account.ResetTokenHash = pkgauth.FingerprintToken(token)
	account.ResetTokenExpiresAt = &expiresAt

	if _, err := s.accounts.Save(ctx, account); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, s.resetLink(token), expiresAt); err != nil {
		s.logger.Error("failed to dispatch password reset",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
	}

	s.audit.LogSuccess(ctx, pkglogger.EventPasswordResetRequest, account.ID, account.Email)

	return generic, nil
}

func (s *AccountService) resetLink(token string) string {
	return s.config.ResetURLBase + "?token=" + url.QueryEscape(token)
}

// ResetPassword replaces the password of the account holding token. Unknown
// and expired tokens fail identically.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (*StepResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrInvalidOrExpiredResetToken
	}

	account, err := s.accounts.GetByResetTokenHash(ctx, pkgauth.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.LogFailure(ctx, pkglogger.EventPasswordReset, "", "", "invalid_token")
			return nil, models.ErrInvalidOrExpiredResetToken
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !account.HasValidResetToken(s.now()) {
		s.audit.LogFailure(ctx, pkglogger.EventPasswordReset, account.ID, account.Email, "expired_token")
		return nil, models.ErrInvalidOrExpiredResetToken
	}

	if newPassword != confirmPassword {
		return nil, models.ErrPasswordMismatch
	}
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidPassword, err)
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	account.PasswordHash = passwordHash
	account.PasswordChangedAt = &now
	account.ClearResetToken()

	if _, err := s.accounts.Save(ctx, account); err != nil {
		s.logger.Error("failed to store new password",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogSuccess(ctx, pkglogger.EventPasswordReset, account.ID, account.Email)

	return &StepResult{
		Message:  "Password has been reset successfully",
		NextStep: models.NextStepLogin,
		UserID:   account.ID,
	}, nil
}

// Login authenticates by handle, email or phone number. Unknown identifiers
// and wrong passwords both return ErrInvalidCredentials after the same
// amount of work.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	start := time.Now()
	identifier = strings.TrimSpace(identifier)

	account, err := s.findByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up account for login", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash := comparisonHash()
	if account != nil {
		hash = account.PasswordHash
	}
	passwordErr := pkgauth.ComparePassword(hash, password)

	if account == nil || passwordErr != nil {
		s.timing.WaitFrom(ctx, start, false)
		s.audit.LogFailure(ctx, pkglogger.EventLogin, "", "", "invalid_credentials")
		return nil, models.ErrInvalidCredentials
	}

	now := s.now()
	account.LastLoginAt = &now
	saved, err := s.accounts.Save(ctx, account)
	if err != nil {
		s.logger.Error("failed to record login",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tokens.IssueToken(saved)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("account_id", saved.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogSuccess(ctx, pkglogger.EventLogin, saved.ID, saved.Email)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokens.AccessTokenExpiry(),
		Account:     saved,
	}, nil
}

// findByIdentifier resolves a login identifier: email, then handle, then
// phone when the identifier is all digits after an optional leading +
func (s *AccountService) findByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	if identifier == "" {
		return nil, models.ErrNotFound
	}

	if strings.Contains(identifier, "@") {
		account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(identifier))
		if err == nil || !errors.Is(err, models.ErrNotFound) {
			return account, err
		}
	}

	account, err := s.accounts.GetByHandle(ctx, NormalizeHandle(identifier))
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return account, err
	}

	if isPhoneIdentifier(identifier) {
		return s.accounts.GetByPhone(ctx, NormalizePhone(identifier))
	}

	return nil, models.ErrNotFound
}

func (s *AccountService) getAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load account",
			slog.String("account_id", accountID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return account, nil
}

// verifiedAccount loads an account and requires its email to be verified
func (s *AccountService) verifiedAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, models.ErrEmailNotVerified
	}
	return account, nil
}

func (s *AccountService) ensurePhoneAvailable(ctx context.Context, account *models.Account, phone string) error {
	if phone == "" || phone == account.Phone {
		return nil
	}

	other, err := s.accounts.GetByPhone(ctx, phone)
	switch {
	case err == nil && other.ID != account.ID:
		return models.ErrDuplicatePhone
	case err != nil && !errors.Is(err, models.ErrNotFound):
		s.logger.Error("failed to check phone", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// mapSaveError passes uniqueness conflicts through and hides everything else
func (s *AccountService) mapSaveError(accountID string, err error) error {
	switch {
	case errors.Is(err, models.ErrDuplicateHandle),
		errors.Is(err, models.ErrDuplicatePhone),
		errors.Is(err, models.ErrDuplicateEmail):
		return err
	}
	s.logger.Error("failed to save account changes",
		slog.String("account_id", accountID),
		slog.Any("error", err))
	return models.ErrInternalServer
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}
