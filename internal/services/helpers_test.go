package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/internal/repositories"
	pkgauth "github.com/lanceraa/api/pkg/auth"
	pkglogger "github.com/lanceraa/api/pkg/logger"
)

// memAccountStore is an in-memory AccountStore enforcing the same unique
// keys as the accounts table. The *Func hooks, when set, run before the
// in-memory behaviour and can inject failures.
type memAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	nextID   int

	CreateFunc func(ctx context.Context, account *models.Account) (*models.Account, error)
	SaveFunc   func(ctx context.Context, account *models.Account) (*models.Account, error)
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]*models.Account)}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func (m *memAccountStore) conflict(a *models.Account) error {
	for id, other := range m.accounts {
		if id == a.ID {
			continue
		}
		switch {
		case other.Email == a.Email:
			return models.ErrDuplicateEmail
		case other.Handle == a.Handle:
			return models.ErrDuplicateHandle
		case a.Phone != "" && other.Phone == a.Phone:
			return models.ErrDuplicatePhone
		}
	}
	return nil
}

func (m *memAccountStore) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		if created, err := m.CreateFunc(ctx, account); created != nil || err != nil {
			return created, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conflict(account); err != nil {
		return nil, err
	}

	m.nextID++
	stored := copyAccount(account)
	stored.ID = "acct-" + strconv.Itoa(m.nextID)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.accounts[stored.ID] = stored
	return copyAccount(stored), nil
}

func (m *memAccountStore) find(match func(*models.Account) bool) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if match(a) {
			return copyAccount(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return a.ID == id })
}

func (m *memAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return a.Email == email })
}

func (m *memAccountStore) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return a.Handle == handle })
}

func (m *memAccountStore) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return phone != "" && a.Phone == phone })
}

func (m *memAccountStore) GetByResetTokenHash(ctx context.Context, hash string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return hash != "" && a.ResetTokenHash == hash })
}

func (m *memAccountStore) HandleExists(ctx context.Context, handle string) (bool, error) {
	_, err := m.GetByHandle(ctx, handle)
	return err == nil, nil
}

func (m *memAccountStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memAccountStore) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.SaveFunc != nil {
		if saved, err := m.SaveFunc(ctx, account); saved != nil || err != nil {
			return saved, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return nil, models.ErrNotFound
	}
	if err := m.conflict(account); err != nil {
		return nil, err
	}

	stored := copyAccount(account)
	stored.UpdatedAt = time.Now().UTC()
	m.accounts[stored.ID] = stored
	return copyAccount(stored), nil
}

func (m *memAccountStore) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cleared int64
	for _, a := range m.accounts {
		if a.ResetTokenExpiresAt != nil && !now.Before(*a.ResetTokenExpiresAt) {
			a.ClearResetToken()
			cleared++
		}
	}
	return cleared, nil
}

// put stores an account directly, bypassing uniqueness checks
func (m *memAccountStore) put(a *models.Account) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		m.nextID++
		a.ID = "acct-" + strconv.Itoa(m.nextID)
	}
	m.accounts[a.ID] = copyAccount(a)
	return a
}

// get returns the stored account, or nil
func (m *memAccountStore) get(id string) *models.Account {
	a, err := m.GetByID(context.Background(), id)
	if err != nil {
		return nil
	}
	return a
}

type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]*models.Profile)}
}

func copyProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	return &c
}

func (m *memProfileStore) GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[accountID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyProfile(p), nil
}

func (m *memProfileStore) EnsureExists(ctx context.Context, accountID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[accountID]
	if !ok {
		p = &models.Profile{
			ID:        "prof-" + accountID,
			AccountID: accountID,
			Skills:    []string{},
			CreatedAt: time.Now().UTC(),
		}
		m.profiles[accountID] = p
	}
	return copyProfile(p), nil
}

func (m *memProfileStore) Save(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[profile.AccountID]; !ok {
		return nil, models.ErrNotFound
	}
	m.profiles[profile.AccountID] = copyProfile(profile)
	return copyProfile(profile), nil
}

// fakeTransactor runs the unit of work directly against the in-memory
// stores. It does not roll back.
type fakeTransactor struct {
	accounts *memAccountStore
	profiles *memProfileStore
	Err      error
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn repositories.TxFunc) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(f.accounts, f.profiles)
}

type sentCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

type sentReset struct {
	Email     string
	Link      string
	ExpiresAt time.Time
}

// recordingNotifier captures every dispatched message
type recordingNotifier struct {
	mu     sync.Mutex
	codes  []sentCode
	resets []sentReset
	Err    error
}

func (n *recordingNotifier) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Err != nil {
		return n.Err
	}
	n.codes = append(n.codes, sentCode{Email: email, Code: code, ExpiresAt: expiresAt})
	return nil
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, email, resetLink string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Err != nil {
		return n.Err
	}
	n.resets = append(n.resets, sentReset{Email: email, Link: resetLink, ExpiresAt: expiresAt})
	return nil
}

func (n *recordingNotifier) lastCode() sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.codes) == 0 {
		return sentCode{}
	}
	return n.codes[len(n.codes)-1]
}

func (n *recordingNotifier) lastReset() sentReset {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.resets) == 0 {
		return sentReset{}
	}
	return n.resets[len(n.resets)-1]
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	IssueTokenFunc func(account *models.Account) (string, error)
}

func (m *MockTokenIssuer) IssueToken(account *models.Account) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(account)
	}
	return "token-for-" + account.Handle, nil
}

func (m *MockTokenIssuer) AccessTokenExpiry() time.Duration {
	return 30 * time.Minute
}

// testAccountService bundles an AccountService with its fakes
type testAccountService struct {
	svc      *AccountService
	accounts *memAccountStore
	profiles *memProfileStore
	tx       *fakeTransactor
	notifier *recordingNotifier
	tokens   *MockTokenIssuer
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestAccountService() *testAccountService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := newMemAccountStore()
	profiles := newMemProfileStore()
	tx := &fakeTransactor{accounts: accounts, profiles: profiles}
	notifier := &recordingNotifier{}
	tokens := &MockTokenIssuer{}
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	codes := NewCodeIssuer("Lanceraa", 30*time.Minute)
	codes.now = clock.Now

	svc := NewAccountService(
		accounts,
		profiles,
		tx,
		codes,
		notifier,
		tokens,
		nil, // no login padding in tests
		pkglogger.NewAuditLogger(logger),
		logger,
		AccountServiceConfig{
			ResetTokenTTL: 24 * time.Hour,
			ResetURLBase:  "http://localhost:3000/reset-password",
		},
	)
	svc.now = clock.Now

	return &testAccountService{
		svc:      svc,
		accounts: accounts,
		profiles: profiles,
		tx:       tx,
		notifier: notifier,
		tokens:   tokens,
		clock:    clock,
	}
}

// NewTestAccount creates an active account with the given password hashed
// at the minimum bcrypt cost
func NewTestAccount(handle, email, password string) *models.Account {
	hash, err := pkgauth.HashPasswordWithCost(password, 4)
	if err != nil {
		panic(fmt.Sprintf("hash test password: %v", err))
	}
	return &models.Account{
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Active:       true,
		Verified:     true,
	}
}
