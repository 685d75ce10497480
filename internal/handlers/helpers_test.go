package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/internal/services"
	pkghttp "github.com/lanceraa/api/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds token claims to the request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, accountID, handle string) *http.Request {
	claims := &models.TokenClaims{UserID: accountID}
	claims.Subject = handle
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAccountService implements AccountServiceInterface for testing. Unset
// funcs return ErrInternalServer.
type MockAccountService struct {
	InitialSignupFunc        func(ctx context.Context, in services.SignupInput) (*services.StepResult, error)
	VerifyEmailFunc          func(ctx context.Context, accountID, code string) (*services.StepResult, error)
	ResendVerificationFunc   func(ctx context.Context, accountID string) (*services.StepResult, error)
	CheckEmailFunc           func(ctx context.Context, email string) (bool, error)
	CompleteBasicProfileFunc func(ctx context.Context, accountID string, in services.BasicProfileInput) (*services.StepResult, error)
	CompleteContactInfoFunc  func(ctx context.Context, accountID string, in services.ContactInfoInput) (*services.StepResult, error)
	CompleteProfileFunc      func(ctx context.Context, accountID string, in services.ProfessionalInfoInput) (*services.StepResult, error)
	UpdateProfileFunc        func(ctx context.Context, accountID string, in services.ProfileUpdateInput) (*services.StepResult, error)
	GetCurrentAccountFunc    func(ctx context.Context, accountID string) (*services.AccountView, error)
	ForgotPasswordFunc       func(ctx context.Context, email string) (*services.StepResult, error)
	ResetPasswordFunc        func(ctx context.Context, token, newPassword, confirmPassword string) (*services.StepResult, error)
	LoginFunc                func(ctx context.Context, identifier, password string) (*services.LoginResult, error)
}

func (m *MockAccountService) InitialSignup(ctx context.Context, in services.SignupInput) (*services.StepResult, error) {
	if m.InitialSignupFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.InitialSignupFunc(ctx, in)
}

func (m *MockAccountService) VerifyEmail(ctx context.Context, accountID, code string) (*services.StepResult, error) {
	if m.VerifyEmailFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.VerifyEmailFunc(ctx, accountID, code)
}

func (m *MockAccountService) ResendVerification(ctx context.Context, accountID string) (*services.StepResult, error) {
	if m.ResendVerificationFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ResendVerificationFunc(ctx, accountID)
}

func (m *MockAccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	if m.CheckEmailFunc == nil {
		return false, models.ErrInternalServer
	}
	return m.CheckEmailFunc(ctx, email)
}

func (m *MockAccountService) CompleteBasicProfile(ctx context.Context, accountID string, in services.BasicProfileInput) (*services.StepResult, error) {
	if m.CompleteBasicProfileFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CompleteBasicProfileFunc(ctx, accountID, in)
}

func (m *MockAccountService) CompleteContactInfo(ctx context.Context, accountID string, in services.ContactInfoInput) (*services.StepResult, error) {
	if m.CompleteContactInfoFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CompleteContactInfoFunc(ctx, accountID, in)
}

func (m *MockAccountService) CompleteProfile(ctx context.Context, accountID string, in services.ProfessionalInfoInput) (*services.StepResult, error) {
	if m.CompleteProfileFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CompleteProfileFunc(ctx, accountID, in)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, accountID string, in services.ProfileUpdateInput) (*services.StepResult, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UpdateProfileFunc(ctx, accountID, in)
}

func (m *MockAccountService) GetCurrentAccount(ctx context.Context, accountID string) (*services.AccountView, error) {
	if m.GetCurrentAccountFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.GetCurrentAccountFunc(ctx, accountID)
}

func (m *MockAccountService) ForgotPassword(ctx context.Context, email string) (*services.StepResult, error) {
	if m.ForgotPasswordFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ForgotPasswordFunc(ctx, email)
}

func (m *MockAccountService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (*services.StepResult, error) {
	if m.ResetPasswordFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ResetPasswordFunc(ctx, token, newPassword, confirmPassword)
}

func (m *MockAccountService) Login(ctx context.Context, identifier, password string) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, identifier, password)
}

// MockChatResponder implements ChatResponder for testing
type MockChatResponder struct {
	GetResponseFunc func(ctx context.Context, message string) (string, error)
}

func (m *MockChatResponder) GetResponse(ctx context.Context, message string) (string, error) {
	if m.GetResponseFunc == nil {
		return "", models.ErrInternalServer
	}
	return m.GetResponseFunc(ctx, message)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	return m.Err
}
