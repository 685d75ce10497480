package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/services"
	pkghttp "github.com/lanceraa/api/pkg/http"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// AccountServiceInterface defines the account lifecycle operations used by the handlers
type AccountServiceInterface interface {
	InitialSignup(ctx context.Context, in services.SignupInput) (*services.StepResult, error)
	VerifyEmail(ctx context.Context, accountID, code string) (*services.StepResult, error)
	ResendVerification(ctx context.Context, accountID string) (*services.StepResult, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	CompleteBasicProfile(ctx context.Context, accountID string, in services.BasicProfileInput) (*services.StepResult, error)
	CompleteContactInfo(ctx context.Context, accountID string, in services.ContactInfoInput) (*services.StepResult, error)
	CompleteProfile(ctx context.Context, accountID string, in services.ProfessionalInfoInput) (*services.StepResult, error)
	UpdateProfile(ctx context.Context, accountID string, in services.ProfileUpdateInput) (*services.StepResult, error)
	GetCurrentAccount(ctx context.Context, accountID string) (*services.AccountView, error)
	ForgotPassword(ctx context.Context, email string) (*services.StepResult, error)
	ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (*services.StepResult, error)
	Login(ctx context.Context, identifier, password string) (*services.LoginResult, error)
}

// AuthHandler handles signup, verification, login and password recovery
type AuthHandler struct {
	service AccountServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AccountServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates it. It
// writes the 400 response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// accountIDFromRequest returns the authenticated account id, writing a 401
// when the request carries no claims
func accountIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.UserID == "" {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return "", false
	}
	return claims.UserID, true
}

// Signup handles the first signup step
// @Router /auth/signup/initial [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.InitialSignup(r.Context(), services.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, stepResponse(res))
}

// VerifyEmail consumes an emailed verification code
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.VerifyEmail(r.Context(), req.UserID, req.VerificationCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// ResendVerification issues a fresh verification code
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.ResendVerification(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// CheckEmail reports whether an email address is registered
// @Router /auth/check-email [post]
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	exists, err := h.service.CheckEmail(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := EmailExistsResponse{Exists: false, Message: "Email is available for registration."}
	if exists {
		resp = EmailExistsResponse{Exists: true, Message: "Email is already registered. Please login instead."}
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// BasicInfo sets username, names and role
// @Router /auth/signup/basic-info [post]
func (h *AuthHandler) BasicInfo(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromRequest(w, r)
	if !ok {
		return
	}

	var req BasicInfoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.CompleteBasicProfile(r.Context(), accountID, services.BasicProfileInput{
		Handle:    req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// ContactInfo stores phone number and address
// @Router /auth/signup/contact-info [post]
func (h *AuthHandler) ContactInfo(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromRequest(w, r)
	if !ok {
		return
	}

	var req ContactInfoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.ContactInfoInput{Phone: req.Phone}
	if req.Address != nil {
		in.Address.Street = strings.TrimSpace(req.Address.Street)
		in.Address.City = strings.TrimSpace(req.Address.City)
		in.Address.State = strings.TrimSpace(req.Address.State)
		in.Address.Country = strings.TrimSpace(req.Address.Country)
		in.Address.Zip = strings.TrimSpace(req.Address.Zip)
	}

	res, err := h.service.CompleteContactInfo(r.Context(), accountID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// ProfessionalInfo completes the profile
// @Router /auth/signup/professional-info [post]
func (h *AuthHandler) ProfessionalInfo(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromRequest(w, r)
	if !ok {
		return
	}

	var req ProfessionalInfoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.CompleteProfile(r.Context(), accountID, services.ProfessionalInfoInput{
		Skills:          req.Skills,
		Bio:             req.Bio,
		YearsExperience: req.YearsExperience,
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// UpdateProfile applies a partial profile update
// @Router /profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromRequest(w, r)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.UpdateProfile(r.Context(), accountID, services.ProfileUpdateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Bio:          req.Bio,
		Skills:       req.Skills,
		Zip:          req.Zip,
		Website:      req.Website,
		LinkedIn:     req.LinkedIn,
		GitHub:       req.GitHub,
		Twitter:      req.Twitter,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// loginCredentials reads username and password from a form post or a JSON body
func loginCredentials(w http.ResponseWriter, r *http.Request) (LoginRequest, bool) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid form body")
			return req, false
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		if err := ValidateRequest(req); err != nil {
			pkghttp.WriteBadRequest(w, err.Error())
			return req, false
		}
		return req, true
	default:
		return req, decodeJSON(w, r, &req)
	}
}

// Login authenticates by username, email or phone number
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := loginCredentials(w, r)
	if !ok {
		return
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token: TokenResponse{
			AccessToken: res.AccessToken,
			TokenType:   res.TokenType,
			ExpiresIn:   int(res.ExpiresIn.Seconds()),
			Username:    res.Account.Handle,
		},
		User: accountToResponse(res.Account, nil),
	})
}

// Logout acknowledges a logout. Tokens are stateless and expire on their own.
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}

// Me returns the authenticated account and its profile
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetCurrentAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MeResponse{User: accountToResponse(view.Account, view.Profile)})
}

// ForgotPassword requests a password reset link. The response does not
// reveal whether the email is registered.
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}

// ResetPassword sets a new password using a reset token
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stepResponse(res))
}
