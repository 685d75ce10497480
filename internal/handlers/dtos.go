package handlers

import (
	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/internal/services"
)

// Request DTOs

// SignupRequest represents the request body for the first signup step
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" validate:"omitempty,max=50"`
	LastName        string `json:"last_name" validate:"omitempty,max=50"`
}

type VerifyEmailRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required,len=6,numeric"`
}

type ResendVerificationRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type BasicInfoRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20,handle"`
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Role      string `json:"role" validate:"required,oneof=freelancer client"`
}

type AddressRequest struct {
	Street  string `json:"street" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,max=20"`
}

type ContactInfoRequest struct {
	Phone   string          `json:"phone" validate:"required,phone"`
	Address *AddressRequest `json:"address" validate:"omitempty"`
}

type ProfessionalInfoRequest struct {
	Skills          []string `json:"skills" validate:"max=50,dive,max=50"`
	Bio             string   `json:"bio" validate:"max=500"`
	YearsExperience *int     `json:"years_experience" validate:"omitempty,gte=0,lte=80"`
	HourlyRate      *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
}

// ProfileUpdateRequest is a partial update; absent fields are left unchanged
type ProfileUpdateRequest struct {
	FirstName    *string  `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName     *string  `json:"last_name" validate:"omitempty,min=2,max=50"`
	Phone        *string  `json:"phone" validate:"omitempty,phone"`
	Bio          *string  `json:"bio" validate:"omitempty,max=500"`
	Skills       []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
	Zip          *string  `json:"zip" validate:"omitempty,max=20"`
	Website      *string  `json:"website" validate:"omitempty,max=255,url"`
	LinkedIn     *string  `json:"linkedin" validate:"omitempty,max=255,url"`
	GitHub       *string  `json:"github" validate:"omitempty,max=255,url"`
	Twitter      *string  `json:"twitter" validate:"omitempty,max=100"`
	ProfileImage *string  `json:"profile_image" validate:"omitempty,max=255,url"`
}

// LoginRequest accepts a handle, email or phone number as username
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type ChatRequest struct {
	Role    string `json:"role" validate:"required,eq=user"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Response DTOs

// StepCompletionResponse reports a lifecycle step and what the client should do next
type StepCompletionResponse struct {
	Message  string `json:"message"`
	Success  bool   `json:"success"`
	NextStep string `json:"next_step"`
	UserID   string `json:"user_id,omitempty"`
}

type EmailExistsResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
}

type LoginResponse struct {
	Message string        `json:"message"`
	Token   TokenResponse `json:"token"`
	User    *UserResponse `json:"user"`
}

type AddressResponse struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Zip         string `json:"zip"`
	FullAddress string `json:"full_address"`
}

type SocialResponse struct {
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

type ProfileResponse struct {
	Bio             string           `json:"bio"`
	Skills          []string         `json:"skills"`
	YearsExperience *int             `json:"years_experience"`
	HourlyRate      *float64         `json:"hourly_rate"`
	Address         *AddressResponse `json:"address"`
	Social          SocialResponse   `json:"social"`
	ProfileImage    string           `json:"profile_image,omitempty"`
}

type UserResponse struct {
	ID               string           `json:"id"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	FullName         string           `json:"full_name"`
	Role             string           `json:"role"`
	Phone            string           `json:"phone,omitempty"`
	IsActive         bool             `json:"is_active"`
	IsVerified       bool             `json:"is_verified"`
	ProfileCompleted bool             `json:"profile_completed"`
	Profile          *ProfileResponse `json:"profile,omitempty"`
}

type MeResponse struct {
	User *UserResponse `json:"user"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	AppName  string `json:"app_name"`
	Database string `json:"database"`
}

func stepResponse(res *services.StepResult) StepCompletionResponse {
	return StepCompletionResponse{
		Message:  res.Message,
		Success:  true,
		NextStep: res.NextStep,
		UserID:   res.UserID,
	}
}

func accountToResponse(account *models.Account, profile *models.Profile) *UserResponse {
	resp := &UserResponse{
		ID:               account.ID,
		Username:         account.Handle,
		Email:            account.Email,
		FirstName:        account.FirstName,
		LastName:         account.LastName,
		FullName:         account.FullName(),
		Role:             account.Role,
		Phone:            account.Phone,
		IsActive:         account.Active,
		IsVerified:       account.Verified,
		ProfileCompleted: account.ProfileCompleted,
	}
	if profile != nil {
		resp.Profile = profileToResponse(profile)
	}
	return resp
}

func profileToResponse(profile *models.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		Bio:             profile.Bio,
		Skills:          profile.Skills,
		YearsExperience: profile.YearsExperience,
		HourlyRate:      profile.HourlyRate,
		Social: SocialResponse{
			Website:  profile.Website,
			LinkedIn: profile.LinkedIn,
			GitHub:   profile.GitHub,
			Twitter:  profile.Twitter,
		},
		ProfileImage: profile.ProfileImage,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if profile.HasAddress() {
		a := profile.Address
		resp.Address = &AddressResponse{
			Street:      a.Street,
			City:        a.City,
			State:       a.State,
			Country:     a.Country,
			Zip:         a.Zip,
			FullAddress: a.FullAddress(),
		}
	}
	return resp
}
