package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds the credentials forwarded to the backend.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResponse is the backend answer to a successful login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  *Account `json:"user"`
}

// RegisterRequest creates a new account through the public registration form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// VerifyAccountRequest confirms an account from the emailed link.
type VerifyAccountRequest struct {
	UID  string `form:"uid" json:"uid" validate:"required"`
	Code string `form:"code" json:"code" validate:"required"`
}

// ForgotPasswordRequest asks the backend to email a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetLinkRequest checks a password reset link before showing the form.
type ResetLinkRequest struct {
	UID   string `form:"uid" json:"uid" validate:"required"`
	Token string `form:"token" json:"token" validate:"required"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// BackendMessage is the status/message body the backend returns for simple actions.
type BackendMessage struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ImageUploadResult is returned after a profile image upload.
type ImageUploadResult struct {
	Success   bool   `json:"success"`
	ImageName string `json:"imageName,omitempty"`
	Message   string `json:"message,omitempty"`
}

// TokenClaims is the subset of the backend access token the console inspects.
type TokenClaims struct {
	jwt.RegisteredClaims
}
