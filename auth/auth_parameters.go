package auth

import "github.com/jrsteele09/go-storefront-client/credentials"

// Request payloads, field names matching the backend wire contract.

type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the forgot-password flow with the token the
// backend emailed to the user.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the backend envelope for login and refresh. Register uses
// the same envelope with only the user populated.
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
}

type AuthData struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         WireUser `json:"user"`
}

// WireUser is the principal as serialized by the backend.
type WireUser struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	RoleName    string `json:"roleName"`
}

func (u WireUser) toUser() credentials.User {
	return credentials.User{
		ID:       u.UserID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.RoleName,
	}
}
