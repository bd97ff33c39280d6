package dto

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// AdminSignupRequest payload for new admins.
type AdminSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest payload for login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse is the public view of an admin.
type AdminResponse struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Domain domain.Domain `json:"domain"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

// NewAuthResponse renders an admin with a freshly issued token.
func NewAuthResponse(admin *domain.Admin, token domain.IssuedToken) AuthResponse {
	return AuthResponse{
		Token:     token.Value,
		TokenType: "bearer",
		ExpiresAt: token.ExpiresAt,
		Admin: AdminResponse{
			ID:     admin.ID,
			Name:   admin.Name,
			Email:  admin.Email,
			Domain: admin.Domain,
		},
	}
}
