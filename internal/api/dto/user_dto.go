package dto

import (
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

// CreateUserRequest payload for new users.
type CreateUserRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Application string `json:"application"`
	Active      *bool  `json:"active"`
	Verified    *bool  `json:"verified"`
}

// Input converts the request into the domain payload.
func (r CreateUserRequest) Input() domain.CreateUserInput {
	return domain.CreateUserInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Password:    r.Password,
		Application: domain.Application(r.Application),
		Active:      r.Active,
		Verified:    r.Verified,
	}
}

// UpdateUserRequest payload for partial profile updates. The password
// field exists only so the core can reject it explicitly.
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Application *string `json:"application"`
	Active      *bool   `json:"active"`
	Verified    *bool   `json:"verified"`
}

// Input converts the request into the domain payload.
func (r UpdateUserRequest) Input() domain.UpdateUserInput {
	in := domain.UpdateUserInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Active:    r.Active,
		Verified:  r.Verified,
	}
	if r.Application != nil {
		app := domain.Application(*r.Application)
		in.Application = &app
	}
	return in
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for the dedicated password path.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
