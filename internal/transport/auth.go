package transport

import "time"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

type PasswordConfirmRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

type AdminCreateUserRequest struct {
	Name     string `json:"name"     validate:"max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
