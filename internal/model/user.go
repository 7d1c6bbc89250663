package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// UserStatus marks whether a user may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        string     `json:"phone" db:"phone"`
	Address      string     `json:"address" db:"address"`
	Avatar       string     `json:"avatar" db:"avatar"`
	Status       UserStatus `json:"status" db:"status"`
	Role         Role       `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

const minPasswordLength = 6

func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if strings.TrimSpace(r.Name) == "" {
		return InvalidInput("name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return InvalidInput("a valid email is required")
	}
	if len(r.Password) < minPasswordLength {
		return InvalidInput("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.Password == "" {
		return InvalidInput("email and password are required")
	}
	return nil
}

// UpdateProfileRequest changes the caller's own profile fields.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Avatar  *string `json:"avatar"`
}

func (r *UpdateProfileRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Address != nil {
		u.Address = *r.Address
	}
	if r.Avatar != nil {
		u.Avatar = *r.Avatar
	}
}

// UpdatePasswordRequest rotates the caller's password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *UpdatePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return InvalidInput("currentPassword is required")
	}
	if len(r.NewPassword) < minPasswordLength {
		return InvalidInput("newPassword must be at least %d characters", minPasswordLength)
	}
	return nil
}

// Tokens carries the issued access token.
type Tokens struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   *User  `json:"user"`
	Tokens Tokens `json:"tokens"`
}
