package models

import (
	"strings"
	"time"
)

// User represents a registered customer
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"fullname" db:"fullname"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	ProfilePic *string   `json:"profile_pic,omitempty" db:"profile_pic"`
	Password   string    `json:"-" db:"password"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the admin listing row
type UserSummary struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	FullName string `json:"fullname" db:"fullname"`
	Email    string `json:"email" db:"email"`
}

// Account is the authenticated principal, either a customer or an admin
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SignupRequest represents the request to register a user
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile edit
type UpdateProfileRequest struct {
	Username   string  `json:"username" binding:"required"`
	FullName   string  `json:"fullName"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	ProfilePic *string `json:"profilePic"`
}

// AdminUpdateUserRequest is the admin edit form
type AdminUpdateUserRequest struct {
	FullName string `json:"FULLNAME" binding:"required"`
	Email    string `json:"EMAIL" binding:"required"`
}

func toUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LoginResponse is returned by login and token refresh
type LoginResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken,omitempty"`
	ExpiresIn    int64   `json:"expiresIn"`
	User         Account `json:"user"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// VerifyPasswordRequest checks a user's current password
type VerifyPasswordRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdatePasswordRequest replaces a user's password
type UpdatePasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
