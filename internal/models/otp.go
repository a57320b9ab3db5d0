package models

import "time"

// PasswordOTP is a pending password-reset code, one per identifier
type PasswordOTP struct {
	UserInput string    `db:"user_input"`
	OTP       string    `db:"otp"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// SendOTPRequest asks for a reset code for a username or email
type SendOTPRequest struct {
	UserInput string `json:"userInput" binding:"required"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	UserInput   string `json:"userInput" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
