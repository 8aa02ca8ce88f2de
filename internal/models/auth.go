package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest signs up a student or company account.
type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email,max=160"`
	Password string   `json:"password" validate:"required,password"`
	FullName string   `json:"full_name" validate:"required,max=120"`
	Role     UserRole `json:"role" validate:"required,oneof=STUDENT COMPANY"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
