package dto

import "github.com/google/uuid"

// Login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required" trim:"-"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int64       `json:"expiresIn"`
	User        SessionUser `json:"user"`
}

// SessionUser is what a client keeps about the signed-in account.
type SessionUser struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Role     string    `json:"role"`
	Students []string  `json:"students"`
}
