package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type UserAccountDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Students  []string  `json:"students"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateUserAccountRequest struct {
	FullName string   `json:"fullName" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8" trim:"-"`
	Role     string   `json:"role" validate:"required,oneof=admin teacher parent"`
	Students []string `json:"students"`
}

// UpdateUserAccountRequest keeps the current password when Password is empty.
type UpdateUserAccountRequest struct {
	FullName string   `json:"fullName" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password,omitempty" validate:"omitempty,min=8" trim:"-"`
	Role     string   `json:"role" validate:"required,oneof=admin teacher parent"`
	Students []string `json:"students"`
}

func MapUserAccount(u *domain.UserAccount) UserAccountDTO {
	students := []string(u.Students)
	if students == nil {
		students = []string{}
	}
	return UserAccountDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		Students:  students,
		CreatedAt: u.CreatedAt,
	}
}
