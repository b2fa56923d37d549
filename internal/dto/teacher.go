package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type TeacherDTO struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	TeacherID   string    `json:"teacherID"`
	Gender      string    `json:"gender"`
	Phone       string    `json:"phone"`
	DateOfBirth string    `json:"dateOfBirth"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TeacherRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	TeacherID   string `json:"teacherID" validate:"required"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,ddmmyyyy"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func MapTeacher(t *domain.Teacher) TeacherDTO {
	return TeacherDTO{
		ID:          t.ID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		TeacherID:   t.TeacherID,
		Gender:      string(t.Gender),
		Phone:       t.Phone,
		DateOfBirth: t.DateOfBirth,
		Email:       t.Email,
		CreatedAt:   t.CreatedAt,
	}
}
