package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type SemesterDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

type SemesterRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required,ddmmyyyy"`
	EndDate   string `json:"endDate" validate:"required,ddmmyyyy"`
}

func MapSemester(s *domain.Semester) SemesterDTO {
	return SemesterDTO{
		ID:        s.ID,
		Name:      s.Name,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		CreatedAt: s.CreatedAt,
	}
}
