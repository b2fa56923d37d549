package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type ClassDTO struct {
	ID                uuid.UUID  `json:"id"`
	ClassName         string     `json:"className"`
	SemesterID        uuid.UUID  `json:"semesterID"`
	AssignedTeacherID *uuid.UUID `json:"assignedTeacherId,omitempty"`
	Capacity          int        `json:"capacity"`
	Description       string     `json:"description"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type ClassRequest struct {
	ClassName         string     `json:"className" validate:"required"`
	SemesterID        uuid.UUID  `json:"semesterID" validate:"required"`
	AssignedTeacherID *uuid.UUID `json:"assignedTeacherId,omitempty"`
	Capacity          int        `json:"capacity" validate:"min=0"`
	Description       string     `json:"description"`
}

// AssignTeacherRequest sets the class teacher; a null teacherId clears it.
type AssignTeacherRequest struct {
	TeacherID *uuid.UUID `json:"teacherId"`
}

func MapClass(c *domain.Class) ClassDTO {
	return ClassDTO{
		ID:                c.ID,
		ClassName:         c.ClassName,
		SemesterID:        c.SemesterID,
		AssignedTeacherID: c.AssignedTeacherID,
		Capacity:          c.Capacity,
		Description:       c.Description,
		CreatedAt:         c.CreatedAt,
	}
}
