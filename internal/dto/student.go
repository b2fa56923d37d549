package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type StudentDTO struct {
	ID          uuid.UUID            `json:"id"`
	FirstName   string               `json:"firstName"`
	LastName    string               `json:"lastName"`
	StudentID   string               `json:"studentID"`
	Gender      string               `json:"gender"`
	DateOfBirth string               `json:"dateOfBirth"`
	ClassID     *uuid.UUID           `json:"classId,omitempty"`
	ParentName  string               `json:"parentName"`
	ParentPhone string               `json:"parentPhone"`
	Address     string               `json:"address"`
	Documents   []StudentDocumentDTO `json:"documents,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type StudentRequest struct {
	FirstName   string     `json:"firstName" validate:"required"`
	LastName    string     `json:"lastName" validate:"required"`
	StudentID   string     `json:"studentID" validate:"required"`
	Gender      string     `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth string     `json:"dateOfBirth" validate:"omitempty,ddmmyyyy"`
	ClassID     *uuid.UUID `json:"classId,omitempty"`
	ParentName  string     `json:"parentName"`
	ParentPhone string     `json:"parentPhone" validate:"omitempty,max=30"`
	Address     string     `json:"address"`
}

type StudentDocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"studentId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CheckIDResponse struct {
	Exists bool `json:"exists"`
}

func MapStudent(s *domain.Student) StudentDTO {
	out := StudentDTO{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		StudentID:   s.StudentID,
		Gender:      string(s.Gender),
		DateOfBirth: s.DateOfBirth,
		ClassID:     s.ClassID,
		ParentName:  s.ParentName,
		ParentPhone: s.ParentPhone,
		Address:     s.Address,
		CreatedAt:   s.CreatedAt,
	}
	for i := range s.Documents {
		out.Documents = append(out.Documents, MapStudentDocument(&s.Documents[i], ""))
	}
	return out
}

func MapStudentDocument(d *domain.StudentDocument, url string) StudentDocumentDTO {
	return StudentDocumentDTO{
		ID:          d.ID,
		StudentID:   d.StudentID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         url,
		CreatedAt:   d.CreatedAt,
	}
}
