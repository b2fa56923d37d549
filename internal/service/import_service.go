package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/validation"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// rejection is a per-record failure whose text is shown to the user as is.
type rejection string

func (r rejection) Error() string { return string(r) }

// ImportService upserts posted batches record by record. A failing record
// never stops the rest of the batch.
type ImportService struct {
	semesterRepo *repository.SemesterRepository
	teacherRepo  *repository.TeacherRepository
	classRepo    *repository.ClassRepository
	validate     *validator.Validate
}

func NewImportService(semesterRepo *repository.SemesterRepository, teacherRepo *repository.TeacherRepository, classRepo *repository.ClassRepository) *ImportService {
	return &ImportService{
		semesterRepo: semesterRepo,
		teacherRepo:  teacherRepo,
		classRepo:    classRepo,
		validate:     validation.New(),
	}
}

func (s *ImportService) ImportSemesters(records []dto.SemesterRequest) dto.ImportResult {
	return importEach(records, func(req *dto.SemesterRequest) error {
		validation.TrimStrings(req)
		if err := s.check(req); err != nil {
			return err
		}
		if !domain.DateOrdered(req.StartDate, req.EndDate) {
			return rejection("Start date must be before end date")
		}
		return s.semesterRepo.Upsert(&domain.Semester{
			Name:      req.Name,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
	})
}

func (s *ImportService) ImportTeachers(records []dto.TeacherRequest) dto.ImportResult {
	return importEach(records, func(req *dto.TeacherRequest) error {
		validation.TrimStrings(req)
		req.Gender = strings.ToLower(req.Gender)
		if err := s.check(req); err != nil {
			return err
		}
		return s.teacherRepo.Upsert(&domain.Teacher{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			TeacherID:   req.TeacherID,
			Gender:      domain.Gender(req.Gender),
			Phone:       req.Phone,
			DateOfBirth: req.DateOfBirth,
			Email:       req.Email,
		})
	})
}

func (s *ImportService) ImportClasses(records []dto.ClassRequest) dto.ImportResult {
	return importEach(records, func(req *dto.ClassRequest) error {
		validation.TrimStrings(req)
		if err := s.check(req); err != nil {
			return err
		}
		if _, err := s.semesterRepo.FindByID(req.SemesterID); err != nil {
			return notFoundAs(err, "Unknown semester")
		}
		if req.AssignedTeacherID != nil {
			if _, err := s.teacherRepo.FindByID(*req.AssignedTeacherID); err != nil {
				return notFoundAs(err, "Unknown teacher")
			}
		}
		return s.classRepo.Upsert(&domain.Class{
			ClassName:         req.ClassName,
			SemesterID:        req.SemesterID,
			AssignedTeacherID: req.AssignedTeacherID,
			Capacity:          req.Capacity,
			Description:       req.Description,
		})
	})
}

func (s *ImportService) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return rejection(validation.FirstReason(err))
	}
	return nil
}

func notFoundAs(err error, reason string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rejection(reason)
	}
	return err
}

// importEach runs persist for every record and folds the outcomes into one
// result. Rows are 1-based positions in the posted array.
func importEach[T any](records []T, persist func(*T) error) dto.ImportResult {
	result := dto.ImportResult{Details: dto.ImportDetails{Errors: []dto.ImportRowError{}}}
	for i := range records {
		err := persist(&records[i])
		if err == nil {
			result.Imported++
			continue
		}
		result.Failed++

		var r rejection
		reason := "Failed to save record"
		if errors.As(err, &r) {
			reason = string(r)
		} else {
			log.Error().Err(err).Int("row", i+1).Msg("import record failed")
		}
		result.Details.Errors = append(result.Details.Errors, dto.ImportRowError{Row: i + 1, Reason: reason})
	}
	return result
}
