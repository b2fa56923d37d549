package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportService(t *testing.T) (*ImportService, *repository.SemesterRepository, *repository.TeacherRepository, *repository.ClassRepository) {
	db := testutil.NewTestDB(t)
	semesters := repository.NewSemesterRepository(db)
	teachers := repository.NewTeacherRepository(db)
	classes := repository.NewClassRepository(db)
	return NewImportService(semesters, teachers, classes), semesters, teachers, classes
}

func TestImportSemesters_ReportsRowsIndependently(t *testing.T) {
	svc, semesters, _, _ := newImportService(t)

	result := svc.ImportSemesters([]dto.SemesterRequest{
		{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"},
		{Name: "Term 2", StartDate: "01-09-2024", EndDate: "01-08-2024"},
		{Name: "  ", StartDate: "01-09-2024", EndDate: "01-10-2024"},
		{Name: "Term 3", StartDate: "2024-09-01", EndDate: "01-10-2024"},
	})

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, []dto.ImportRowError{
		{Row: 2, Reason: "Start date must be before end date"},
		{Row: 3, Reason: "Name is required"},
		{Row: 4, Reason: "Invalid date format"},
	}, result.Details.Errors)

	list, err := semesters.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Term 1", list[0].Name)
}

func TestImportSemesters_UpsertsByName(t *testing.T) {
	svc, semesters, _, _ := newImportService(t)

	svc.ImportSemesters([]dto.SemesterRequest{{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"}})
	result := svc.ImportSemesters([]dto.SemesterRequest{{Name: "Term 1", StartDate: "02-09-2024", EndDate: "28-02-2025"}})

	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Details.Errors)

	list, err := semesters.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "28-02-2025", list[0].EndDate)
}

func TestImportTeachers_NormalizesGender(t *testing.T) {
	svc, _, teachers, _ := newImportService(t)

	result := svc.ImportTeachers([]dto.TeacherRequest{
		{FirstName: " Ann ", LastName: "Lee", TeacherID: "T-1", Gender: "Female"},
		{FirstName: "Bob", LastName: "", TeacherID: "T-2"},
	})

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, []dto.ImportRowError{{Row: 2, Reason: "Last name is required"}}, result.Details.Errors)

	list, err := teachers.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].FirstName)
	assert.Equal(t, domain.GenderFemale, list[0].Gender)
}

func TestImportClasses_RejectsUnknownSemester(t *testing.T) {
	svc, semesters, _, classes := newImportService(t)

	term := &domain.Semester{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"}
	require.NoError(t, semesters.Create(term))
	ghost := uuid.New()

	result := svc.ImportClasses([]dto.ClassRequest{
		{ClassName: "Grade 1A", SemesterID: term.ID, Capacity: 20},
		{ClassName: "Grade 1B", SemesterID: uuid.New()},
		{ClassName: "Grade 1C", SemesterID: term.ID, AssignedTeacherID: &ghost},
	})

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "Unknown semester", result.Details.Errors[0].Reason)
	assert.Equal(t, "Unknown teacher", result.Details.Errors[1].Reason)

	list, err := classes.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Grade 1A", list[0].ClassName)
}
