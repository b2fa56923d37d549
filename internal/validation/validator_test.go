package validation

import (
	"testing"

	"github.com/kinderhub/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"startDate":  "Start date",
		"teacherID":  "Teacher ID",
		"semesterID": "Semester ID",
		"name":       "Name",
		"":           "Value",
	}
	for in, want := range cases {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestDetails_UsesJSONNamesAndMessages(t *testing.T) {
	v := New()

	err := v.Struct(&dto.SemesterRequest{Name: "", StartDate: "31-02-2024", EndDate: "01-01-2025"})
	require.Error(t, err)

	details := Details(err)
	require.Len(t, details, 2)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "Name is required", details[0].Message)
	assert.Equal(t, "startDate", details[1].Field)
	assert.Equal(t, "Invalid date format", details[1].Message)
	assert.Equal(t, "Name is required", FirstReason(err))
}

func TestNew_AcceptsCanonicalDates(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(&dto.SemesterRequest{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"}))
}

func TestDetails_OneOf(t *testing.T) {
	v := New()
	err := v.Struct(&dto.TeacherRequest{FirstName: "Ann", LastName: "Lee", TeacherID: "T-1", Gender: "x"})
	require.Error(t, err)
	assert.Equal(t, "Gender must be one of: male, female", FirstReason(err))
}

func TestTrimStrings(t *testing.T) {
	req := dto.TeacherRequest{FirstName: "  Ann ", LastName: "Lee\t", TeacherID: " T-1"}
	TrimStrings(&req)
	assert.Equal(t, "Ann", req.FirstName)
	assert.Equal(t, "Lee", req.LastName)
	assert.Equal(t, "T-1", req.TeacherID)

	// non-pointers are ignored
	TrimStrings(req)
}

func TestTrimStrings_KeepsPasswords(t *testing.T) {
	req := dto.LoginRequest{Email: " a@b.test ", Password: " secret "}
	TrimStrings(&req)
	assert.Equal(t, "a@b.test", req.Email)
	assert.Equal(t, " secret ", req.Password)
}
