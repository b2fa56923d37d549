package importer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func row(index int, values map[string]interface{}) ImportRow {
	return ImportRow{Index: index, Values: values}
}

func semesterRow(index int, name, start, end interface{}) ImportRow {
	return row(index, map[string]interface{}{"Name": name, "Start Date": start, "END_DATE": end})
}

func TestValidate_MissingColumnsFailsBatch(t *testing.T) {
	rows := []ImportRow{row(1, map[string]interface{}{"name": "Fall", "start-date": "01-09-2024"})}

	_, err := Validate(rows, SemesterSchema())
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"endDate"}, missing.Missing)
	assert.EqualError(t, err, "missing required columns: endDate")
}

func TestValidate_Semesters(t *testing.T) {
	rows := []ImportRow{
		semesterRow(1, " Fall 2024 ", "01-09-2024", "31-01-2025"),
		semesterRow(2, "Odd", "01-09-2024", "01-08-2024"),
		semesterRow(3, "", "not a date", "01-08-2024"),
		semesterRow(4, "Broken", "31-02-2024", "01-08-2024"),
		semesterRow(5, "Serial", float64(45536), float64(45688)),
		semesterRow(6, "Same day", "01-09-2024", "01-09-2024"),
		semesterRow(7, "No end", "01-09-2024", nil),
	}

	results, err := Validate(rows, SemesterSchema())
	require.NoError(t, err)
	require.Len(t, results, len(rows))

	assert.True(t, results[0].Accepted())
	assert.Equal(t, dto.SemesterRequest{Name: "Fall 2024", StartDate: "01-09-2024", EndDate: "31-01-2025"}, results[0].Record)

	assert.Equal(t, &RowValidationError{Row: 2, Reason: "Start date must be before end date"}, results[1].Rejection)
	// required wins over the bad date
	assert.Equal(t, "Name is required", results[2].Rejection.Reason)
	// a bad date wins over the ordering
	assert.Equal(t, "Invalid date format", results[3].Rejection.Reason)

	assert.True(t, results[4].Accepted())
	assert.Equal(t, "01-09-2024", results[4].Record.StartDate)
	assert.Equal(t, "31-01-2025", results[4].Record.EndDate)

	assert.True(t, results[5].Accepted())
	assert.Equal(t, "End date is required", results[6].Rejection.Reason)

	accepted, rejected := 0, 0
	for i, r := range results {
		assert.Equal(t, rows[i].Index, r.Row)
		if r.Accepted() {
			accepted++
		} else {
			rejected++
		}
	}
	assert.Equal(t, len(rows), accepted+rejected)
}

func TestValidate_Teachers(t *testing.T) {
	rows := []ImportRow{
		row(1, map[string]interface{}{"First Name": "Ann", "Last Name": "Lee", "Teacher ID": "T-1", "Gender": "Female", "Date of Birth": "1988-04-12"}),
		row(2, map[string]interface{}{"First Name": "Ben", "Last Name": "Stone", "Teacher ID": "T-2", "Gender": "robot", "Date of Birth": nil}),
		row(3, map[string]interface{}{"First Name": "Cy", "Last Name": "Fox", "Teacher ID": nil, "Gender": nil, "Date of Birth": nil}),
	}

	results, err := Validate(rows, TeacherSchema())
	require.NoError(t, err)

	require.True(t, results[0].Accepted())
	assert.Equal(t, "female", results[0].Record.Gender)
	assert.Equal(t, "12-04-1988", results[0].Record.DateOfBirth)
	assert.Equal(t, "Gender must be one of: male, female", results[1].Rejection.Reason)
	assert.Equal(t, "Teacher ID is required", results[2].Rejection.Reason)
}

func TestValidate_ClassesResolveReferences(t *testing.T) {
	fall := dto.SemesterDTO{ID: uuid.New(), Name: "Fall 2024"}
	ann := dto.TeacherDTO{ID: uuid.New(), TeacherID: "T-001"}
	schema := ClassSchema([]dto.SemesterDTO{fall}, []dto.TeacherDTO{ann})

	rows := []ImportRow{
		row(1, map[string]interface{}{"className": "Grade 1A", "semesterName": "fall 2024", "teacherID": "t-001", "capacity": "20"}),
		row(2, map[string]interface{}{"className": "Grade 1B", "semesterName": "Winter", "teacherID": nil, "capacity": nil}),
		row(3, map[string]interface{}{"className": "Grade 1C", "semesterName": "Fall 2024", "teacherID": "T-404", "capacity": nil}),
		row(4, map[string]interface{}{"className": "Grade 1D", "semesterName": "Fall 2024", "teacherID": nil, "capacity": "lots"}),
		row(5, map[string]interface{}{"className": "Grade 1E", "semesterName": "Fall 2024", "teacherID": nil, "capacity": nil}),
	}

	results, err := Validate(rows, schema)
	require.NoError(t, err)

	require.True(t, results[0].Accepted())
	assert.Equal(t, fall.ID, results[0].Record.SemesterID)
	require.NotNil(t, results[0].Record.AssignedTeacherID)
	assert.Equal(t, ann.ID, *results[0].Record.AssignedTeacherID)
	assert.Equal(t, 20, results[0].Record.Capacity)

	assert.Equal(t, "Unknown semester", results[1].Rejection.Reason)
	assert.Equal(t, "Unknown teacher", results[2].Rejection.Reason)
	assert.Equal(t, "Capacity must be a whole number", results[3].Rejection.Reason)

	require.True(t, results[4].Accepted())
	assert.Nil(t, results[4].Record.AssignedTeacherID)
}

func TestValidate_NoRows(t *testing.T) {
	results, err := Validate(nil, SemesterSchema())
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestValidate_SerialDatesFromFiles(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "startDate", "endDate"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Fall", 45536, 45688}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	inputs := map[string]io.Reader{
		"semesters.xlsx": xlsx,
		"semesters.csv":  strings.NewReader("name,startDate,endDate\nFall,45536,45688\n"),
	}
	for fileName, r := range inputs {
		t.Run(fileName, func(t *testing.T) {
			rows, err := Parse(r, fileName)
			require.NoError(t, err)
			all, err := rows.Collect()
			require.NoError(t, err)

			results, err := Validate(all, SemesterSchema())
			require.NoError(t, err)
			require.Len(t, results, 1)
			require.True(t, results[0].Accepted(), "%+v", results[0].Rejection)
			assert.Equal(t, dto.SemesterRequest{Name: "Fall", StartDate: "01-09-2024", EndDate: "31-01-2025"}, results[0].Record)
		})
	}
}
