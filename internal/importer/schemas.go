package importer

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
)

func SemesterSchema() Schema[dto.SemesterRequest] {
	return Schema[dto.SemesterRequest]{
		Collection: "semester",
		Columns: []Column{
			{Name: "name", Required: true},
			{Name: "startDate", Required: true, Kind: DateColumn},
			{Name: "endDate", Required: true, Kind: DateColumn},
		},
		Check: func(f Fields) string {
			if !domain.DateOrdered(f["startDate"], f["endDate"]) {
				return "Start date must be before end date"
			}
			return ""
		},
		Build: func(f Fields) (dto.SemesterRequest, string) {
			return dto.SemesterRequest{
				Name:      f["name"],
				StartDate: f["startDate"],
				EndDate:   f["endDate"],
			}, ""
		},
	}
}

func TeacherSchema() Schema[dto.TeacherRequest] {
	return Schema[dto.TeacherRequest]{
		Collection: "teacher",
		Columns: []Column{
			{Name: "firstName", Required: true},
			{Name: "lastName", Required: true},
			{Name: "teacherID", Required: true},
			{Name: "gender"},
			{Name: "phone"},
			{Name: "dateOfBirth", Kind: DateColumn},
			{Name: "email"},
		},
		Check: func(f Fields) string {
			switch strings.ToLower(f["gender"]) {
			case "", string(domain.GenderMale), string(domain.GenderFemale):
				return ""
			default:
				return "Gender must be one of: male, female"
			}
		},
		Build: func(f Fields) (dto.TeacherRequest, string) {
			return dto.TeacherRequest{
				FirstName:   f["firstName"],
				LastName:    f["lastName"],
				TeacherID:   f["teacherID"],
				Gender:      strings.ToLower(f["gender"]),
				Phone:       f["phone"],
				DateOfBirth: f["dateOfBirth"],
				Email:       f["email"],
			}, ""
		},
	}
}

// ClassSchema resolves the semester by name and the optional teacher by
// teacher ID against the given lookups, both case-insensitively.
func ClassSchema(semesters []dto.SemesterDTO, teachers []dto.TeacherDTO) Schema[dto.ClassRequest] {
	semesterByName := make(map[string]uuid.UUID, len(semesters))
	for _, s := range semesters {
		semesterByName[strings.ToLower(s.Name)] = s.ID
	}
	teacherByCode := make(map[string]uuid.UUID, len(teachers))
	for _, t := range teachers {
		teacherByCode[strings.ToLower(t.TeacherID)] = t.ID
	}

	return Schema[dto.ClassRequest]{
		Collection: "class",
		Columns: []Column{
			{Name: "className", Required: true},
			{Name: "semesterName", Required: true},
			{Name: "teacherID"},
			{Name: "capacity"},
			{Name: "description"},
		},
		Check: func(f Fields) string {
			if f["capacity"] == "" {
				return ""
			}
			if n, err := strconv.Atoi(f["capacity"]); err != nil || n < 0 {
				return "Capacity must be a whole number"
			}
			return ""
		},
		Build: func(f Fields) (dto.ClassRequest, string) {
			semesterID, ok := semesterByName[strings.ToLower(f["semesterName"])]
			if !ok {
				return dto.ClassRequest{}, "Unknown semester"
			}

			req := dto.ClassRequest{
				ClassName:   f["className"],
				SemesterID:  semesterID,
				Description: f["description"],
			}
			if code := f["teacherID"]; code != "" {
				teacherID, ok := teacherByCode[strings.ToLower(code)]
				if !ok {
					return dto.ClassRequest{}, "Unknown teacher"
				}
				req.AssignedTeacherID = &teacherID
			}
			if f["capacity"] != "" {
				req.Capacity, _ = strconv.Atoi(f["capacity"])
			}
			return req, ""
		},
	}
}
