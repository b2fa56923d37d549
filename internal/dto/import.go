package dto

// ImportRowError reports why one posted record was not persisted.
// Row is the 1-based position inside the posted array.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportDetails struct {
	Errors []ImportRowError `json:"errors"`
}

// ImportResult is the data part of every /import response.
type ImportResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Details  ImportDetails `json:"details"`
}

type SemesterImportRequest struct {
	Semesters []SemesterRequest `json:"semesters"`
}

type TeacherImportRequest struct {
	Teachers []TeacherRequest `json:"teachers"`
}

type ClassImportRequest struct {
	Classes []ClassRequest `json:"classes"`
}
