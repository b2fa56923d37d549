package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/dto"
)

// Auth

func (c *Client) Login(ctx context.Context, email, password string) Result[dto.LoginResponse] {
	return do[dto.LoginResponse](ctx, c, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password})
}

func (c *Client) Me(ctx context.Context) Result[dto.SessionUser] {
	return do[dto.SessionUser](ctx, c, http.MethodGet, "/auth/me", nil)
}

// Classes

func (c *Client) Classes(ctx context.Context) Result[[]dto.ClassDTO] {
	return do[[]dto.ClassDTO](ctx, c, http.MethodGet, "/class", nil)
}

func (c *Client) Class(ctx context.Context, id uuid.UUID) Result[dto.ClassDTO] {
	return do[dto.ClassDTO](ctx, c, http.MethodGet, "/class/"+id.String(), nil)
}

func (c *Client) CreateClass(ctx context.Context, req dto.ClassRequest) Result[dto.ClassDTO] {
	return do[dto.ClassDTO](ctx, c, http.MethodPost, "/class", req)
}

func (c *Client) UpdateClass(ctx context.Context, id uuid.UUID, req dto.ClassRequest) Result[dto.ClassDTO] {
	return do[dto.ClassDTO](ctx, c, http.MethodPut, "/class/"+id.String(), req)
}

func (c *Client) DeleteClass(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/class/"+id.String(), nil)
}

func (c *Client) ImportClasses(ctx context.Context, classes []dto.ClassRequest) Result[dto.ImportResult] {
	return do[dto.ImportResult](ctx, c, http.MethodPost, "/class/import", dto.ClassImportRequest{Classes: classes})
}

// AssignTeacher sets the class teacher; a nil teacherID clears it.
func (c *Client) AssignTeacher(ctx context.Context, classID uuid.UUID, teacherID *uuid.UUID) Result[dto.ClassDTO] {
	return do[dto.ClassDTO](ctx, c, http.MethodPatch, "/class/"+classID.String()+"/teacher", dto.AssignTeacherRequest{TeacherID: teacherID})
}

// Semesters

func (c *Client) Semesters(ctx context.Context) Result[[]dto.SemesterDTO] {
	return do[[]dto.SemesterDTO](ctx, c, http.MethodGet, "/semester", nil)
}

func (c *Client) CreateSemester(ctx context.Context, req dto.SemesterRequest) Result[dto.SemesterDTO] {
	return do[dto.SemesterDTO](ctx, c, http.MethodPost, "/semester", req)
}

func (c *Client) UpdateSemester(ctx context.Context, id uuid.UUID, req dto.SemesterRequest) Result[dto.SemesterDTO] {
	return do[dto.SemesterDTO](ctx, c, http.MethodPut, "/semester/"+id.String(), req)
}

func (c *Client) DeleteSemester(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/semester/"+id.String(), nil)
}

func (c *Client) ImportSemesters(ctx context.Context, semesters []dto.SemesterRequest) Result[dto.ImportResult] {
	return do[dto.ImportResult](ctx, c, http.MethodPost, "/semester/import", dto.SemesterImportRequest{Semesters: semesters})
}

// Teachers

func (c *Client) Teachers(ctx context.Context) Result[[]dto.TeacherDTO] {
	return do[[]dto.TeacherDTO](ctx, c, http.MethodGet, "/teacher", nil)
}

func (c *Client) SearchTeachers(ctx context.Context, query string) Result[[]dto.TeacherDTO] {
	return do[[]dto.TeacherDTO](ctx, c, http.MethodGet, "/teacher/search?query="+url.QueryEscape(query), nil)
}

func (c *Client) CreateTeacher(ctx context.Context, req dto.TeacherRequest) Result[dto.TeacherDTO] {
	return do[dto.TeacherDTO](ctx, c, http.MethodPost, "/teacher", req)
}

func (c *Client) UpdateTeacher(ctx context.Context, id uuid.UUID, req dto.TeacherRequest) Result[dto.TeacherDTO] {
	return do[dto.TeacherDTO](ctx, c, http.MethodPut, "/teacher/"+id.String(), req)
}

func (c *Client) DeleteTeacher(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/teacher/"+id.String(), nil)
}

func (c *Client) ImportTeachers(ctx context.Context, teachers []dto.TeacherRequest) Result[dto.ImportResult] {
	return do[dto.ImportResult](ctx, c, http.MethodPost, "/teacher/import", dto.TeacherImportRequest{Teachers: teachers})
}

// Students

func (c *Client) Students(ctx context.Context) Result[[]dto.StudentDTO] {
	return do[[]dto.StudentDTO](ctx, c, http.MethodGet, "/student", nil)
}

func (c *Client) Student(ctx context.Context, id uuid.UUID) Result[dto.StudentDTO] {
	return do[dto.StudentDTO](ctx, c, http.MethodGet, "/student/"+id.String(), nil)
}

func (c *Client) CreateStudent(ctx context.Context, req dto.StudentRequest) Result[dto.StudentDTO] {
	return do[dto.StudentDTO](ctx, c, http.MethodPost, "/student", req)
}

func (c *Client) UpdateStudent(ctx context.Context, id uuid.UUID, req dto.StudentRequest) Result[dto.StudentDTO] {
	return do[dto.StudentDTO](ctx, c, http.MethodPut, "/student/"+id.String(), req)
}

func (c *Client) DeleteStudent(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/student/"+id.String(), nil)
}

// CheckStudentID reports whether studentID is taken. exclude skips the
// student being edited.
func (c *Client) CheckStudentID(ctx context.Context, studentID string, exclude *uuid.UUID) Result[bool] {
	path := "/student/check-id/" + url.PathEscape(studentID)
	if exclude != nil {
		path += "?exclude=" + exclude.String()
	}
	res := do[dto.CheckIDResponse](ctx, c, http.MethodGet, path, nil)
	if !res.OK() {
		return failure[bool](res.Err)
	}
	return success(res.Value.Exists)
}

// UploadDocument attaches a file to a student as multipart/form-data.
func (c *Client) UploadDocument(ctx context.Context, studentID uuid.UUID, fileName string, file io.Reader) Result[dto.StudentDocumentDTO] {
	const path = "/student/document/upload"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("studentId", studentID.String()); err != nil {
		return failure[dto.StudentDocumentDTO](fmt.Errorf("failed to build form: %w", err))
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return failure[dto.StudentDocumentDTO](fmt.Errorf("failed to build form: %w", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return failure[dto.StudentDocumentDTO](fmt.Errorf("failed to read %s: %w", fileName, err))
	}
	if err := writer.Close(); err != nil {
		return failure[dto.StudentDocumentDTO](fmt.Errorf("failed to build form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return failure[dto.StudentDocumentDTO](fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return send[dto.StudentDocumentDTO](c, req, path)
}

// News

func (c *Client) News(ctx context.Context) Result[[]dto.NewsDTO] {
	return do[[]dto.NewsDTO](ctx, c, http.MethodGet, "/news", nil)
}

func (c *Client) CreateNews(ctx context.Context, req dto.NewsRequest) Result[dto.NewsDTO] {
	return do[dto.NewsDTO](ctx, c, http.MethodPost, "/news", req)
}

func (c *Client) UpdateNews(ctx context.Context, id uuid.UUID, req dto.NewsRequest) Result[dto.NewsDTO] {
	return do[dto.NewsDTO](ctx, c, http.MethodPut, "/news/"+id.String(), req)
}

func (c *Client) DeleteNews(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/news/"+id.String(), nil)
}

func (c *Client) NewsChat(ctx context.Context, message string, history []dto.ChatTurn) Result[dto.NewsChatResponse] {
	return do[dto.NewsChatResponse](ctx, c, http.MethodPost, "/news/chat", dto.NewsChatRequest{Message: message, History: history})
}

// User accounts

func (c *Client) UserAccounts(ctx context.Context) Result[[]dto.UserAccountDTO] {
	return do[[]dto.UserAccountDTO](ctx, c, http.MethodGet, "/user-accounts", nil)
}

func (c *Client) CreateUserAccount(ctx context.Context, req dto.CreateUserAccountRequest) Result[dto.UserAccountDTO] {
	return do[dto.UserAccountDTO](ctx, c, http.MethodPost, "/user-accounts", req)
}

func (c *Client) UpdateUserAccount(ctx context.Context, id uuid.UUID, req dto.UpdateUserAccountRequest) Result[dto.UserAccountDTO] {
	return do[dto.UserAccountDTO](ctx, c, http.MethodPut, "/user-accounts/"+id.String(), req)
}

func (c *Client) DeleteUserAccount(ctx context.Context, id uuid.UUID) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, "/user-accounts/"+id.String(), nil)
}
