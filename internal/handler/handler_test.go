package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/auth"
	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/middleware"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
	"github.com/kinderhub/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Message string         `json:"message"`
	Error   *dto.ErrorInfo `json:"error"`
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func (s *fakeStore) PutObject(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *fakeStore) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

func (s *fakeStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeAssistant struct {
	gotHistory []dto.ChatTurn
}

func (a *fakeAssistant) Reply(_ context.Context, history []dto.ChatTurn, message string) (string, error) {
	a.gotHistory = history
	return "Draft: " + message, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []dto.CollectionChanged
}

func (n *recordingNotifier) NotifyChange(collection, action string, id *uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, dto.CollectionChanged{Collection: collection, Action: action, ID: id})
}

type testServer struct {
	app        *fiber.App
	db         *gorm.DB
	store      *fakeStore
	changes    *recordingNotifier
	admin      *domain.UserAccount
	adminToken string
	parentTok  string
}

func newTestServer(t *testing.T, assistant service.NewsAssistant) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	jwtService := auth.NewJWTService(&config.Config{JWT: config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour}})

	semesterRepo := repository.NewSemesterRepository(db)
	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	accountRepo := repository.NewUserAccountRepository(db)
	importService := service.NewImportService(semesterRepo, teacherRepo, classRepo)

	store := &fakeStore{objects: map[string][]byte{}}
	changes := &recordingNotifier{}

	h := &Handlers{
		Auth:        NewAuthHandler(accountRepo, jwtService),
		Semester:    NewSemesterHandler(semesterRepo, importService, changes),
		Class:       NewClassHandler(classRepo, semesterRepo, teacherRepo, importService, changes),
		Teacher:     NewTeacherHandler(teacherRepo, importService, changes),
		Student:     NewStudentHandler(studentRepo, classRepo, store, changes),
		News:        NewNewsHandler(newsRepo, assistant, changes),
		UserAccount: NewUserAccountHandler(accountRepo, changes),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app.Group("/api"), h, middleware.NewAuthMiddleware(jwtService))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.UserAccount{FullName: "Head Teacher", Email: "admin@kinder.test", PasswordHash: string(hash), Role: domain.RoleAdmin}
	parent := &domain.UserAccount{FullName: "Parent", Email: "parent@kinder.test", PasswordHash: string(hash), Role: domain.RoleParent, Students: domain.StringList{"S-1"}}
	require.NoError(t, accountRepo.Create(admin))
	require.NoError(t, accountRepo.Create(parent))

	adminToken, err := jwtService.GenerateAccessToken(admin.ID, string(admin.Role))
	require.NoError(t, err)
	parentToken, err := jwtService.GenerateAccessToken(parent.ID, string(parent.Role))
	require.NoError(t, err)

	return &testServer{
		app: app, db: db, store: store, changes: changes,
		admin: admin, adminToken: adminToken, parentTok: parentToken,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()
	defer resp.Body.Close()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ADMIN@kinder.test", Password: "secret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode[dto.LoginResponse](t, resp)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Equal(t, "admin", env.Data.User.Role)
	assert.Equal(t, "Head Teacher", env.Data.User.FullName)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@kinder.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[any](t, resp).Error.Code)

	resp = s.do(t, http.MethodGet, "/api/auth/me", s.parentTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"S-1"}, decode[dto.SessionUser](t, resp).Data.Students)
}

func TestRoutes_RequireTokenAndAdmin(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/class", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/class", s.parentTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/semester", s.parentTok, dto.SemesterRequest{Name: "Term", StartDate: "01-09-2024", EndDate: "31-01-2025"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/user-accounts", s.parentTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSemesterCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/semester", s.adminToken, dto.SemesterRequest{Name: " Term 1 ", StartDate: "01-09-2024", EndDate: "31-01-2025"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.SemesterDTO](t, resp).Data
	assert.Equal(t, "Term 1", created.Name)

	resp = s.do(t, http.MethodPost, "/api/semester", s.adminToken, dto.SemesterRequest{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/semester", s.adminToken, dto.SemesterRequest{Name: "Term 2", StartDate: "01-09-2024", EndDate: "01-08-2024"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode[any](t, resp)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "Start date must be before end date", env.Error.Details[0].Message)

	resp = s.do(t, http.MethodPut, "/api/semester/"+created.ID.String(), s.adminToken, dto.SemesterRequest{Name: "Term 1", StartDate: "02-09-2024", EndDate: "31-01-2025"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "02-09-2024", decode[dto.SemesterDTO](t, resp).Data.StartDate)

	resp = s.do(t, http.MethodDelete, "/api/semester/"+created.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/semester/"+created.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/semester/not-a-uuid", s.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	actions := []string{}
	for _, e := range s.changes.events {
		actions = append(actions, e.Collection+"."+e.Action)
	}
	assert.Equal(t, []string{"semester.created", "semester.updated", "semester.deleted"}, actions)
}

func TestSemesterImport_MixedBatch(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/semester/import", s.adminToken, dto.SemesterImportRequest{Semesters: []dto.SemesterRequest{
		{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"},
		{Name: "Term 2", StartDate: "01-09-2024", EndDate: "01-08-2024"},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode[dto.ImportResult](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Data.Imported)
	assert.Equal(t, 1, env.Data.Failed)
	assert.Equal(t, []dto.ImportRowError{{Row: 2, Reason: "Start date must be before end date"}}, env.Data.Details.Errors)

	resp = s.do(t, http.MethodPost, "/api/semester/import", s.adminToken, dto.SemesterImportRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestClassHandler_ReferencesAndTeacherAssignment(t *testing.T) {
	s := newTestServer(t, nil)

	term := &domain.Semester{Name: "Term 1", StartDate: "01-09-2024", EndDate: "31-01-2025"}
	require.NoError(t, repository.NewSemesterRepository(s.db).Create(term))
	teacher := &domain.Teacher{FirstName: "Ann", LastName: "Lee", TeacherID: "T-1"}
	require.NoError(t, repository.NewTeacherRepository(s.db).Create(teacher))

	resp := s.do(t, http.MethodPost, "/api/class", s.adminToken, dto.ClassRequest{ClassName: "Grade 1A", SemesterID: uuid.New()})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/class", s.adminToken, dto.ClassRequest{ClassName: "Grade 1A", SemesterID: term.ID, Capacity: 20})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	class := decode[dto.ClassDTO](t, resp).Data

	resp = s.do(t, http.MethodPost, "/api/class", s.adminToken, dto.ClassRequest{ClassName: "Grade 1A", SemesterID: term.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPatch, "/api/class/"+class.ID.String()+"/teacher", s.adminToken, dto.AssignTeacherRequest{TeacherID: &teacher.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assigned := decode[dto.ClassDTO](t, resp).Data
	require.NotNil(t, assigned.AssignedTeacherID)
	assert.Equal(t, teacher.ID, *assigned.AssignedTeacherID)

	resp = s.do(t, http.MethodPatch, "/api/class/"+class.ID.String()+"/teacher", s.adminToken, map[string]interface{}{"teacherId": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[dto.ClassDTO](t, resp).Data.AssignedTeacherID)

	resp = s.do(t, http.MethodDelete, "/api/semester/"+term.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	require.NoError(t, repository.NewStudentRepository(s.db).Create(&domain.Student{FirstName: "Mia", LastName: "Park", StudentID: "S-1", ClassID: &class.ID}))
	resp = s.do(t, http.MethodDelete, "/api/class/"+class.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTeacherSearch(t *testing.T) {
	s := newTestServer(t, nil)

	for _, req := range []dto.TeacherRequest{
		{FirstName: "Ann", LastName: "Lee", TeacherID: "T-1", Gender: "Female"},
		{FirstName: "Bob", LastName: "Stone", TeacherID: "T-2", Gender: "male"},
	} {
		resp := s.do(t, http.MethodPost, "/api/teacher", s.adminToken, req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := s.do(t, http.MethodGet, "/api/teacher/search?query=stone", s.parentTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]dto.TeacherDTO](t, resp).Data
	require.Len(t, found, 1)
	assert.Equal(t, "T-2", found[0].TeacherID)

	resp = s.do(t, http.MethodGet, "/api/teacher/search?query=", s.parentTok, nil)
	assert.Len(t, decode[[]dto.TeacherDTO](t, resp).Data, 2)

	resp = s.do(t, http.MethodGet, "/api/teacher", s.parentTok, nil)
	list := decode[[]dto.TeacherDTO](t, resp).Data
	require.Len(t, list, 2)
	assert.Equal(t, "female", list[0].Gender)
}

func TestStudentCheckIDAndDocumentUpload(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/student", s.adminToken, dto.StudentRequest{FirstName: "Mia", LastName: "Park", StudentID: "S-100", DateOfBirth: "05-03-2020"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	student := decode[dto.StudentDTO](t, resp).Data

	resp = s.do(t, http.MethodGet, "/api/student/check-id/S-100", s.adminToken, nil)
	assert.True(t, decode[dto.CheckIDResponse](t, resp).Data.Exists)
	resp = s.do(t, http.MethodGet, "/api/student/check-id/S-100?exclude="+student.ID.String(), s.adminToken, nil)
	assert.False(t, decode[dto.CheckIDResponse](t, resp).Data.Exists)

	upload := func(content []byte, name string) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("studentId", student.ID.String()))
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/student/document/upload", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.adminToken)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp = upload([]byte("%PDF-1.4\n%test document\n"), "birth-certificate.pdf")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	doc := decode[dto.StudentDocumentDTO](t, resp).Data
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "birth-certificate.pdf", doc.FileName)
	assert.Contains(t, doc.URL, "https://files.test/students/"+student.ID.String()+"/")
	assert.Len(t, s.store.objects, 1)

	resp = upload([]byte("just some text"), "notes.txt")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/student/"+student.ID.String(), s.adminToken, nil)
	loaded := decode[dto.StudentDTO](t, resp).Data
	require.Len(t, loaded.Documents, 1)
	assert.NotEmpty(t, loaded.Documents[0].URL)

	resp = s.do(t, http.MethodDelete, "/api/student/"+student.ID.String(), s.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.store.objects)
	assert.Len(t, s.store.deleted, 1)
}

func TestNewsChat(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, http.MethodPost, "/api/news/chat", s.adminToken, dto.NewsChatRequest{Message: "Sports day on Friday"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assistant := &fakeAssistant{}
	s = newTestServer(t, assistant)
	resp = s.do(t, http.MethodPost, "/api/news/chat", s.adminToken, dto.NewsChatRequest{
		Message: "Make it shorter",
		History: []dto.ChatTurn{{Role: "user", Text: "Sports day on Friday"}, {Role: "model", Text: "Dear parents..."}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Draft: Make it shorter", decode[dto.NewsChatResponse](t, resp).Data.Reply)
	assert.Len(t, assistant.gotHistory, 2)

	resp = s.do(t, http.MethodPost, "/api/news/chat", s.adminToken, dto.NewsChatRequest{
		Message: "hi",
		History: []dto.ChatTurn{{Role: "system", Text: "x"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestNewsCreateDefaultsPublishedAt(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/news", s.adminToken, dto.NewsRequest{Title: "Open day", Content: "Come visit"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	news := decode[dto.NewsDTO](t, resp).Data
	assert.True(t, domain.ValidDate(news.PublishedAt))
}

func TestUserAccounts_ProtectLastAdmin(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodDelete, "/api/user-accounts/"+s.admin.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/user-accounts/"+s.admin.ID.String(), s.adminToken, dto.UpdateUserAccountRequest{
		FullName: "Head Teacher", Email: "admin@kinder.test", Role: "teacher",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "LAST_ADMIN", decode[any](t, resp).Error.Code)

	resp = s.do(t, http.MethodPost, "/api/user-accounts", s.adminToken, dto.CreateUserAccountRequest{
		FullName: "Second Admin", Email: "second@kinder.test", Password: "long-enough", Role: "admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[dto.UserAccountDTO](t, resp).Data
	assert.Equal(t, []string{}, second.Students)

	resp = s.do(t, http.MethodPost, "/api/user-accounts", s.adminToken, dto.CreateUserAccountRequest{
		FullName: "Dup", Email: "SECOND@kinder.test", Password: "long-enough", Role: "parent",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/user-accounts/"+second.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/user-accounts", s.adminToken, nil)
	assert.Len(t, decode[[]dto.UserAccountDTO](t, resp).Data, 2)
}
