package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	maxDocumentSize   = 10 * 1024 * 1024 // 10MB
	documentURLExpiry = time.Hour
)

var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// DocumentStore keeps student documents. *storage.MinIOClient satisfies it.
type DocumentStore interface {
	PutObject(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

type StudentHandler struct {
	studentRepo *repository.StudentRepository
	classRepo   *repository.ClassRepository
	store       DocumentStore
	changes     ChangeNotifier
}

func NewStudentHandler(studentRepo *repository.StudentRepository, classRepo *repository.ClassRepository, store DocumentStore, changes ChangeNotifier) *StudentHandler {
	return &StudentHandler{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		store:       store,
		changes:     notifierOrNoop(changes),
	}
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.studentRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch students")
	}

	result := make([]dto.StudentDTO, 0, len(students))
	for i := range students {
		result = append(result, dto.MapStudent(&students[i]))
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

// Get returns the student with short-lived links to its documents.
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	student, err := h.studentRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Student")
	}

	result := dto.MapStudent(student)
	if h.store != nil {
		for i := range result.Documents {
			url, err := h.store.PresignedGetURL(c.Context(), student.Documents[i].ObjectKey, documentURLExpiry)
			if err != nil {
				log.Warn().Err(err).Str("object_key", student.Documents[i].ObjectKey).Msg("presign student document")
				continue
			}
			result.Documents[i].URL = url
		}
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if ok, err := bindStudent(c, &req); !ok {
		return err
	}
	if done, err := h.checkClass(c, &req); done {
		return err
	}

	exists, _ := h.studentRepo.StudentIDExists(req.StudentID, nil)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_STUDENT_ID", "Student ID is already in use"))
	}

	student := &domain.Student{}
	applyStudent(student, &req)
	if err := h.studentRepo.Create(student); err != nil {
		return internalError(c, "Failed to create student")
	}

	h.changes.NotifyChange("student", "created", &student.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapStudent(student), "Student created"))
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	student, err := h.studentRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Student")
	}

	var req dto.StudentRequest
	if ok, err := bindStudent(c, &req); !ok {
		return err
	}
	if done, err := h.checkClass(c, &req); done {
		return err
	}

	exists, _ := h.studentRepo.StudentIDExists(req.StudentID, &id)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_STUDENT_ID", "Student ID is already in use"))
	}

	applyStudent(student, &req)
	if err := h.studentRepo.Update(student); err != nil {
		return internalError(c, "Failed to update student")
	}

	h.changes.NotifyChange("student", "updated", &student.ID)
	return c.JSON(dto.SuccessResponse(dto.MapStudent(student), "Student updated"))
}

// Delete removes the student, its document rows and, best effort, the
// stored objects.
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	deleted, docs, err := h.studentRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete student")
	}
	if !deleted {
		return notFound(c, "Student")
	}

	if h.store != nil {
		for _, doc := range docs {
			if err := h.store.DeleteObject(c.Context(), doc.ObjectKey); err != nil {
				log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("delete student document object")
			}
		}
	}

	h.changes.NotifyChange("student", "deleted", &id)
	return c.JSON(dto.SuccessResponse(nil, "Student deleted"))
}

// CheckID handles GET /student/check-id/:id where :id is the student code.
// ?exclude=<uuid> ignores the student being edited.
func (h *StudentHandler) CheckID(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("id"))
	if code == "" {
		return validationFailed(c, dto.ErrorDetail{Field: "studentID", Message: "Student ID is required"})
	}

	var exclude *uuid.UUID
	if raw := c.Query("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return invalidID(c)
		}
		exclude = &id
	}

	exists, err := h.studentRepo.StudentIDExists(code, exclude)
	if err != nil {
		return internalError(c, "Failed to check student ID")
	}
	return c.JSON(dto.SuccessResponse(dto.CheckIDResponse{Exists: exists}, ""))
}

// UploadDocument handles the multipart POST /student/document/upload with
// fields studentId and file.
func (h *StudentHandler) UploadDocument(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse("STORAGE_UNAVAILABLE", "Document storage is not configured"))
	}

	studentID, err := uuid.Parse(c.FormValue("studentId"))
	if err != nil {
		return validationFailed(c, dto.ErrorDetail{Field: "studentId", Message: "Student ID is invalid"})
	}
	if _, err := h.studentRepo.FindByID(studentID); err != nil {
		return notFound(c, "Student")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_FILE", "File is required"))
	}
	if file.Size > maxDocumentSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("FILE_TOO_LARGE", "Maximum file size is 10MB"))
	}

	f, err := file.Open()
	if err != nil {
		return internalError(c, "Failed to open file")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	ext, allowed := allowedDocumentTypes[contentType]
	if !allowed {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_FILE_TYPE", "Only PDF, JPEG and PNG files are allowed"))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return internalError(c, "Failed to read file")
	}

	objectKey := fmt.Sprintf("students/%s/%s%s", studentID, uuid.New(), ext)
	if err := h.store.PutObject(c.Context(), objectKey, f, file.Size, contentType); err != nil {
		log.Error().Err(err).Str("object_key", objectKey).Msg("upload student document")
		return internalError(c, "Failed to store file")
	}

	doc := &domain.StudentDocument{
		StudentID:   studentID,
		FileName:    filepath.Base(file.Filename),
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        file.Size,
	}
	if err := h.studentRepo.AddDocument(doc); err != nil {
		_ = h.store.DeleteObject(c.Context(), objectKey)
		return internalError(c, "Failed to save document")
	}

	url, err := h.store.PresignedGetURL(c.Context(), objectKey, documentURLExpiry)
	if err != nil {
		log.Warn().Err(err).Str("object_key", objectKey).Msg("presign student document")
	}

	h.changes.NotifyChange("student", "updated", &studentID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapStudentDocument(doc, url), "Document uploaded"))
}

func (h *StudentHandler) checkClass(c *fiber.Ctx, req *dto.StudentRequest) (bool, error) {
	if req.ClassID != nil && *req.ClassID == uuid.Nil {
		req.ClassID = nil
	}
	if req.ClassID == nil {
		return false, nil
	}
	if _, err := h.classRepo.FindByID(*req.ClassID); err != nil {
		if isNotFound(err) {
			return true, validationFailed(c, dto.ErrorDetail{Field: "classId", Message: "Unknown class"})
		}
		return true, internalError(c, "Failed to check class")
	}
	return false, nil
}

func bindStudent(c *fiber.Ctx, req *dto.StudentRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, invalidBody(c)
	}
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	return bindValidated(c, req)
}

func applyStudent(s *domain.Student, req *dto.StudentRequest) {
	s.FirstName = req.FirstName
	s.LastName = req.LastName
	s.StudentID = req.StudentID
	s.Gender = domain.Gender(req.Gender)
	s.DateOfBirth = req.DateOfBirth
	s.ClassID = req.ClassID
	s.ParentName = req.ParentName
	s.ParentPhone = req.ParentPhone
	s.Address = req.Address
}
