package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
)

type TeacherHandler struct {
	teacherRepo   *repository.TeacherRepository
	importService *service.ImportService
	changes       ChangeNotifier
}

func NewTeacherHandler(teacherRepo *repository.TeacherRepository, importService *service.ImportService, changes ChangeNotifier) *TeacherHandler {
	return &TeacherHandler{
		teacherRepo:   teacherRepo,
		importService: importService,
		changes:       notifierOrNoop(changes),
	}
}

func (h *TeacherHandler) List(c *fiber.Ctx) error {
	teachers, err := h.teacherRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch teachers")
	}
	return c.JSON(dto.SuccessResponse(mapTeachers(teachers), ""))
}

// Search handles GET /teacher/search?query=. An empty query lists everyone.
func (h *TeacherHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))

	var (
		teachers []domain.Teacher
		err      error
	)
	if query == "" {
		teachers, err = h.teacherRepo.List()
	} else {
		teachers, err = h.teacherRepo.Search(query)
	}
	if err != nil {
		return internalError(c, "Failed to search teachers")
	}
	return c.JSON(dto.SuccessResponse(mapTeachers(teachers), ""))
}

func (h *TeacherHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	teacher, err := h.teacherRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Teacher")
	}
	return c.JSON(dto.SuccessResponse(dto.MapTeacher(teacher), ""))
}

func (h *TeacherHandler) Create(c *fiber.Ctx) error {
	var req dto.TeacherRequest
	if ok, err := bindTeacher(c, &req); !ok {
		return err
	}

	exists, _ := h.teacherRepo.CodeExists(req.TeacherID, nil)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_TEACHER_ID", "Teacher ID is already in use"))
	}

	teacher := &domain.Teacher{}
	applyTeacher(teacher, &req)
	if err := h.teacherRepo.Create(teacher); err != nil {
		return internalError(c, "Failed to create teacher")
	}

	h.changes.NotifyChange("teacher", "created", &teacher.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapTeacher(teacher), "Teacher created"))
}

func (h *TeacherHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	teacher, err := h.teacherRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Teacher")
	}

	var req dto.TeacherRequest
	if ok, err := bindTeacher(c, &req); !ok {
		return err
	}

	exists, _ := h.teacherRepo.CodeExists(req.TeacherID, &id)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_TEACHER_ID", "Teacher ID is already in use"))
	}

	applyTeacher(teacher, &req)
	if err := h.teacherRepo.Update(teacher); err != nil {
		return internalError(c, "Failed to update teacher")
	}

	h.changes.NotifyChange("teacher", "updated", &teacher.ID)
	return c.JSON(dto.SuccessResponse(dto.MapTeacher(teacher), "Teacher updated"))
}

// Delete also unassigns the teacher from every class.
func (h *TeacherHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	deleted, err := h.teacherRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete teacher")
	}
	if !deleted {
		return notFound(c, "Teacher")
	}

	h.changes.NotifyChange("teacher", "deleted", &id)
	h.changes.NotifyChange("class", "updated", nil)
	return c.JSON(dto.SuccessResponse(nil, "Teacher deleted"))
}

func (h *TeacherHandler) Import(c *fiber.Ctx) error {
	var req dto.TeacherImportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if len(req.Teachers) == 0 {
		return validationFailed(c, dto.ErrorDetail{Field: "teachers", Message: "Teachers is required"})
	}

	result := h.importService.ImportTeachers(req.Teachers)
	if result.Imported > 0 {
		h.changes.NotifyChange("teacher", "imported", nil)
	}
	return c.JSON(dto.SuccessResponse(result, "Import finished"))
}

func bindTeacher(c *fiber.Ctx, req *dto.TeacherRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, invalidBody(c)
	}
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	return bindValidated(c, req)
}

func applyTeacher(t *domain.Teacher, req *dto.TeacherRequest) {
	t.FirstName = req.FirstName
	t.LastName = req.LastName
	t.TeacherID = req.TeacherID
	t.Gender = domain.Gender(req.Gender)
	t.Phone = req.Phone
	t.DateOfBirth = req.DateOfBirth
	t.Email = req.Email
}

func mapTeachers(teachers []domain.Teacher) []dto.TeacherDTO {
	result := make([]dto.TeacherDTO, 0, len(teachers))
	for i := range teachers {
		result = append(result, dto.MapTeacher(&teachers[i]))
	}
	return result
}
