package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
)

type ClassHandler struct {
	classRepo     *repository.ClassRepository
	semesterRepo  *repository.SemesterRepository
	teacherRepo   *repository.TeacherRepository
	importService *service.ImportService
	changes       ChangeNotifier
}

func NewClassHandler(classRepo *repository.ClassRepository, semesterRepo *repository.SemesterRepository, teacherRepo *repository.TeacherRepository, importService *service.ImportService, changes ChangeNotifier) *ClassHandler {
	return &ClassHandler{
		classRepo:     classRepo,
		semesterRepo:  semesterRepo,
		teacherRepo:   teacherRepo,
		importService: importService,
		changes:       notifierOrNoop(changes),
	}
}

func (h *ClassHandler) List(c *fiber.Ctx) error {
	classes, err := h.classRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch classes")
	}

	result := make([]dto.ClassDTO, 0, len(classes))
	for i := range classes {
		result = append(result, dto.MapClass(&classes[i]))
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

func (h *ClassHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	class, err := h.classRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Class")
	}
	return c.JSON(dto.SuccessResponse(dto.MapClass(class), ""))
}

func (h *ClassHandler) Create(c *fiber.Ctx) error {
	var req dto.ClassRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if done, err := h.checkReferences(c, &req); done {
		return err
	}

	exists, _ := h.classRepo.Exists(req.ClassName, req.SemesterID, nil)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_CLASS", "This class already exists in the semester"))
	}

	class := &domain.Class{
		ClassName:         req.ClassName,
		SemesterID:        req.SemesterID,
		AssignedTeacherID: req.AssignedTeacherID,
		Capacity:          req.Capacity,
		Description:       req.Description,
	}
	if err := h.classRepo.Create(class); err != nil {
		return internalError(c, "Failed to create class")
	}

	h.changes.NotifyChange("class", "created", &class.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapClass(class), "Class created"))
}

func (h *ClassHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	class, err := h.classRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Class")
	}

	var req dto.ClassRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if done, err := h.checkReferences(c, &req); done {
		return err
	}

	exists, _ := h.classRepo.Exists(req.ClassName, req.SemesterID, &id)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_CLASS", "This class already exists in the semester"))
	}

	class.ClassName = req.ClassName
	class.SemesterID = req.SemesterID
	class.AssignedTeacherID = req.AssignedTeacherID
	class.Capacity = req.Capacity
	class.Description = req.Description
	if err := h.classRepo.Update(class); err != nil {
		return internalError(c, "Failed to update class")
	}

	h.changes.NotifyChange("class", "updated", &class.ID)
	return c.JSON(dto.SuccessResponse(dto.MapClass(class), "Class updated"))
}

func (h *ClassHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	inUse, _ := h.classRepo.HasStudents(id)
	if inUse {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("CLASS_IN_USE", "Class still has students"))
	}

	deleted, err := h.classRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete class")
	}
	if !deleted {
		return notFound(c, "Class")
	}

	h.changes.NotifyChange("class", "deleted", &id)
	return c.JSON(dto.SuccessResponse(nil, "Class deleted"))
}

// AssignTeacher handles PATCH /class/:id/teacher. A null teacherId clears
// the assignment.
func (h *ClassHandler) AssignTeacher(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req dto.AssignTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	class, err := h.classRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Class")
	}
	if req.TeacherID != nil {
		if _, err := h.teacherRepo.FindByID(*req.TeacherID); err != nil {
			return notFound(c, "Teacher")
		}
	}

	if err := h.classRepo.AssignTeacher(id, req.TeacherID); err != nil {
		return internalError(c, "Failed to assign teacher")
	}
	class.AssignedTeacherID = req.TeacherID

	h.changes.NotifyChange("class", "updated", &id)
	return c.JSON(dto.SuccessResponse(dto.MapClass(class), "Teacher assigned"))
}

func (h *ClassHandler) Import(c *fiber.Ctx) error {
	var req dto.ClassImportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if len(req.Classes) == 0 {
		return validationFailed(c, dto.ErrorDetail{Field: "classes", Message: "Classes is required"})
	}

	result := h.importService.ImportClasses(req.Classes)
	if result.Imported > 0 {
		h.changes.NotifyChange("class", "imported", nil)
	}
	return c.JSON(dto.SuccessResponse(result, "Import finished"))
}

// checkReferences makes sure the semester and the optional teacher exist.
// A nil UUID teacher is treated as unassigned.
func (h *ClassHandler) checkReferences(c *fiber.Ctx, req *dto.ClassRequest) (bool, error) {
	if _, err := h.semesterRepo.FindByID(req.SemesterID); err != nil {
		if isNotFound(err) {
			return true, validationFailed(c, dto.ErrorDetail{Field: "semesterID", Message: "Unknown semester"})
		}
		return true, internalError(c, "Failed to check semester")
	}
	if req.AssignedTeacherID != nil && *req.AssignedTeacherID == uuid.Nil {
		req.AssignedTeacherID = nil
	}
	if req.AssignedTeacherID != nil {
		if _, err := h.teacherRepo.FindByID(*req.AssignedTeacherID); err != nil {
			if isNotFound(err) {
				return true, validationFailed(c, dto.ErrorDetail{Field: "assignedTeacherId", Message: "Unknown teacher"})
			}
			return true, internalError(c, "Failed to check teacher")
		}
	}
	return false, nil
}
