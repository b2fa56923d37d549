package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
)

type SemesterHandler struct {
	semesterRepo  *repository.SemesterRepository
	importService *service.ImportService
	changes       ChangeNotifier
}

func NewSemesterHandler(semesterRepo *repository.SemesterRepository, importService *service.ImportService, changes ChangeNotifier) *SemesterHandler {
	return &SemesterHandler{
		semesterRepo:  semesterRepo,
		importService: importService,
		changes:       notifierOrNoop(changes),
	}
}

func (h *SemesterHandler) List(c *fiber.Ctx) error {
	semesters, err := h.semesterRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch semesters")
	}

	result := make([]dto.SemesterDTO, 0, len(semesters))
	for i := range semesters {
		result = append(result, dto.MapSemester(&semesters[i]))
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

func (h *SemesterHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	semester, err := h.semesterRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Semester")
	}
	return c.JSON(dto.SuccessResponse(dto.MapSemester(semester), ""))
}

func (h *SemesterHandler) Create(c *fiber.Ctx) error {
	var req dto.SemesterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if !domain.DateOrdered(req.StartDate, req.EndDate) {
		return validationFailed(c, dto.ErrorDetail{Field: "endDate", Message: "Start date must be before end date"})
	}

	exists, _ := h.semesterRepo.NameExists(req.Name, nil)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_NAME", "A semester with this name already exists"))
	}

	semester := &domain.Semester{Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := h.semesterRepo.Create(semester); err != nil {
		return internalError(c, "Failed to create semester")
	}

	h.changes.NotifyChange("semester", "created", &semester.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapSemester(semester), "Semester created"))
}

func (h *SemesterHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	semester, err := h.semesterRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Semester")
	}

	var req dto.SemesterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if !domain.DateOrdered(req.StartDate, req.EndDate) {
		return validationFailed(c, dto.ErrorDetail{Field: "endDate", Message: "Start date must be before end date"})
	}

	exists, _ := h.semesterRepo.NameExists(req.Name, &id)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_NAME", "A semester with this name already exists"))
	}

	semester.Name = req.Name
	semester.StartDate = req.StartDate
	semester.EndDate = req.EndDate
	if err := h.semesterRepo.Update(semester); err != nil {
		return internalError(c, "Failed to update semester")
	}

	h.changes.NotifyChange("semester", "updated", &semester.ID)
	return c.JSON(dto.SuccessResponse(dto.MapSemester(semester), "Semester updated"))
}

func (h *SemesterHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	inUse, _ := h.semesterRepo.HasClasses(id)
	if inUse {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("SEMESTER_IN_USE", "Semester still has classes"))
	}

	deleted, err := h.semesterRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete semester")
	}
	if !deleted {
		return notFound(c, "Semester")
	}

	h.changes.NotifyChange("semester", "deleted", &id)
	return c.JSON(dto.SuccessResponse(nil, "Semester deleted"))
}

func (h *SemesterHandler) Import(c *fiber.Ctx) error {
	var req dto.SemesterImportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if len(req.Semesters) == 0 {
		return validationFailed(c, dto.ErrorDetail{Field: "semesters", Message: "Semesters is required"})
	}

	result := h.importService.ImportSemesters(req.Semesters)
	if result.Imported > 0 {
		h.changes.NotifyChange("semester", "imported", nil)
	}
	return c.JSON(dto.SuccessResponse(result, "Import finished"))
}
