package handler

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth        *AuthHandler
	Semester    *SemesterHandler
	Class       *ClassHandler
	Teacher     *TeacherHandler
	Student     *StudentHandler
	News        *NewsHandler
	UserAccount *UserAccountHandler
	WebSocket   *WebSocketHandler
}

// ErrorHandler renders errors that escape a handler in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := "INTERNAL_ERROR"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		switch code {
		case fiber.StatusNotFound:
			errCode = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			errCode = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			errCode = "FILE_TOO_LARGE"
		case fiber.StatusUpgradeRequired:
			errCode = "UPGRADE_REQUIRED"
		}
	}
	return c.Status(code).JSON(dto.ErrorResponse(errCode, err.Error()))
}

// RegisterRoutes mounts the REST API on api. Every route except login needs a
// bearer token; writes and user accounts need the admin role.
func RegisterRoutes(api fiber.Router, h *Handlers, authMiddleware *middleware.AuthMiddleware) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	api.Post("/auth/login", h.Auth.Login)
	api.Get("/auth/me", authMiddleware.Required(), h.Auth.Me)

	required := authMiddleware.Required()
	admin := authMiddleware.AdminOnly()

	// Class routes
	classRoutes := api.Group("/class", required)
	classRoutes.Get("/", h.Class.List)
	classRoutes.Post("/import", admin, h.Class.Import)
	classRoutes.Get("/:id", h.Class.Get)
	classRoutes.Post("/", admin, h.Class.Create)
	classRoutes.Put("/:id", admin, h.Class.Update)
	classRoutes.Delete("/:id", admin, h.Class.Delete)
	classRoutes.Patch("/:id/teacher", admin, h.Class.AssignTeacher)

	// Semester routes
	semesterRoutes := api.Group("/semester", required)
	semesterRoutes.Get("/", h.Semester.List)
	semesterRoutes.Post("/import", admin, h.Semester.Import)
	semesterRoutes.Get("/:id", h.Semester.Get)
	semesterRoutes.Post("/", admin, h.Semester.Create)
	semesterRoutes.Put("/:id", admin, h.Semester.Update)
	semesterRoutes.Delete("/:id", admin, h.Semester.Delete)

	// Teacher routes
	teacherRoutes := api.Group("/teacher", required)
	teacherRoutes.Get("/", h.Teacher.List)
	teacherRoutes.Get("/search", h.Teacher.Search)
	teacherRoutes.Post("/import", admin, h.Teacher.Import)
	teacherRoutes.Get("/:id", h.Teacher.Get)
	teacherRoutes.Post("/", admin, h.Teacher.Create)
	teacherRoutes.Put("/:id", admin, h.Teacher.Update)
	teacherRoutes.Delete("/:id", admin, h.Teacher.Delete)

	// Student routes
	studentRoutes := api.Group("/student", required)
	studentRoutes.Get("/", h.Student.List)
	studentRoutes.Get("/check-id/:id", h.Student.CheckID)
	studentRoutes.Post("/document/upload", admin, h.Student.UploadDocument)
	studentRoutes.Get("/:id", h.Student.Get)
	studentRoutes.Post("/", admin, h.Student.Create)
	studentRoutes.Put("/:id", admin, h.Student.Update)
	studentRoutes.Delete("/:id", admin, h.Student.Delete)

	// News routes
	newsRoutes := api.Group("/news", required)
	newsRoutes.Get("/", h.News.List)
	newsRoutes.Post("/chat", admin, h.News.Chat)
	newsRoutes.Get("/:id", h.News.Get)
	newsRoutes.Post("/", admin, h.News.Create)
	newsRoutes.Put("/:id", admin, h.News.Update)
	newsRoutes.Delete("/:id", admin, h.News.Delete)

	// User account routes
	accountRoutes := api.Group("/user-accounts", required, admin)
	accountRoutes.Get("/", h.UserAccount.List)
	accountRoutes.Post("/", h.UserAccount.Create)
	accountRoutes.Put("/:id", h.UserAccount.Update)
	accountRoutes.Delete("/:id", h.UserAccount.Delete)

	// Change feed
	if h.WebSocket != nil {
		api.Use("/ws", h.WebSocket.WebSocketUpgrade(authMiddleware))
		api.Get("/ws", websocket.New(h.WebSocket.HandleWebSocket))
	}
}
