package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/auth"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/middleware"
	"github.com/kinderhub/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	accountRepo *repository.UserAccountRepository
	jwt         *auth.JWTService
}

func NewAuthHandler(accountRepo *repository.UserAccountRepository, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		accountRepo: accountRepo,
		jwt:         jwt,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	account, err := h.accountRepo.FindByEmail(req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Wrong email or password",
		))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Wrong email or password",
		))
	}

	accessToken, err := h.jwt.GenerateAccessToken(account.ID, string(account.Role))
	if err != nil {
		return internalError(c, "Failed to create token")
	}

	return c.JSON(dto.SuccessResponse(dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.GetAccessExpiry().Seconds()),
		User:        sessionUser(account),
	}, ""))
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Not signed in"))
	}

	account, err := h.accountRepo.FindByID(*userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Account no longer exists"))
	}
	return c.JSON(dto.SuccessResponse(sessionUser(account), ""))
}

func sessionUser(account *domain.UserAccount) dto.SessionUser {
	students := []string(account.Students)
	if students == nil {
		students = []string{}
	}
	return dto.SessionUser{
		ID:       account.ID,
		FullName: account.FullName,
		Role:     string(account.Role),
		Students: students,
	}
}
