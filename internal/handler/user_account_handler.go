package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/middleware"
	"github.com/kinderhub/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserAccountHandler struct {
	accountRepo *repository.UserAccountRepository
	changes     ChangeNotifier
}

func NewUserAccountHandler(accountRepo *repository.UserAccountRepository, changes ChangeNotifier) *UserAccountHandler {
	return &UserAccountHandler{
		accountRepo: accountRepo,
		changes:     notifierOrNoop(changes),
	}
}

func (h *UserAccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accountRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch user accounts")
	}

	result := make([]dto.UserAccountDTO, 0, len(accounts))
	for i := range accounts {
		result = append(result, dto.MapUserAccount(&accounts[i]))
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

func (h *UserAccountHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserAccountRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	exists, _ := h.accountRepo.EmailExists(req.Email, nil)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_EMAIL", "Email is already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, "Failed to hash password")
	}

	account := &domain.UserAccount{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.Role(req.Role),
		Students:     domain.StringList(req.Students),
	}
	if err := h.accountRepo.Create(account); err != nil {
		return internalError(c, "Failed to create user account")
	}

	h.changes.NotifyChange("user-accounts", "created", &account.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapUserAccount(account), "User account created"))
}

// Update keeps the password unless a new one is sent. The last admin cannot
// be demoted.
func (h *UserAccountHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	account, err := h.accountRepo.FindByID(id)
	if err != nil {
		return notFound(c, "User account")
	}

	var req dto.UpdateUserAccountRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	exists, _ := h.accountRepo.EmailExists(req.Email, &id)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("DUPLICATE_EMAIL", "Email is already registered"))
	}

	if account.Role == domain.RoleAdmin && domain.Role(req.Role) != domain.RoleAdmin {
		if last, err := h.isLastAdmin(); err != nil {
			return internalError(c, "Failed to count admins")
		} else if last {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("LAST_ADMIN", "At least one admin account must remain"))
		}
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c, "Failed to hash password")
		}
		account.PasswordHash = string(hash)
	}
	account.FullName = req.FullName
	account.Email = req.Email
	account.Role = domain.Role(req.Role)
	account.Students = domain.StringList(req.Students)

	if err := h.accountRepo.Update(account); err != nil {
		return internalError(c, "Failed to update user account")
	}

	h.changes.NotifyChange("user-accounts", "updated", &account.ID)
	return c.JSON(dto.SuccessResponse(dto.MapUserAccount(account), "User account updated"))
}

// Delete refuses to remove the caller's own account or the last admin.
func (h *UserAccountHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	if me := middleware.GetUserID(c); me != nil && *me == id {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("SELF_DELETE", "You cannot delete your own account"))
	}

	account, err := h.accountRepo.FindByID(id)
	if err != nil {
		return notFound(c, "User account")
	}
	if account.Role == domain.RoleAdmin {
		if last, err := h.isLastAdmin(); err != nil {
			return internalError(c, "Failed to count admins")
		} else if last {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("LAST_ADMIN", "At least one admin account must remain"))
		}
	}

	deleted, err := h.accountRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete user account")
	}
	if !deleted {
		return notFound(c, "User account")
	}

	h.changes.NotifyChange("user-accounts", "deleted", &id)
	return c.JSON(dto.SuccessResponse(nil, "User account deleted"))
}

func (h *UserAccountHandler) isLastAdmin() (bool, error) {
	admins, err := h.accountRepo.CountAdmins()
	if err != nil {
		return false, err
	}
	return admins <= 1, nil
}
