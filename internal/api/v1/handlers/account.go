package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/services"
	"github.com/bananagen/bananagen/internal/types"
)

// AccountHandler handles HTTP requests for provider-account administration
type AccountHandler struct {
	accountService *services.Account
	validate       *validator.Validate
}

// NewAccountHandler creates a new instance of AccountHandler
func NewAccountHandler(accountService *services.Account) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		validate:       validator.New(),
	}
}

// ListAccounts handles retrieving all provider accounts
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	opts := &models.ListOptions{
		Limit:  models.DefaultLimit,
		Offset: (page - 1) * models.DefaultLimit,
	}

	accounts, err := h.accountService.List(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgAccountListFailed))
	}

	return c.JSON(types.Success(accounts))
}

// CreateAccount handles creating a new provider account
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req types.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	accountType, err := models.ParseAccountType(req.Type)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	account := &models.ProviderAccount{
		Name:             req.Name,
		APIKey:           req.APIKey,
		Type:             accountType,
		ProxyURL:         req.ProxyURL,
		UserAgent:        req.UserAgent,
		ConcurrencyLimit: req.ConcurrencyLimit,
		Priority:         req.Priority,
	}
	if err := h.accountService.Create(c.Context(), account); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgAccountCreateFailed))
	}

	return c.Status(fiber.StatusCreated).JSON(types.Success(account))
}

// UpdateAccountStatus handles activating or deactivating an account
func (h *AccountHandler) UpdateAccountStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgAccountIDRequired))
	}

	var req types.UpdateAccountStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	status, err := models.ParseAccountStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.accountService.UpdateStatus(c.Context(), uint(id), status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgAccountNotFound))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgAccountStatusFailed))
	}

	return c.JSON(types.Success(nil))
}
