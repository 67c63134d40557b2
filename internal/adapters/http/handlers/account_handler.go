package handlers

import (
	"errors"
	"strconv"

	"coop-backoffice/internal/core/services"
	"coop-backoffice/internal/pkg/pagination"
	"coop-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles chart of accounts endpoints
type AccountHandler struct {
	ledgerService *services.LedgerService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledgerService *services.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService}
}

// Create handles account creation
// @Summary Create account
// @Description Create a ledger account
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAccountInput true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /finance/accounts [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var input services.CreateAccountInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Code == "" || input.Name == "" {
		return response.BadRequest(c, "Code and name are required")
	}

	account, err := h.ledgerService.CreateAccount(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAccountType):
			return response.BadRequest(c, "Invalid account type")
		case errors.Is(err, services.ErrAccountCodeTaken):
			return response.Conflict(c, "Account code already in use")
		default:
			return response.InternalServerError(c, "Failed to create account")
		}
	}

	return response.Created(c, "Account created successfully", account)
}

// List handles account listing
// @Summary List accounts
// @Description List ledger accounts, optionally filtered by type
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type query string false "Account type filter"
// @Success 200 {object} response.Response
// @Router /finance/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.ledgerService.ListAccounts(c.Context(), c.Query("type"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list accounts")
	}
	return response.Success(c, "Accounts retrieved successfully", accounts)
}

// Get handles getting a single account
// @Summary Get account
// @Description Get a ledger account by ID
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/accounts/{id} [get]
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	account, err := h.ledgerService.GetAccount(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to get account")
	}

	return response.Success(c, "Account retrieved successfully", fiber.Map{
		"account":         account,
		"balance_display": account.BalanceDisplay(),
	})
}

// Update handles account updates
// @Summary Update account
// @Description Update account name and description
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param body body services.UpdateAccountInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/accounts/{id} [put]
func (h *AccountHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	var input services.UpdateAccountInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	account, err := h.ledgerService.UpdateAccount(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to update account")
	}

	return response.Success(c, "Account updated successfully", account)
}

// Delete handles account deletion. System accounts are protected.
// @Summary Delete account
// @Description Soft delete a non-system ledger account
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	if err := h.ledgerService.DeleteAccount(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrSystemAccountProtected):
			return response.Forbidden(c, "System accounts cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete account")
		}
	}

	return response.Success(c, "Account deleted successfully", nil)
}

// Transactions handles listing the transactions touching an account
// @Summary Account transactions
// @Description List the transactions hitting an account, newest first
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/accounts/{id}/transactions [get]
func (h *AccountHandler) Transactions(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	if _, err := h.ledgerService.GetAccount(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to get account")
	}

	params := pagination.GetParams(c)
	txns, total, err := h.ledgerService.ListTransactions(c.Context(), params.Offset, params.Limit,
		&services.TransactionFilter{AccountID: uint(id)})
	if err != nil {
		return response.InternalServerError(c, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txns, params, total))
}

// BalanceSheet handles the balance sheet report
// @Summary Balance sheet
// @Description Assets, liabilities and equity with display balances
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /finance/balance-sheet [get]
func (h *AccountHandler) BalanceSheet(c *fiber.Ctx) error {
	sheet, err := h.ledgerService.GetBalanceSheet(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build balance sheet")
	}
	return response.Success(c, "Balance sheet retrieved successfully", sheet)
}

// IncomeStatement handles the income statement report
// @Summary Income statement
// @Description Revenue and expenses with net income
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /finance/income-statement [get]
func (h *AccountHandler) IncomeStatement(c *fiber.Ctx) error {
	stmt, err := h.ledgerService.GetIncomeStatement(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build income statement")
	}
	return response.Success(c, "Income statement retrieved successfully", stmt)
}
