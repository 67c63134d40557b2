package handlers

import (
	"errors"
	"strconv"

	"coop-backoffice/internal/core/services"
	"coop-backoffice/internal/pkg/pagination"
	"coop-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles financial transaction endpoints
type TransactionHandler struct {
	ledgerService *services.LedgerService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService *services.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// Create handles manual transaction posting
// @Summary Post transaction
// @Description Record a double-entry transaction and move both balances
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PostTransactionInput true "Transaction data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /finance/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var input services.PostTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.TransactionType == "" {
		return response.BadRequest(c, "Transaction type is required")
	}
	if input.DebitAccountID == 0 || input.CreditAccountID == 0 {
		return response.BadRequest(c, "Debit and credit accounts are required")
	}

	if userID, ok := c.Locals("userID").(uint); ok {
		input.CreatedBy = &userID
	}

	txn, err := h.ledgerService.PostTransaction(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be positive")
		case errors.Is(err, services.ErrSameAccount):
			return response.BadRequest(c, "Debit and credit accounts must differ")
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrSystemAccountManualPost):
			return response.Forbidden(c, "Manual postings to system accounts are not allowed")
		default:
			return response.InternalServerError(c, "Failed to post transaction")
		}
	}

	return response.Created(c, "Transaction posted successfully", txn)
}

// List handles transaction listing
// @Summary List transactions
// @Description List transactions with pagination and filters
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param source query string false "Source filter"
// @Param type query string false "Type filter"
// @Success 200 {object} response.Response
// @Router /finance/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := &services.TransactionFilter{
		Source: c.Query("source"),
		Type:   c.Query("type"),
	}

	txns, total, err := h.ledgerService.ListTransactions(c.Context(), params.Offset, params.Limit, filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txns, params, total))
}

// Get handles getting a single transaction
// @Summary Get transaction
// @Description Get a transaction by ID
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	txn, err := h.ledgerService.GetTransaction(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			return response.NotFound(c, "Transaction not found")
		}
		return response.InternalServerError(c, "Failed to get transaction")
	}

	return response.Success(c, "Transaction retrieved successfully", txn)
}

// Validate handles the one-way validation stamp
// @Summary Validate transaction
// @Description Stamp a transaction as validated, once
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/transactions/{id}/validate [post]
func (h *TransactionHandler) Validate(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	txn, err := h.ledgerService.ValidateTransaction(c.Context(), uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			return response.NotFound(c, "Transaction not found")
		case errors.Is(err, services.ErrAlreadyValidated):
			return response.BadRequest(c, "Transaction already validated")
		default:
			return response.InternalServerError(c, "Failed to validate transaction")
		}
	}

	return response.Success(c, "Transaction validated successfully", txn)
}

// Reconcile handles the reconciliation flag
// @Summary Reconcile transaction
// @Description Flag a transaction as reconciled
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/transactions/{id}/reconcile [post]
func (h *TransactionHandler) Reconcile(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	txn, err := h.ledgerService.ReconcileTransaction(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			return response.NotFound(c, "Transaction not found")
		}
		return response.InternalServerError(c, "Failed to reconcile transaction")
	}

	return response.Success(c, "Transaction reconciled successfully", txn)
}

// Stats handles ledger counters
// @Summary Transaction stats
// @Description Ledger counters for the dashboard
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /finance/transactions/stats [get]
func (h *TransactionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.ledgerService.GetTransactionStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get transaction stats")
	}
	return response.Success(c, "Transaction stats retrieved successfully", stats)
}
