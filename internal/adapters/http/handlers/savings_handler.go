package handlers

import (
	"errors"
	"strconv"

	"coop-backoffice/internal/core/services"
	"coop-backoffice/internal/pkg/pagination"
	"coop-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SavingsHandler handles member savings endpoints
type SavingsHandler struct {
	savingsService *services.SavingsService
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(savingsService *services.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

// AmountRequest represents a deposit or withdrawal body
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Create handles savings account opening
// @Summary Open savings account
// @Description Open a savings account for a member, one per type
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateSavingsInput true "Savings data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /finance/savings [post]
func (h *SavingsHandler) Create(c *fiber.Ctx) error {
	var input services.CreateSavingsInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	savings, err := h.savingsService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrInvalidSavingsType):
			return response.BadRequest(c, "Invalid savings type")
		case errors.Is(err, services.ErrSavingsAlreadyExists):
			return response.Conflict(c, "Member already has a savings account of this type")
		default:
			return response.InternalServerError(c, "Failed to open savings account")
		}
	}

	return response.Created(c, "Savings account opened successfully", savings)
}

// List handles savings listing
// @Summary List savings accounts
// @Description List savings accounts with pagination
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param member_id query int false "Member filter"
// @Success 200 {object} response.Response
// @Router /finance/savings [get]
func (h *SavingsHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	memberID, _ := strconv.Atoi(c.Query("member_id", "0"))

	accounts, total, err := h.savingsService.List(c.Context(), params.Offset, params.Limit, uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list savings accounts")
	}

	return response.Success(c, "Savings accounts retrieved successfully", pagination.NewResponse(accounts, params, total))
}

// Get handles getting a single savings account
// @Summary Get savings account
// @Description Get a savings account by ID
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings account ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/savings/{id} [get]
func (h *SavingsHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid savings account ID")
	}

	savings, err := h.savingsService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSavingsNotFound) {
			return response.NotFound(c, "Savings account not found")
		}
		return response.InternalServerError(c, "Failed to get savings account")
	}

	return response.Success(c, "Savings account retrieved successfully", savings)
}

// Deposit handles deposits
// @Summary Deposit
// @Description Add funds to a savings account
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings account ID"
// @Param body body AmountRequest true "Amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/savings/{id}/deposit [post]
func (h *SavingsHandler) Deposit(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid savings account ID")
	}

	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	savings, err := h.savingsService.Deposit(c.Context(), uint(id), req.Amount)
	if err != nil {
		return h.mapSavingsError(c, err, "Failed to deposit")
	}

	return response.Success(c, "Deposit recorded successfully", savings)
}

// Withdraw handles withdrawals
// @Summary Withdraw
// @Description Remove funds without dropping below the minimum balance
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings account ID"
// @Param body body AmountRequest true "Amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/savings/{id}/withdraw [post]
func (h *SavingsHandler) Withdraw(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid savings account ID")
	}

	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	savings, err := h.savingsService.Withdraw(c.Context(), uint(id), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBelowMinimumBalance):
			return response.BadRequest(c, "Withdrawal would drop balance below the minimum")
		default:
			return h.mapSavingsError(c, err, "Failed to withdraw")
		}
	}

	return response.Success(c, "Withdrawal recorded successfully", savings)
}

// CapitalizeInterest handles interest capitalization
// @Summary Capitalize interest
// @Description Accrue interest since the last capitalization into the balance
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings account ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/savings/{id}/capitalize-interest [post]
func (h *SavingsHandler) CapitalizeInterest(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid savings account ID")
	}

	savings, interest, err := h.savingsService.CapitalizeInterest(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoInterestRate):
			return response.BadRequest(c, "Savings account has no interest rate")
		case errors.Is(err, services.ErrInterestPeriodTooShort):
			return response.BadRequest(c, "Interest was capitalized less than 30 days ago")
		default:
			return h.mapSavingsError(c, err, "Failed to capitalize interest")
		}
	}

	return response.Success(c, "Interest capitalized successfully", fiber.Map{
		"savings":  savings,
		"interest": interest,
	})
}

func (h *SavingsHandler) mapSavingsError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrSavingsNotFound):
		return response.NotFound(c, "Savings account not found")
	case errors.Is(err, services.ErrInvalidSavingsAmount):
		return response.BadRequest(c, "Amount must be positive")
	default:
		return response.InternalServerError(c, fallback)
	}
}
