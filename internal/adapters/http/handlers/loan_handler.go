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

// LoanHandler handles member loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// PaymentRequest represents a loan repayment body
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Create handles loan applications
// @Summary Create loan application
// @Description Register a loan application for a member
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLoanInput true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /finance/loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var input services.CreateLoanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	loan, err := h.loanService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrInvalidLoanAmount):
			return response.BadRequest(c, "Loan amount must be positive")
		case errors.Is(err, services.ErrInvalidLoanTerm):
			return response.BadRequest(c, "Loan term must be positive")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Loan application created successfully", loan)
}

// List handles loan listing
// @Summary List loans
// @Description List loans with pagination and filters
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Status filter"
// @Param member_id query int false "Member filter"
// @Success 200 {object} response.Response
// @Router /finance/loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")
	memberID, _ := strconv.Atoi(c.Query("member_id", "0"))

	loans, total, err := h.loanService.List(c.Context(), params.Offset, params.Limit, status, uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(loans, params, total))
}

// Get handles getting a single loan
// @Summary Get loan
// @Description Get a loan with its computed monthly payment
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan":            loan,
		"monthly_payment": loan.MonthlyPayment(),
	})
}

// Approve handles loan approval
// @Summary Approve loan
// @Description Approve a pending loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body services.ApproveLoanInput false "Approval data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var input services.ApproveLoanInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if userID, ok := c.Locals("userID").(uint); ok {
		input.ApprovedBy = userID
	}

	loan, err := h.loanService.Approve(c.Context(), uint(id), &input)
	if err != nil {
		return h.mapLoanError(c, err, "Failed to approve loan")
	}

	return response.Success(c, "Loan approved successfully", loan)
}

// Disburse handles loan disbursement
// @Summary Disburse loan
// @Description Pay out an approved loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Disburse(c.Context(), uint(id))
	if err != nil {
		return h.mapLoanError(c, err, "Failed to disburse loan")
	}

	return response.Success(c, "Loan disbursed successfully", loan)
}

// Activate handles moving a disbursed loan into repayment
// @Summary Activate loan
// @Description Move a disbursed loan into repayment
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/activate [post]
func (h *LoanHandler) Activate(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Activate(c.Context(), uint(id))
	if err != nil {
		return h.mapLoanError(c, err, "Failed to activate loan")
	}

	return response.Success(c, "Loan activated successfully", loan)
}

// RecordPayment handles loan repayments
// @Summary Record loan payment
// @Description Apply a repayment to a disbursed or active loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body PaymentRequest true "Payment amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/record-payment [post]
func (h *LoanHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.RecordPayment(c.Context(), uint(id), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentTooLarge):
			return response.BadRequest(c, "Payment exceeds outstanding balance")
		default:
			return h.mapLoanError(c, err, "Failed to record payment")
		}
	}

	return response.Success(c, "Payment recorded successfully", loan)
}

// Cancel handles cancelling a pending loan
// @Summary Cancel loan
// @Description Cancel a pending loan application
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/cancel [post]
func (h *LoanHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Cancel(c.Context(), uint(id))
	if err != nil {
		return h.mapLoanError(c, err, "Failed to cancel loan")
	}

	return response.Success(c, "Loan cancelled successfully", loan)
}

// MarkDefaulted handles flagging a loan as defaulted
// @Summary Mark loan defaulted
// @Description Flag a disbursed or active loan as defaulted
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finance/loans/{id}/default [post]
func (h *LoanHandler) MarkDefaulted(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.MarkDefaulted(c.Context(), uint(id))
	if err != nil {
		return h.mapLoanError(c, err, "Failed to mark loan as defaulted")
	}

	return response.Success(c, "Loan marked as defaulted", loan)
}

func (h *LoanHandler) mapLoanError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, services.ErrInvalidLoanTransition):
		return response.BadRequest(c, "Invalid loan status transition")
	case errors.Is(err, services.ErrInvalidLoanAmount):
		return response.BadRequest(c, "Amount must be positive")
	default:
		return response.InternalServerError(c, fallback)
	}
}
