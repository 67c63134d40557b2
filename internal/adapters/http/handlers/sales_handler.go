package handlers

import (
	"errors"
	"strconv"

	"coop-backoffice/internal/core/services"
	"coop-backoffice/internal/pkg/pagination"
	"coop-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SalesHandler handles sales endpoints
type SalesHandler struct {
	salesService *services.SalesService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(salesService *services.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// Create handles sale creation
// @Summary Create sale
// @Description Register a draft sale with its items
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateSaleInput true "Sale data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var input services.CreateSaleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if userID, ok := c.Locals("userID").(uint); ok {
		input.CreatedBy = &userID
	}

	sale, err := h.salesService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSaleHasNoItems):
			return response.BadRequest(c, "Sale must have at least one item")
		case errors.Is(err, services.ErrInvalidSaleItem):
			return response.BadRequest(c, "Sale item quantity and price must be positive")
		case errors.Is(err, services.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		default:
			return response.InternalServerError(c, "Failed to create sale")
		}
	}

	return response.Created(c, "Sale created successfully", sale)
}

// List handles sale listing
// @Summary List sales
// @Description List sales with pagination and filters
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Status filter"
// @Param member_id query int false "Member filter"
// @Success 200 {object} response.Response
// @Router /sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")
	memberID, _ := strconv.Atoi(c.Query("member_id", "0"))

	sales, total, err := h.salesService.List(c.Context(), params.Offset, params.Limit, status, uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list sales")
	}

	return response.Success(c, "Sales retrieved successfully", pagination.NewResponse(sales, params, total))
}

// Get handles getting a single sale
// @Summary Get sale
// @Description Get a sale with its items
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sales/{id} [get]
func (h *SalesHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid sale ID")
	}

	sale, err := h.salesService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			return response.NotFound(c, "Sale not found")
		}
		return response.InternalServerError(c, "Failed to get sale")
	}

	return response.Success(c, "Sale retrieved successfully", sale)
}

// Complete handles sale completion
// @Summary Complete sale
// @Description Finalize a draft sale, move stock out and post revenue
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sales/{id}/complete [post]
func (h *SalesHandler) Complete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid sale ID")
	}

	sale, err := h.salesService.Complete(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSaleNotFound):
			return response.NotFound(c, "Sale not found")
		case errors.Is(err, services.ErrInvalidSaleTransition):
			return response.BadRequest(c, "Only draft sales can be completed")
		case errors.Is(err, services.ErrSaleHasNoItems):
			return response.BadRequest(c, "Sale has no items")
		case errors.Is(err, services.ErrInsufficientStock):
			return response.BadRequest(c, "Insufficient stock for one or more items")
		default:
			return response.InternalServerError(c, "Failed to complete sale")
		}
	}

	return response.Success(c, "Sale completed successfully", sale)
}

// Cancel handles sale cancellation
// @Summary Cancel sale
// @Description Cancel a draft sale
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sales/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid sale ID")
	}

	sale, err := h.salesService.Cancel(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSaleNotFound):
			return response.NotFound(c, "Sale not found")
		case errors.Is(err, services.ErrInvalidSaleTransition):
			return response.BadRequest(c, "Only draft sales can be cancelled")
		default:
			return response.InternalServerError(c, "Failed to cancel sale")
		}
	}

	return response.Success(c, "Sale cancelled successfully", sale)
}
