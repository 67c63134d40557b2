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

// InventoryHandler handles product and stock endpoints
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// CategoryRequest represents category creation body
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AdjustStockRequest represents stock adjustment body
type AdjustStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// CreateCategory handles category creation
// @Summary Create category
// @Description Create a product category
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/categories [post]
func (h *InventoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	category, err := h.inventoryService.CreateCategory(c.Context(), req.Name, req.Description)
	if err != nil {
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, "Category created successfully", category)
}

// ListCategories handles category listing
// @Summary List categories
// @Description List all product categories
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/categories [get]
func (h *InventoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.inventoryService.ListCategories(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}
	return response.Success(c, "Categories retrieved successfully", categories)
}

// CreateProduct handles product creation
// @Summary Create product
// @Description Create a product with zero stock
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateProductInput true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /inventory/products [post]
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.SKU == "" || input.Name == "" {
		return response.BadRequest(c, "SKU and name are required")
	}

	product, err := h.inventoryService.CreateProduct(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSKUTaken):
			return response.Conflict(c, "SKU already in use")
		case errors.Is(err, services.ErrCategoryNotFound):
			return response.NotFound(c, "Category not found")
		default:
			return response.InternalServerError(c, "Failed to create product")
		}
	}

	return response.Created(c, "Product created successfully", product)
}

// ListProducts handles product listing
// @Summary List products
// @Description List products with pagination, search and low-stock filter
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Name or SKU search"
// @Param low_stock query bool false "Only products at or below minimum stock"
// @Success 200 {object} response.Response
// @Router /inventory/products [get]
func (h *InventoryHandler) ListProducts(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := c.Query("search")
	lowStock := c.QueryBool("low_stock", false)

	products, total, err := h.inventoryService.ListProducts(c.Context(), params.Offset, params.Limit, search, lowStock)
	if err != nil {
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved successfully", pagination.NewResponse(products, params, total))
}

// GetProduct handles getting a single product
// @Summary Get product
// @Description Get a product with its stock status
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/products/{id} [get]
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.inventoryService.GetProduct(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to get product")
	}

	return response.Success(c, "Product retrieved successfully", fiber.Map{
		"product":      product,
		"stock_status": product.StockStatus(),
	})
}

// UpdateProduct handles product updates
// @Summary Update product
// @Description Update product fields, stock moves only through movements
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body services.UpdateProductInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/products/{id} [put]
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.inventoryService.UpdateProduct(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to update product")
	}

	return response.Success(c, "Product updated successfully", product)
}

// DeleteProduct handles product deletion
// @Summary Delete product
// @Description Soft delete a product
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/products/{id} [delete]
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	if err := h.inventoryService.DeleteProduct(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to delete product")
	}

	return response.Success(c, "Product deleted successfully", nil)
}

// CreateMovement handles stock movements
// @Summary Record stock movement
// @Description Record an in, out or adjustment movement
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MovementInput true "Movement data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var input services.MovementInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ProductID == 0 {
		return response.BadRequest(c, "Product ID is required")
	}

	if userID, ok := c.Locals("userID").(uint); ok {
		input.CreatedBy = &userID
	}

	movement, err := h.inventoryService.ApplyMovement(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, services.ErrInvalidMovementType):
			return response.BadRequest(c, "Invalid movement type")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be positive")
		case errors.Is(err, services.ErrInsufficientStock):
			return response.BadRequest(c, "Insufficient stock")
		default:
			return response.InternalServerError(c, "Failed to record movement")
		}
	}

	return response.Created(c, "Movement recorded successfully", movement)
}

// AdjustStock handles absolute stock adjustments
// @Summary Adjust stock
// @Description Set the product stock to an absolute quantity
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body AdjustStockRequest true "Adjustment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/products/{id}/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	var req AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var createdBy *uint
	if userID, ok := c.Locals("userID").(uint); ok {
		createdBy = &userID
	}

	movement, err := h.inventoryService.AdjustStock(c.Context(), uint(id), req.Quantity, req.Reason, createdBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity cannot be negative")
		default:
			return response.InternalServerError(c, "Failed to adjust stock")
		}
	}

	return response.Success(c, "Stock adjusted successfully", movement)
}

// ListMovements handles listing a product's movements
// @Summary List product movements
// @Description List stock movements for a product, newest first
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	params := pagination.GetParams(c)
	movements, total, err := h.inventoryService.ListMovements(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list movements")
	}

	return response.Success(c, "Movements retrieved successfully", pagination.NewResponse(movements, params, total))
}

// LowStock handles the low stock report
// @Summary Low stock report
// @Description Active products at or below their minimum stock level
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.inventoryService.LowStockProducts(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get low stock report")
	}
	return response.Success(c, "Low stock report retrieved successfully", products)
}
