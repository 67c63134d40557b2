package services

import (
	"context"
	"errors"
	"log"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory errors
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSKUTaken            = errors.New("sku already in use")
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// InventoryService manages products and the stock movement journal
type InventoryService struct {
	db *gorm.DB
}

// NewInventoryService creates a new inventory service
func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// ============================================================
// Categories
// ============================================================

// CreateCategory creates a product category
func (s *InventoryService) CreateCategory(ctx context.Context, name, description string) (*models.ProductCategory, error) {
	category := &models.ProductCategory{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists all categories
func (s *InventoryService) ListCategories(ctx context.Context) ([]*models.ProductCategory, error) {
	var categories []*models.ProductCategory
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// ============================================================
// Products
// ============================================================

// CreateProductInput represents product creation input
type CreateProductInput struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	CategoryID    *uint           `json:"category_id"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

// UpdateProductInput represents product update input
type UpdateProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	CategoryID    *uint            `json:"category_id"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level"`
	IsActive      *bool            `json:"is_active"`
}

// CreateProduct creates a product with zero stock
func (s *InventoryService) CreateProduct(ctx context.Context, input *CreateProductInput) (*models.Product, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", input.SKU).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSKUTaken
	}

	if input.CategoryID != nil {
		var category models.ProductCategory
		if err := s.db.WithContext(ctx).Where("id = ?", *input.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	unit := input.Unit
	if unit == "" {
		unit = "unit"
	}

	product := &models.Product{
		SKU:           input.SKU,
		Name:          input.Name,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		Unit:          unit,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
		CurrentStock:  decimal.Zero,
		MinStockLevel: input.MinStockLevel,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Product created: %s (%s)", product.Name, product.SKU)
	return product, nil
}

// GetProduct gets a product by ID
func (s *InventoryService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates product fields. Stock only moves through movements.
func (s *InventoryService) UpdateProduct(ctx context.Context, id uint, input *UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.PurchasePrice != nil {
		product.PurchasePrice = *input.PurchasePrice
	}
	if input.SellingPrice != nil {
		product.SellingPrice = *input.SellingPrice
	}
	if input.MinStockLevel != nil {
		product.MinStockLevel = *input.MinStockLevel
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft deletes a product
func (s *InventoryService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(product).Error
}

// ListProducts lists products with pagination and optional search
func (s *InventoryService) ListProducts(ctx context.Context, offset, limit int, search string, lowStockOnly bool) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if lowStockOnly {
		query = query.Where("current_stock <= min_stock_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Category").Order("name ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ============================================================
// Stock movements
// ============================================================

// MovementInput represents a stock movement request
type MovementInput struct {
	ProductID    uint            `json:"product_id" validate:"required"`
	MovementType string          `json:"movement_type" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	Reason       string          `json:"reason"`
	Reference    string          `json:"reference"`
	SaleID       *uint           `json:"-"`
	CreatedBy    *uint           `json:"-"`
}

// ApplyMovement records a stock movement and updates the product stock:
// "in" adds the quantity, "out" subtracts it (never below zero),
// "adjustment" sets the stock to the quantity absolutely.
func (s *InventoryService) ApplyMovement(ctx context.Context, input *MovementInput) (*models.StockMovement, error) {
	switch input.MovementType {
	case models.MovementTypeIn, models.MovementTypeOut:
		if !input.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
	case models.MovementTypeAdjustment:
		if input.Quantity.IsNegative() {
			return nil, ErrInvalidQuantity
		}
	default:
		return nil, ErrInvalidMovementType
	}

	var movement *models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.applyMovementTx(tx, input, &movement)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Stock movement: product %d %s %s", input.ProductID, input.MovementType, input.Quantity.StringFixed(2))
	return movement, nil
}

// applyMovementTx runs the movement inside an existing transaction. Used
// directly by sale completion so the whole sale stays atomic.
func (s *InventoryService) applyMovementTx(tx *gorm.DB, input *MovementInput, out **models.StockMovement) error {
	var product models.Product
	if err := models.ForUpdate(tx).Where("id = ?", input.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	var newStock decimal.Decimal
	switch input.MovementType {
	case models.MovementTypeIn:
		newStock = product.CurrentStock.Add(input.Quantity)
	case models.MovementTypeOut:
		newStock = product.CurrentStock.Sub(input.Quantity)
		if newStock.IsNegative() {
			return ErrInsufficientStock
		}
	case models.MovementTypeAdjustment:
		newStock = input.Quantity
	}

	movement := &models.StockMovement{
		ProductID:    input.ProductID,
		MovementType: input.MovementType,
		Quantity:     input.Quantity,
		StockAfter:   newStock,
		Reason:       input.Reason,
		Reference:    input.Reference,
		SaleID:       input.SaleID,
		CreatedBy:    input.CreatedBy,
	}
	if err := tx.Create(movement).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("current_stock", newStock).Error; err != nil {
		return err
	}

	*out = movement
	return nil
}

// AdjustStock sets the product stock to an absolute quantity
func (s *InventoryService) AdjustStock(ctx context.Context, productID uint, quantity decimal.Decimal, reason string, createdBy *uint) (*models.StockMovement, error) {
	return s.ApplyMovement(ctx, &MovementInput{
		ProductID:    productID,
		MovementType: models.MovementTypeAdjustment,
		Quantity:     quantity,
		Reason:       reason,
		CreatedBy:    createdBy,
	})
}

// ListMovements lists movements for a product, newest first
func (s *InventoryService) ListMovements(ctx context.Context, productID uint, offset, limit int) ([]*models.StockMovement, int64, error) {
	var movements []*models.StockMovement
	var total int64

	query := s.db.WithContext(ctx).Model(&models.StockMovement{}).Where("product_id = ?", productID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// LowStockProducts returns active products at or below their minimum level
func (s *InventoryService) LowStockProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("current_stock <= min_stock_level").
		Order("current_stock ASC").
		Find(&products).Error
	return products, err
}
