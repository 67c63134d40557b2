package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Inventory
// ============================================================

// ProductCategory represents product_categories table
type ProductCategory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

// Stock status labels returned by Product.StockStatus
const (
	StockStatusOK  = "ok"
	StockStatusLow = "low"
	StockStatusOut = "out_of_stock"
)

// Product represents products table
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SKU           string          `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryID    *uint           `gorm:"index" json:"category_id"`
	Unit          string          `gorm:"size:20;default:'unit'" json:"unit"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"selling_price"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_stock"` // never below zero
	MinStockLevel decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"min_stock_level"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// StockStatus classifies the current stock against the minimum level.
func (p *Product) StockStatus() string {
	if p.CurrentStock.LessThanOrEqual(decimal.Zero) {
		return StockStatusOut
	}
	if p.CurrentStock.LessThanOrEqual(p.MinStockLevel) {
		return StockStatusLow
	}
	return StockStatusOK
}

// Movement types. "in" adds quantity, "out" subtracts it, "adjustment" sets
// the stock to the given quantity absolutely.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
)

// StockMovement represents stock_movements table (append-only journal)
type StockMovement struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	MovementType string          `gorm:"size:20;not null" json:"movement_type"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	StockAfter   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"stock_after"`
	Reason       string          `gorm:"size:200" json:"reason"`
	Reference    string          `gorm:"size:100" json:"reference"`
	SaleID       *uint           `gorm:"index" json:"sale_id"`
	CreatedBy    *uint           `json:"created_by"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
