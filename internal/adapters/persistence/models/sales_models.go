package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Sales
// ============================================================

// Sale statuses
const (
	SaleStatusDraft     = "draft"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCredit   = "credit"
)

// Sale represents sales table
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SaleNumber    string          `gorm:"size:20;uniqueIndex;not null" json:"sale_number"` // VEN-YYYYMM-NNNN
	MemberID      *uint           `gorm:"index" json:"member_id"`
	Status        string          `gorm:"size:20;not null;default:'draft';index" json:"status"`
	SaleDate      time.Time       `gorm:"not null" json:"sale_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	PaymentMethod string          `gorm:"size:20;default:'cash'" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     *uint           `json:"created_by"`
	CompletedAt   *time.Time      `json:"completed_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Member *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Items  []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// ComputeTotal sums item line totals.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// SaleItem represents sale_items table
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}

// LineTotal returns quantity x unit price.
func (i *SaleItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}
