package services

import (
	"context"
	"errors"
	"log"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sales errors
var (
	ErrSaleNotFound          = errors.New("sale not found")
	ErrSaleHasNoItems        = errors.New("sale has no items")
	ErrInvalidSaleTransition = errors.New("invalid sale status transition")
	ErrInvalidSaleItem       = errors.New("sale item quantity and price must be positive")
)

// SalesService manages the sales workflow
type SalesService struct {
	db               *gorm.DB
	inventoryService *InventoryService
	ledgerService    *LedgerService
}

// NewSalesService creates a new sales service
func NewSalesService(db *gorm.DB, inventoryService *InventoryService, ledgerService *LedgerService) *SalesService {
	return &SalesService{
		db:               db,
		inventoryService: inventoryService,
		ledgerService:    ledgerService,
	}
}

// SaleItemInput represents one sale line
type SaleItemInput struct {
	ProductID uint             `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleInput represents a sale draft
type CreateSaleInput struct {
	MemberID      *uint           `json:"member_id"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	Items         []SaleItemInput `json:"items" validate:"required"`
	CreatedBy     *uint           `json:"-"`
}

// Create registers a draft sale. Items default to the product selling price
// when no unit price is given. Stock moves at completion, not here.
func (s *SalesService) Create(ctx context.Context, input *CreateSaleInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, ErrSaleHasNoItems
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}

	now := time.Now()
	var sale *models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.NextSaleNumber(tx, now)
		if err != nil {
			return err
		}

		sale = &models.Sale{
			SaleNumber:    number,
			MemberID:      input.MemberID,
			Status:        models.SaleStatusDraft,
			SaleDate:      now,
			PaymentMethod: paymentMethod,
			Notes:         input.Notes,
			CreatedBy:     input.CreatedBy,
			TotalAmount:   decimal.Zero,
		}
		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for _, itemInput := range input.Items {
			if !itemInput.Quantity.IsPositive() {
				return ErrInvalidSaleItem
			}

			var product models.Product
			if err := tx.Where("id = ?", itemInput.ProductID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			unitPrice := product.SellingPrice
			if itemInput.UnitPrice != nil {
				unitPrice = *itemInput.UnitPrice
			}
			if unitPrice.IsNegative() {
				return ErrInvalidSaleItem
			}

			item := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: itemInput.ProductID,
				Quantity:  itemInput.Quantity,
				UnitPrice: unitPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total = total.Add(item.LineTotal())
		}

		sale.TotalAmount = total
		return tx.Model(&models.Sale{}).Where("id = ?", sale.ID).
			Update("total_amount", total).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Sale created: %s (%s)", sale.SaleNumber, sale.TotalAmount.StringFixed(2))
	return s.GetByID(ctx, sale.ID)
}

// GetByID gets a sale with items and member preloaded
func (s *SalesService) GetByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Member").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// List lists sales with pagination, optionally filtered by status or member
func (s *SalesService) List(ctx context.Context, offset, limit int, status string, memberID uint) ([]*models.Sale, int64, error) {
	var sales []*models.Sale
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Sale{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if memberID != 0 {
		query = query.Where("member_id = ?", memberID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items").Preload("Member").Order("id DESC").Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// Complete finalizes a draft sale: stock leaves inventory for every item
// inside one transaction, then the revenue posting is recorded.
func (s *SalesService) Complete(ctx context.Context, id uint) (*models.Sale, error) {
	sale, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != models.SaleStatusDraft {
		return nil, ErrInvalidSaleTransition
	}
	if len(sale.Items) == 0 {
		return nil, ErrSaleHasNoItems
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			var movement *models.StockMovement
			err := s.inventoryService.applyMovementTx(tx, &MovementInput{
				ProductID:    item.ProductID,
				MovementType: models.MovementTypeOut,
				Quantity:     item.Quantity,
				Reason:       "Sale " + sale.SaleNumber,
				Reference:    sale.SaleNumber,
				SaleID:       &sale.ID,
				CreatedBy:    sale.CreatedBy,
			}, &movement)
			if err != nil {
				return err
			}
		}

		return tx.Model(&models.Sale{}).Where("id = ?", sale.ID).
			Updates(map[string]interface{}{
				"status":       models.SaleStatusCompleted,
				"completed_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	sale.Status = models.SaleStatusCompleted
	sale.CompletedAt = &now

	s.postSaleEntry(ctx, sale)

	log.Printf("✅ Sale completed: %s", sale.SaleNumber)
	return sale, nil
}

// Cancel cancels a draft sale
func (s *SalesService) Cancel(ctx context.Context, id uint) (*models.Sale, error) {
	sale, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != models.SaleStatusDraft {
		return nil, ErrInvalidSaleTransition
	}

	sale.Status = models.SaleStatusCancelled
	if err := s.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).
		Update("status", models.SaleStatusCancelled).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// postSaleEntry records the revenue side of a completed sale. Skipped with
// a warning when the system accounts are not seeded.
func (s *SalesService) postSaleEntry(ctx context.Context, sale *models.Sale) {
	if s.ledgerService == nil || !sale.TotalAmount.IsPositive() {
		return
	}

	cash, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeCash)
	if err != nil {
		log.Printf("⚠️ Sale posting skipped for %s: %v", sale.SaleNumber, err)
		return
	}
	revenue, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeSalesRevenue)
	if err != nil {
		log.Printf("⚠️ Sale posting skipped for %s: %v", sale.SaleNumber, err)
		return
	}

	_, err = s.ledgerService.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Source:          models.SourceSale,
		Amount:          sale.TotalAmount,
		DebitAccountID:  cash.ID,
		CreditAccountID: revenue.ID,
		MemberID:        sale.MemberID,
		SaleID:          &sale.ID,
		Reference:       sale.SaleNumber,
		Description:     "Sale " + sale.SaleNumber,
	})
	if err != nil {
		log.Printf("⚠️ Sale posting failed for %s: %v", sale.SaleNumber, err)
	}
}
