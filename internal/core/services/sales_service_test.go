package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

func newSalesFixture(t *testing.T, name string) (*SalesService, *InventoryService, *LedgerService, *models.Product) {
	db := setupTestDB(t, name)
	inventory := NewInventoryService(db)
	ledger := NewLedgerService(db)
	svc := NewSalesService(db, inventory, ledger)

	product := seedTestProduct(t, inventory, "MIL-50")
	if _, err := inventory.ApplyMovement(testContext(), &MovementInput{
		ProductID:    product.ID,
		MovementType: models.MovementTypeIn,
		Quantity:     decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("stock in: %v", err)
	}
	return svc, inventory, ledger, product
}

func TestSaleLifecycle(t *testing.T) {
	svc, inventory, _, product := newSalesFixture(t, t.Name())
	ctx := testContext()

	sale, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: product.ID, Quantity: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.Status != models.SaleStatusDraft {
		t.Fatalf("expected draft got %s", sale.Status)
	}
	expectedPrefix := fmt.Sprintf("VEN-%s-", time.Now().Format("200601"))
	if !strings.HasPrefix(sale.SaleNumber, expectedPrefix) {
		t.Fatalf("expected number prefix %s got %s", expectedPrefix, sale.SaleNumber)
	}

	// Items default to the product selling price: 3 x 500
	if !sale.TotalAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected total 1500 got %s", sale.TotalAmount)
	}

	// Stock does not move until completion
	before, err := inventory.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !before.CurrentStock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected stock 10 before completion got %s", before.CurrentStock)
	}

	sale, err = svc.Complete(ctx, sale.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if sale.Status != models.SaleStatusCompleted || sale.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp")
	}

	after, err := inventory.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !after.CurrentStock.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected stock 7 after completion got %s", after.CurrentStock)
	}

	// Completed sales cannot be completed or cancelled again
	if _, err := svc.Complete(ctx, sale.ID); !errors.Is(err, ErrInvalidSaleTransition) {
		t.Fatalf("expected transition error on double complete got %v", err)
	}
	if _, err := svc.Cancel(ctx, sale.ID); !errors.Is(err, ErrInvalidSaleTransition) {
		t.Fatalf("expected transition error on cancel completed got %v", err)
	}
}

func TestSaleCompletionInsufficientStock(t *testing.T) {
	svc, inventory, _, product := newSalesFixture(t, t.Name())
	ctx := testContext()

	sale, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: product.ID, Quantity: decimal.NewFromInt(11)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Complete(ctx, sale.ID); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock got %v", err)
	}

	// The failed completion leaves the sale in draft and the stock untouched
	reloaded, err := svc.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.SaleStatusDraft {
		t.Fatalf("expected draft after failed completion got %s", reloaded.Status)
	}
	stock, err := inventory.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !stock.CurrentStock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected stock 10 got %s", stock.CurrentStock)
	}
}

func TestSaleCompletionPostsRevenue(t *testing.T) {
	svc, _, ledger, product := newSalesFixture(t, t.Name())
	ctx := testContext()
	seedSystemAccounts(t, ledger.db)

	unitPrice := decimal.NewFromInt(600)
	sale, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: product.ID, Quantity: decimal.NewFromInt(2), UnitPrice: &unitPrice}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sale.TotalAmount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected total 1200 with price override got %s", sale.TotalAmount)
	}

	if _, err := svc.Complete(ctx, sale.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	cash, err := ledger.GetAccountByCode(ctx, models.AccountCodeCash)
	if err != nil {
		t.Fatalf("get cash: %v", err)
	}
	if !cash.CurrentBalance.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected cash 1200 got %s", cash.CurrentBalance)
	}
	revenue, err := ledger.GetAccountByCode(ctx, models.AccountCodeSalesRevenue)
	if err != nil {
		t.Fatalf("get revenue: %v", err)
	}
	if !revenue.BalanceDisplay().Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected revenue display 1200 got %s", revenue.BalanceDisplay())
	}

	var txn models.FinancialTransaction
	if err := ledger.db.Where("source = ?", models.SourceSale).First(&txn).Error; err != nil {
		t.Fatalf("expected sale transaction: %v", err)
	}
	if txn.SaleID == nil || *txn.SaleID != sale.ID {
		t.Fatalf("expected transaction linked to sale")
	}
}

func TestSaleValidation(t *testing.T) {
	svc, _, _, product := newSalesFixture(t, t.Name())
	ctx := testContext()

	if _, err := svc.Create(ctx, &CreateSaleInput{}); !errors.Is(err, ErrSaleHasNoItems) {
		t.Fatalf("expected ErrSaleHasNoItems got %v", err)
	}
	if _, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: product.ID, Quantity: decimal.Zero}},
	}); !errors.Is(err, ErrInvalidSaleItem) {
		t.Fatalf("expected ErrInvalidSaleItem got %v", err)
	}
	if _, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: 9999, Quantity: decimal.NewFromInt(1)}},
	}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound got %v", err)
	}
}

func TestSaleCancelDraft(t *testing.T) {
	svc, _, _, product := newSalesFixture(t, t.Name())
	ctx := testContext()

	sale, err := svc.Create(ctx, &CreateSaleInput{
		Items: []SaleItemInput{{ProductID: product.ID, Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, sale.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.SaleStatusCancelled {
		t.Fatalf("expected cancelled got %s", cancelled.Status)
	}
	if _, err := svc.Complete(ctx, sale.ID); !errors.Is(err, ErrInvalidSaleTransition) {
		t.Fatalf("expected transition error on complete cancelled got %v", err)
	}
}
