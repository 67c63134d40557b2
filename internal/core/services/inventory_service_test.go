package services

import (
	"errors"
	"testing"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

func seedTestProduct(t *testing.T, svc *InventoryService, sku string) *models.Product {
	product, err := svc.CreateProduct(testContext(), &CreateProductInput{
		SKU:          sku,
		Name:         "Millet 50kg",
		SellingPrice: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestStockMovements(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewInventoryService(db)
	ctx := testContext()
	product := seedTestProduct(t, svc, "MIL-50")

	movement, err := svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    product.ID,
		MovementType: models.MovementTypeIn,
		Quantity:     decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("in: %v", err)
	}
	if !movement.StockAfter.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected stock after 10 got %s", movement.StockAfter)
	}

	movement, err = svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    product.ID,
		MovementType: models.MovementTypeOut,
		Quantity:     decimal.NewFromInt(4),
	})
	if err != nil {
		t.Fatalf("out: %v", err)
	}
	if !movement.StockAfter.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected stock after 6 got %s", movement.StockAfter)
	}

	// Stock never goes negative
	if _, err := svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    product.ID,
		MovementType: models.MovementTypeOut,
		Quantity:     decimal.NewFromInt(7),
	}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock got %v", err)
	}

	// Adjustment sets the level absolutely, zero included
	movement, err = svc.AdjustStock(ctx, product.ID, decimal.NewFromInt(20), "annual count", nil)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !movement.StockAfter.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected stock after 20 got %s", movement.StockAfter)
	}
	movement, err = svc.AdjustStock(ctx, product.ID, decimal.Zero, "write-off", nil)
	if err != nil {
		t.Fatalf("adjust zero: %v", err)
	}
	if !movement.StockAfter.IsZero() {
		t.Fatalf("expected stock after 0 got %s", movement.StockAfter)
	}
	if _, err := svc.AdjustStock(ctx, product.ID, decimal.NewFromInt(-1), "bad", nil); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity got %v", err)
	}

	if _, err := svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    product.ID,
		MovementType: "sideways",
		Quantity:     decimal.NewFromInt(1),
	}); !errors.Is(err, ErrInvalidMovementType) {
		t.Fatalf("expected ErrInvalidMovementType got %v", err)
	}

	movements, total, err := svc.ListMovements(ctx, product.ID, 0, 10)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if total != 4 || len(movements) != 4 {
		t.Fatalf("expected 4 movements got %d", total)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewInventoryService(db)
	seedTestProduct(t, svc, "MIL-50")

	_, err := svc.CreateProduct(testContext(), &CreateProductInput{SKU: "MIL-50", Name: "Other"})
	if !errors.Is(err, ErrSKUTaken) {
		t.Fatalf("expected ErrSKUTaken got %v", err)
	}
}

func TestLowStockProducts(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewInventoryService(db)
	ctx := testContext()

	low, err := svc.CreateProduct(ctx, &CreateProductInput{
		SKU:           "RIC-25",
		Name:          "Rice 25kg",
		MinStockLevel: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("create low: %v", err)
	}
	if _, err := svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    low.ID,
		MovementType: models.MovementTypeIn,
		Quantity:     decimal.NewFromInt(3),
	}); err != nil {
		t.Fatalf("stock low: %v", err)
	}

	ok, err := svc.CreateProduct(ctx, &CreateProductInput{
		SKU:           "SUG-01",
		Name:          "Sugar 1kg",
		MinStockLevel: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("create ok: %v", err)
	}
	if _, err := svc.ApplyMovement(ctx, &MovementInput{
		ProductID:    ok.ID,
		MovementType: models.MovementTypeIn,
		Quantity:     decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("stock ok: %v", err)
	}

	products, err := svc.LowStockProducts(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(products) != 1 || products[0].ID != low.ID {
		t.Fatalf("expected only the low product, got %d", len(products))
	}

	got, err := svc.GetProduct(ctx, low.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StockStatus() != "low" {
		t.Fatalf("expected low status got %s", got.StockStatus())
	}
}
