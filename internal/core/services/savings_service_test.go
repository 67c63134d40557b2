package services

import (
	"errors"
	"testing"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

func TestSavingsDepositWithdraw(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewSavingsService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	savings, err := svc.Create(ctx, &CreateSavingsInput{
		MemberID:       member.ID,
		MinimumBalance: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if savings.SavingsType != models.SavingsTypeRegular {
		t.Fatalf("expected regular type got %s", savings.SavingsType)
	}

	savings, err = svc.Deposit(ctx, savings.ID, decimal.NewFromInt(2000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !savings.CurrentBalance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected balance 2000 got %s", savings.CurrentBalance)
	}

	// Would leave 400, below the 500 floor
	if _, err := svc.Withdraw(ctx, savings.ID, decimal.NewFromInt(1600)); !errors.Is(err, ErrBelowMinimumBalance) {
		t.Fatalf("expected ErrBelowMinimumBalance got %v", err)
	}

	savings, err = svc.Withdraw(ctx, savings.ID, decimal.NewFromInt(1500))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !savings.CurrentBalance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance 500 got %s", savings.CurrentBalance)
	}

	if _, err := svc.Deposit(ctx, savings.ID, decimal.Zero); !errors.Is(err, ErrInvalidSavingsAmount) {
		t.Fatalf("expected ErrInvalidSavingsAmount got %v", err)
	}
}

func TestSavingsOnePerMemberAndType(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewSavingsService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	if _, err := svc.Create(ctx, &CreateSavingsInput{MemberID: member.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, &CreateSavingsInput{MemberID: member.ID}); !errors.Is(err, ErrSavingsAlreadyExists) {
		t.Fatalf("expected ErrSavingsAlreadyExists got %v", err)
	}
	// A different type is allowed
	if _, err := svc.Create(ctx, &CreateSavingsInput{MemberID: member.ID, SavingsType: models.SavingsTypeTerm}); err != nil {
		t.Fatalf("create term: %v", err)
	}
	if _, err := svc.Create(ctx, &CreateSavingsInput{MemberID: member.ID, SavingsType: "gold"}); !errors.Is(err, ErrInvalidSavingsType) {
		t.Fatalf("expected ErrInvalidSavingsType got %v", err)
	}
}

func TestCapitalizeInterest(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewSavingsService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	// Opened 40 days ago, 100000 at 12% annual
	savings := &models.MemberSavings{
		MemberID:       member.ID,
		SavingsType:    models.SavingsTypeRegular,
		CurrentBalance: decimal.NewFromInt(100000),
		InterestRate:   decimal.NewFromInt(12),
		OpeningDate:    time.Now().Add(-40*24*time.Hour - time.Hour),
	}
	if err := db.Create(savings).Error; err != nil {
		t.Fatalf("seed savings: %v", err)
	}

	updated, interest, err := svc.CapitalizeInterest(ctx, savings.ID)
	if err != nil {
		t.Fatalf("capitalize: %v", err)
	}

	// 100000 x 12% x 40/365
	if !interest.Equal(decimal.NewFromFloat(1315.07)) {
		t.Fatalf("expected interest 1315.07 got %s", interest)
	}
	if !updated.CurrentBalance.Equal(decimal.NewFromFloat(101315.07)) {
		t.Fatalf("expected balance 101315.07 got %s", updated.CurrentBalance)
	}
	if updated.LastInterestDate == nil {
		t.Fatalf("expected last interest date set")
	}

	// A second run right away is inside the 30-day gate
	if _, _, err := svc.CapitalizeInterest(ctx, savings.ID); !errors.Is(err, ErrInterestPeriodTooShort) {
		t.Fatalf("expected ErrInterestPeriodTooShort got %v", err)
	}
}

func TestCapitalizeInterestRequiresRate(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewSavingsService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	savings := &models.MemberSavings{
		MemberID:       member.ID,
		SavingsType:    models.SavingsTypeRegular,
		CurrentBalance: decimal.NewFromInt(100000),
		OpeningDate:    time.Now().AddDate(0, -2, 0),
	}
	if err := db.Create(savings).Error; err != nil {
		t.Fatalf("seed savings: %v", err)
	}

	if _, _, err := svc.CapitalizeInterest(ctx, savings.ID); !errors.Is(err, ErrNoInterestRate) {
		t.Fatalf("expected ErrNoInterestRate got %v", err)
	}
}

func TestCapitalizeInterestPostsLedger(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ledger := NewLedgerService(db)
	svc := NewSavingsService(db, ledger)
	ctx := testContext()

	seedSystemAccounts(t, db)
	member := seedTestMember(t, db)

	savings := &models.MemberSavings{
		MemberID:       member.ID,
		SavingsType:    models.SavingsTypeRegular,
		CurrentBalance: decimal.NewFromInt(100000),
		InterestRate:   decimal.NewFromInt(12),
		OpeningDate:    time.Now().Add(-40*24*time.Hour - time.Hour),
	}
	if err := db.Create(savings).Error; err != nil {
		t.Fatalf("seed savings: %v", err)
	}

	if _, _, err := svc.CapitalizeInterest(ctx, savings.ID); err != nil {
		t.Fatalf("capitalize: %v", err)
	}

	var txn models.FinancialTransaction
	if err := db.Where("source = ?", models.SourceOther).First(&txn).Error; err != nil {
		t.Fatalf("expected interest transaction: %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromFloat(1315.07)) {
		t.Fatalf("expected posted amount 1315.07 got %s", txn.Amount)
	}
}
