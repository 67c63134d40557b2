package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

func TestPostTransactionMovesBalances(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)

	txn, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(1200),
		DebitAccountID:  bank.ID,
		CreditAccountID: fees.ID,
		Description:     "Annual membership fees",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if txn.Source != models.SourceManual {
		t.Fatalf("expected manual source got %s", txn.Source)
	}

	debit, err := svc.GetAccount(ctx, bank.ID)
	if err != nil {
		t.Fatalf("get debit: %v", err)
	}
	credit, err := svc.GetAccount(ctx, fees.ID)
	if err != nil {
		t.Fatalf("get credit: %v", err)
	}

	if !debit.CurrentBalance.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected debit balance 1200 got %s", debit.CurrentBalance)
	}
	if !credit.CurrentBalance.Equal(decimal.NewFromInt(-1200)) {
		t.Fatalf("expected credit balance -1200 got %s", credit.CurrentBalance)
	}

	// Both sides display as 1200 in their natural sign
	if !debit.BalanceDisplay().Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected asset display 1200 got %s", debit.BalanceDisplay())
	}
	if !credit.BalanceDisplay().Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected revenue display 1200 got %s", credit.BalanceDisplay())
	}
}

func TestPostTransactionValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)

	_, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(-5),
		DebitAccountID:  bank.ID,
		CreditAccountID: fees.ID,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount got %v", err)
	}

	_, err = svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(5),
		DebitAccountID:  bank.ID,
		CreditAccountID: bank.ID,
	})
	if !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount got %v", err)
	}

	_, err = svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(5),
		DebitAccountID:  bank.ID,
		CreditAccountID: 9999,
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound got %v", err)
	}
}

func TestManualPostToSystemAccountRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	seedSystemAccounts(t, db)
	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)

	cash, err := svc.GetAccountByCode(ctx, models.AccountCodeCash)
	if err != nil {
		t.Fatalf("get cash: %v", err)
	}

	_, err = svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeTransfer,
		Amount:          decimal.NewFromInt(100),
		DebitAccountID:  bank.ID,
		CreditAccountID: cash.ID,
	})
	if !errors.Is(err, ErrSystemAccountManualPost) {
		t.Fatalf("expected ErrSystemAccountManualPost got %v", err)
	}

	// Subsystem sources may touch system accounts
	_, err = svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeTransfer,
		Source:          models.SourceLoan,
		Amount:          decimal.NewFromInt(100),
		DebitAccountID:  bank.ID,
		CreditAccountID: cash.ID,
	})
	if err != nil {
		t.Fatalf("loan source post: %v", err)
	}
}

func TestTransactionNumberSequence(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)

	period := time.Now().Format("200601")
	for i := 1; i <= 3; i++ {
		txn, err := svc.PostTransaction(ctx, &PostTransactionInput{
			TransactionType: models.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(10),
			DebitAccountID:  bank.ID,
			CreditAccountID: fees.ID,
		})
		if err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
		expected := fmt.Sprintf("TXN-%s-%04d", period, i)
		if txn.TransactionNumber != expected {
			t.Fatalf("expected number %s got %s", expected, txn.TransactionNumber)
		}
	}
}

func TestValidateTransactionOnce(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)

	txn, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(50),
		DebitAccountID:  bank.ID,
		CreditAccountID: fees.ID,
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	validated, err := svc.ValidateTransaction(ctx, txn.ID, 7)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.ValidatedBy == nil || *validated.ValidatedBy != 7 {
		t.Fatalf("expected validator 7")
	}

	_, err = svc.ValidateTransaction(ctx, txn.ID, 8)
	if !errors.Is(err, ErrAlreadyValidated) {
		t.Fatalf("expected ErrAlreadyValidated got %v", err)
	}
}

func TestAccountManagement(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	_, err := svc.CreateAccount(ctx, &CreateAccountInput{Code: "9000", Name: "Misc", AccountType: "weird"})
	if !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType got %v", err)
	}

	account, err := svc.CreateAccount(ctx, &CreateAccountInput{Code: "9000", Name: "Misc", AccountType: models.AccountTypeExpense})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.CreateAccount(ctx, &CreateAccountInput{Code: "9000", Name: "Other", AccountType: models.AccountTypeExpense})
	if !errors.Is(err, ErrAccountCodeTaken) {
		t.Fatalf("expected ErrAccountCodeTaken got %v", err)
	}

	if err := svc.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	system := seedTestAccount(t, db, models.AccountCodeCash, "Cash", models.AccountTypeAsset, true)
	if err := svc.DeleteAccount(ctx, system.ID); !errors.Is(err, ErrSystemAccountProtected) {
		t.Fatalf("expected ErrSystemAccountProtected got %v", err)
	}
}

func TestBalanceSheetAndIncomeStatement(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)
	rent := seedTestAccount(t, db, "5100", "Rent", models.AccountTypeExpense, false)

	if _, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(1000),
		DebitAccountID:  bank.ID,
		CreditAccountID: fees.ID,
	}); err != nil {
		t.Fatalf("income post: %v", err)
	}
	if _, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(300),
		DebitAccountID:  rent.ID,
		CreditAccountID: bank.ID,
	}); err != nil {
		t.Fatalf("expense post: %v", err)
	}

	sheet, err := svc.GetBalanceSheet(ctx)
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if !sheet.TotalAssets.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected total assets 700 got %s", sheet.TotalAssets)
	}

	stmt, err := svc.GetIncomeStatement(ctx)
	if err != nil {
		t.Fatalf("income statement: %v", err)
	}
	if !stmt.TotalRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected revenue 1000 got %s", stmt.TotalRevenue)
	}
	if !stmt.TotalExpenses.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected expenses 300 got %s", stmt.TotalExpenses)
	}
	if !stmt.NetIncome.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected net income 700 got %s", stmt.NetIncome)
	}
}

func TestTransactionStats(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLedgerService(db)
	ctx := testContext()

	bank := seedTestAccount(t, db, "1010", "Bank", models.AccountTypeAsset, false)
	fees := seedTestAccount(t, db, "4200", "Membership fees", models.AccountTypeRevenue, false)

	txn, err := svc.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(250),
		DebitAccountID:  bank.ID,
		CreditAccountID: fees.ID,
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := svc.ValidateTransaction(ctx, txn.ID, 1); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := svc.ReconcileTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	stats, err := svc.GetTransactionStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCount != 1 || stats.ValidatedCount != 1 || stats.ReconciledCount != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if !stats.TotalAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total amount 250 got %s", stats.TotalAmount)
	}
}
