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

func TestLoanLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLoanService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	loan, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(120000),
		TermMonths:      12,
		Purpose:         "Seed purchase",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if loan.Status != models.LoanStatusPending {
		t.Fatalf("expected pending got %s", loan.Status)
	}
	expectedPrefix := fmt.Sprintf("PRT-%s-", time.Now().Format("2006"))
	if !strings.HasPrefix(loan.LoanNumber, expectedPrefix) {
		t.Fatalf("expected number prefix %s got %s", expectedPrefix, loan.LoanNumber)
	}

	loan, err = svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if loan.ApprovedAmount == nil || !loan.ApprovedAmount.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("expected approved amount to default to requested")
	}

	// Zero rate installment is exactly principal / term
	if !loan.MonthlyPayment().Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected monthly payment 10000 got %s", loan.MonthlyPayment())
	}

	loan, err = svc.Disburse(ctx, loan.ID)
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if !loan.OutstandingBalance.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("expected outstanding 120000 got %s", loan.OutstandingBalance)
	}
	if loan.MaturityDate == nil {
		t.Fatalf("expected maturity date set")
	}

	loan, err = svc.Activate(ctx, loan.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	loan, err = svc.RecordPayment(ctx, loan.ID, decimal.NewFromInt(50000))
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if loan.Status != models.LoanStatusActive {
		t.Fatalf("expected active after partial payment got %s", loan.Status)
	}

	loan, err = svc.RecordPayment(ctx, loan.ID, decimal.NewFromInt(70000))
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if loan.Status != models.LoanStatusCompleted {
		t.Fatalf("expected completed got %s", loan.Status)
	}
	if !loan.OutstandingBalance.IsZero() {
		t.Fatalf("expected zero balance got %s", loan.OutstandingBalance)
	}
}

func TestLoanInvalidTransitions(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLoanService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	loan, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(5000),
		TermMonths:      6,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Disburse(ctx, loan.ID); !errors.Is(err, ErrInvalidLoanTransition) {
		t.Fatalf("expected transition error on disburse pending got %v", err)
	}
	if _, err := svc.RecordPayment(ctx, loan.ID, decimal.NewFromInt(100)); !errors.Is(err, ErrInvalidLoanTransition) {
		t.Fatalf("expected transition error on pay pending got %v", err)
	}

	if _, err := svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1}); !errors.Is(err, ErrInvalidLoanTransition) {
		t.Fatalf("expected transition error on double approve got %v", err)
	}
	if _, err := svc.Cancel(ctx, loan.ID); !errors.Is(err, ErrInvalidLoanTransition) {
		t.Fatalf("expected transition error on cancel approved got %v", err)
	}
}

func TestLoanCancelAndDefault(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLoanService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	pending, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(1000),
		TermMonths:      3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.Cancel(ctx, pending.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.LoanStatusCancelled {
		t.Fatalf("expected cancelled got %s", cancelled.Status)
	}

	loan, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(2000),
		TermMonths:      6,
	})
	if err != nil {
		t.Fatalf("create 2: %v", err)
	}
	if _, err := svc.MarkDefaulted(ctx, loan.ID); !errors.Is(err, ErrInvalidLoanTransition) {
		t.Fatalf("expected transition error on default pending got %v", err)
	}
	if _, err := svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Disburse(ctx, loan.ID); err != nil {
		t.Fatalf("disburse: %v", err)
	}
	defaulted, err := svc.MarkDefaulted(ctx, loan.ID)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if defaulted.Status != models.LoanStatusDefaulted {
		t.Fatalf("expected defaulted got %s", defaulted.Status)
	}
}

func TestLoanOverpaymentRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewLoanService(db, nil)
	ctx := testContext()
	member := seedTestMember(t, db)

	loan, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(1000),
		TermMonths:      4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Disburse(ctx, loan.ID); err != nil {
		t.Fatalf("disburse: %v", err)
	}

	if _, err := svc.RecordPayment(ctx, loan.ID, decimal.NewFromInt(1001)); !errors.Is(err, ErrPaymentTooLarge) {
		t.Fatalf("expected ErrPaymentTooLarge got %v", err)
	}
}

func TestLoanDisbursementPostsLedger(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ledger := NewLedgerService(db)
	svc := NewLoanService(db, ledger)
	ctx := testContext()

	seedSystemAccounts(t, db)
	member := seedTestMember(t, db)

	loan, err := svc.Create(ctx, &CreateLoanInput{
		MemberID:        member.ID,
		RequestedAmount: decimal.NewFromInt(50000),
		TermMonths:      10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, loan.ID, &ApproveLoanInput{ApprovedBy: 1}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Disburse(ctx, loan.ID); err != nil {
		t.Fatalf("disburse: %v", err)
	}

	receivable, err := ledger.GetAccountByCode(ctx, models.AccountCodeLoansReceivable)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if !receivable.CurrentBalance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected receivable 50000 got %s", receivable.CurrentBalance)
	}

	var count int64
	if err := db.Model(&models.FinancialTransaction{}).Where("source = ?", models.SourceLoan).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 loan transaction got %d", count)
	}

	// Repayment reverses the entry
	if _, err := svc.RecordPayment(ctx, loan.ID, decimal.NewFromInt(50000)); err != nil {
		t.Fatalf("payment: %v", err)
	}
	receivable, err = ledger.GetAccountByCode(ctx, models.AccountCodeLoansReceivable)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if !receivable.CurrentBalance.IsZero() {
		t.Fatalf("expected receivable back to zero got %s", receivable.CurrentBalance)
	}
}

func TestLoanMonthlyPaymentWithInterest(t *testing.T) {
	approved := decimal.NewFromInt(100000)
	loan := &models.MemberLoan{
		ApprovedAmount: &approved,
		InterestRate:   decimal.NewFromInt(12),
		TermMonths:     12,
	}
	// Annuity on 100000 at 12% over 12 months
	if got := loan.MonthlyPayment(); !got.Equal(decimal.NewFromFloat(8884.88)) {
		t.Fatalf("expected 8884.88 got %s", got)
	}
}
