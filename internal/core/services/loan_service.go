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

// Loan errors
var (
	ErrLoanNotFound          = errors.New("loan not found")
	ErrInvalidLoanAmount     = errors.New("loan amount must be positive")
	ErrInvalidLoanTerm       = errors.New("loan term must be positive")
	ErrInvalidLoanTransition = errors.New("invalid loan status transition")
	ErrPaymentTooLarge       = errors.New("payment exceeds outstanding balance")
)

// LoanService implements the member loan state machine
type LoanService struct {
	db            *gorm.DB
	ledgerService *LedgerService
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB, ledgerService *LedgerService) *LoanService {
	return &LoanService{db: db, ledgerService: ledgerService}
}

// CreateLoanInput represents a loan application
type CreateLoanInput struct {
	MemberID        uint            `json:"member_id" validate:"required"`
	RequestedAmount decimal.Decimal `json:"requested_amount" validate:"required"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TermMonths      int             `json:"term_months" validate:"required"`
	Purpose         string          `json:"purpose"`
}

// ApproveLoanInput represents loan approval input
type ApproveLoanInput struct {
	ApprovedAmount *decimal.Decimal `json:"approved_amount"`
	Notes          string           `json:"notes"`
	ApprovedBy     uint             `json:"-"`
}

// Create registers a loan application and allocates the loan number
func (s *LoanService) Create(ctx context.Context, input *CreateLoanInput) (*models.MemberLoan, error) {
	if !input.RequestedAmount.IsPositive() {
		return nil, ErrInvalidLoanAmount
	}
	if input.TermMonths <= 0 {
		return nil, ErrInvalidLoanTerm
	}

	var member models.Member
	if err := s.db.WithContext(ctx).Where("id = ?", input.MemberID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	now := time.Now()
	var loan *models.MemberLoan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.NextLoanNumber(tx, now)
		if err != nil {
			return err
		}

		loan = &models.MemberLoan{
			LoanNumber:         number,
			MemberID:           input.MemberID,
			RequestedAmount:    input.RequestedAmount,
			OutstandingBalance: decimal.Zero,
			InterestRate:       input.InterestRate,
			TermMonths:         input.TermMonths,
			Status:             models.LoanStatusPending,
			Purpose:            input.Purpose,
			ApplicationDate:    now,
		}
		return tx.Create(loan).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan application created: %s", loan.LoanNumber)
	return loan, nil
}

// GetByID gets a loan by ID with member preloaded
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.MemberLoan, error) {
	var loan models.MemberLoan
	err := s.db.WithContext(ctx).Preload("Member").Where("id = ?", id).First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// List lists loans with pagination, optionally filtered by status or member
func (s *LoanService) List(ctx context.Context, offset, limit int, status string, memberID uint) ([]*models.MemberLoan, int64, error) {
	var loans []*models.MemberLoan
	var total int64

	query := s.db.WithContext(ctx).Model(&models.MemberLoan{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if memberID != 0 {
		query = query.Where("member_id = ?", memberID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Member").Order("id DESC").Offset(offset).Limit(limit).Find(&loans).Error; err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

// Approve moves a pending loan to approved. Without an explicit approved
// amount the requested amount is granted.
func (s *LoanService) Approve(ctx context.Context, id uint, input *ApproveLoanInput) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, ErrInvalidLoanTransition
	}

	approved := loan.RequestedAmount
	if input.ApprovedAmount != nil {
		if !input.ApprovedAmount.IsPositive() {
			return nil, ErrInvalidLoanAmount
		}
		approved = *input.ApprovedAmount
	}

	now := time.Now()
	loan.Status = models.LoanStatusApproved
	loan.ApprovedAmount = &approved
	loan.ApprovalDate = &now
	loan.ApprovedBy = &input.ApprovedBy
	if input.Notes != "" {
		loan.Notes = input.Notes
	}

	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Loan approved: %s (%s)", loan.LoanNumber, approved.StringFixed(2))
	return loan, nil
}

// Disburse pays out an approved loan. The outstanding balance becomes the
// approved amount and a loan posting is recorded when the system accounts
// are configured.
func (s *LoanService) Disburse(ctx context.Context, id uint) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusApproved || loan.ApprovedAmount == nil {
		return nil, ErrInvalidLoanTransition
	}

	now := time.Now()
	maturity := now.AddDate(0, loan.TermMonths, 0)

	loan.Status = models.LoanStatusDisbursed
	loan.OutstandingBalance = *loan.ApprovedAmount
	loan.DisbursementDate = &now
	loan.MaturityDate = &maturity

	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}

	s.postLoanEntry(ctx, loan, *loan.ApprovedAmount, true)

	log.Printf("✅ Loan disbursed: %s", loan.LoanNumber)
	return loan, nil
}

// Activate moves a disbursed loan into repayment
func (s *LoanService) Activate(ctx context.Context, id uint) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusDisbursed {
		return nil, ErrInvalidLoanTransition
	}

	loan.Status = models.LoanStatusActive
	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// RecordPayment applies a repayment. Paying the balance down to zero
// completes the loan.
func (s *LoanService) RecordPayment(ctx context.Context, id uint, amount decimal.Decimal) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusDisbursed && loan.Status != models.LoanStatusActive {
		return nil, ErrInvalidLoanTransition
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidLoanAmount
	}
	if amount.GreaterThan(loan.OutstandingBalance) {
		return nil, ErrPaymentTooLarge
	}

	loan.OutstandingBalance = loan.OutstandingBalance.Sub(amount)
	if loan.OutstandingBalance.IsZero() {
		loan.Status = models.LoanStatusCompleted
	}

	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}

	s.postLoanEntry(ctx, loan, amount, false)

	log.Printf("✅ Loan payment recorded: %s (%s, remaining %s)",
		loan.LoanNumber, amount.StringFixed(2), loan.OutstandingBalance.StringFixed(2))
	return loan, nil
}

// Cancel cancels a pending loan application
func (s *LoanService) Cancel(ctx context.Context, id uint) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, ErrInvalidLoanTransition
	}

	loan.Status = models.LoanStatusCancelled
	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// MarkDefaulted flags a disbursed or active loan as defaulted
func (s *LoanService) MarkDefaulted(ctx context.Context, id uint) (*models.MemberLoan, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusDisbursed && loan.Status != models.LoanStatusActive {
		return nil, ErrInvalidLoanTransition
	}

	loan.Status = models.LoanStatusDefaulted
	if err := s.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// postLoanEntry records the ledger side of a disbursement or repayment.
// Skipped with a warning when the system accounts are not seeded.
func (s *LoanService) postLoanEntry(ctx context.Context, loan *models.MemberLoan, amount decimal.Decimal, disbursement bool) {
	if s.ledgerService == nil {
		return
	}

	cash, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeCash)
	if err != nil {
		log.Printf("⚠️ Loan posting skipped for %s: %v", loan.LoanNumber, err)
		return
	}
	receivable, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeLoansReceivable)
	if err != nil {
		log.Printf("⚠️ Loan posting skipped for %s: %v", loan.LoanNumber, err)
		return
	}

	input := &PostTransactionInput{
		TransactionType: models.TransactionTypeTransfer,
		Source:          models.SourceLoan,
		Amount:          amount,
		MemberID:        &loan.MemberID,
		Reference:       loan.LoanNumber,
	}
	if disbursement {
		input.DebitAccountID = receivable.ID
		input.CreditAccountID = cash.ID
		input.Description = "Loan disbursement " + loan.LoanNumber
	} else {
		input.DebitAccountID = cash.ID
		input.CreditAccountID = receivable.ID
		input.Description = "Loan repayment " + loan.LoanNumber
	}

	if _, err := s.ledgerService.PostTransaction(ctx, input); err != nil {
		log.Printf("⚠️ Loan posting failed for %s: %v", loan.LoanNumber, err)
	}
}
