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

// Savings errors
var (
	ErrSavingsNotFound        = errors.New("savings account not found")
	ErrSavingsAlreadyExists   = errors.New("member already has a savings account of this type")
	ErrInvalidSavingsType     = errors.New("invalid savings type")
	ErrInvalidSavingsAmount   = errors.New("amount must be positive")
	ErrBelowMinimumBalance    = errors.New("withdrawal would drop balance below the minimum")
	ErrNoInterestRate         = errors.New("savings account has no interest rate")
	ErrInterestPeriodTooShort = errors.New("interest was capitalized less than 30 days ago")
)

// Interest accrues on a 365-day year, gated to at most one capitalization
// every 30 days.
const (
	interestDaysPerYear = 365
	interestMinDays     = 30
)

// SavingsService manages member savings accounts
type SavingsService struct {
	db            *gorm.DB
	ledgerService *LedgerService
}

// NewSavingsService creates a new savings service
func NewSavingsService(db *gorm.DB, ledgerService *LedgerService) *SavingsService {
	return &SavingsService{db: db, ledgerService: ledgerService}
}

// CreateSavingsInput represents savings account opening input
type CreateSavingsInput struct {
	MemberID       uint            `json:"member_id" validate:"required"`
	SavingsType    string          `json:"savings_type"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumBalance decimal.Decimal `json:"minimum_balance"`
}

// Create opens a savings account. One account per member and type.
func (s *SavingsService) Create(ctx context.Context, input *CreateSavingsInput) (*models.MemberSavings, error) {
	savingsType := input.SavingsType
	if savingsType == "" {
		savingsType = models.SavingsTypeRegular
	}
	switch savingsType {
	case models.SavingsTypeRegular, models.SavingsTypeTerm, models.SavingsTypeSpecial:
	default:
		return nil, ErrInvalidSavingsType
	}

	var member models.Member
	if err := s.db.WithContext(ctx).Where("id = ?", input.MemberID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MemberSavings{}).
		Where("member_id = ? AND savings_type = ?", input.MemberID, savingsType).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSavingsAlreadyExists
	}

	savings := &models.MemberSavings{
		MemberID:       input.MemberID,
		SavingsType:    savingsType,
		CurrentBalance: decimal.Zero,
		InterestRate:   input.InterestRate,
		MinimumBalance: input.MinimumBalance,
		OpeningDate:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(savings).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Savings account opened: member %d (%s)", savings.MemberID, savings.SavingsType)
	return savings, nil
}

// GetByID gets a savings account by ID
func (s *SavingsService) GetByID(ctx context.Context, id uint) (*models.MemberSavings, error) {
	var savings models.MemberSavings
	err := s.db.WithContext(ctx).Preload("Member").Where("id = ?", id).First(&savings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSavingsNotFound
		}
		return nil, err
	}
	return &savings, nil
}

// List lists savings accounts with pagination
func (s *SavingsService) List(ctx context.Context, offset, limit int, memberID uint) ([]*models.MemberSavings, int64, error) {
	var accounts []*models.MemberSavings
	var total int64

	query := s.db.WithContext(ctx).Model(&models.MemberSavings{})
	if memberID != 0 {
		query = query.Where("member_id = ?", memberID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Member").Order("id ASC").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Deposit adds funds to a savings account
func (s *SavingsService) Deposit(ctx context.Context, id uint, amount decimal.Decimal) (*models.MemberSavings, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidSavingsAmount
	}

	var savings *models.MemberSavings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		savings = &models.MemberSavings{}
		if err := models.ForUpdate(tx).Where("id = ?", id).First(savings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSavingsNotFound
			}
			return err
		}

		savings.CurrentBalance = savings.CurrentBalance.Add(amount)
		return tx.Model(&models.MemberSavings{}).Where("id = ?", id).
			Update("current_balance", savings.CurrentBalance).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Savings deposit: account %d +%s", id, amount.StringFixed(2))
	return savings, nil
}

// Withdraw removes funds, refusing to drop below the minimum balance
func (s *SavingsService) Withdraw(ctx context.Context, id uint, amount decimal.Decimal) (*models.MemberSavings, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidSavingsAmount
	}

	var savings *models.MemberSavings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		savings = &models.MemberSavings{}
		if err := models.ForUpdate(tx).Where("id = ?", id).First(savings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSavingsNotFound
			}
			return err
		}

		remaining := savings.CurrentBalance.Sub(amount)
		if remaining.LessThan(savings.MinimumBalance) {
			return ErrBelowMinimumBalance
		}

		savings.CurrentBalance = remaining
		return tx.Model(&models.MemberSavings{}).Where("id = ?", id).
			Update("current_balance", savings.CurrentBalance).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Savings withdrawal: account %d -%s", id, amount.StringFixed(2))
	return savings, nil
}

// CapitalizeInterest accrues interest since the last capitalization (or the
// opening date) and adds it to the balance. At least 30 days must have
// elapsed and the account must carry a positive rate.
func (s *SavingsService) CapitalizeInterest(ctx context.Context, id uint) (*models.MemberSavings, decimal.Decimal, error) {
	var savings *models.MemberSavings
	var interest decimal.Decimal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		savings = &models.MemberSavings{}
		if err := models.ForUpdate(tx).Where("id = ?", id).First(savings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSavingsNotFound
			}
			return err
		}

		if !savings.InterestRate.IsPositive() {
			return ErrNoInterestRate
		}

		since := savings.OpeningDate
		if savings.LastInterestDate != nil {
			since = *savings.LastInterestDate
		}

		now := time.Now()
		days := int(now.Sub(since).Hours() / 24)
		if days < interestMinDays {
			return ErrInterestPeriodTooShort
		}

		// interest = balance x rate/100 x days/365
		interest = savings.CurrentBalance.
			Mul(savings.InterestRate).
			Div(decimal.NewFromInt(100)).
			Mul(decimal.NewFromInt(int64(days))).
			Div(decimal.NewFromInt(interestDaysPerYear)).
			Round(2)

		savings.CurrentBalance = savings.CurrentBalance.Add(interest)
		savings.LastInterestDate = &now

		return tx.Model(&models.MemberSavings{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"current_balance":    savings.CurrentBalance,
				"last_interest_date": now,
			}).Error
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	s.postInterestEntry(ctx, savings, interest)

	log.Printf("✅ Interest capitalized: account %d +%s", id, interest.StringFixed(2))
	return savings, interest, nil
}

// postInterestEntry records the interest expense against member savings.
// Skipped with a warning when the system accounts are not seeded.
func (s *SavingsService) postInterestEntry(ctx context.Context, savings *models.MemberSavings, interest decimal.Decimal) {
	if s.ledgerService == nil || !interest.IsPositive() {
		return
	}

	interestAccount, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeInterestIncome)
	if err != nil {
		log.Printf("⚠️ Interest posting skipped for savings %d: %v", savings.ID, err)
		return
	}
	savingsAccount, err := s.ledgerService.GetAccountByCode(ctx, models.AccountCodeMemberSavings)
	if err != nil {
		log.Printf("⚠️ Interest posting skipped for savings %d: %v", savings.ID, err)
		return
	}

	_, err = s.ledgerService.PostTransaction(ctx, &PostTransactionInput{
		TransactionType: models.TransactionTypeTransfer,
		Source:          models.SourceOther,
		Amount:          interest,
		DebitAccountID:  interestAccount.ID,
		CreditAccountID: savingsAccount.ID,
		MemberID:        &savings.MemberID,
		Description:     "Savings interest capitalization",
	})
	if err != nil {
		log.Printf("⚠️ Interest posting failed for savings %d: %v", savings.ID, err)
	}
}
