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

// Ledger errors
var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountCodeTaken        = errors.New("account code already in use")
	ErrInvalidAccountType      = errors.New("invalid account type")
	ErrSystemAccountProtected  = errors.New("system account cannot be deleted")
	ErrSystemAccountManualPost = errors.New("manual postings to system accounts are not allowed")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrSameAccount             = errors.New("debit and credit accounts must differ")
	ErrAlreadyValidated        = errors.New("transaction already validated")
)

// LedgerService implements the double-entry bookkeeping engine
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// ============================================================
// Accounts
// ============================================================

// CreateAccountInput represents account creation input
type CreateAccountInput struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"account_type" validate:"required"`
	Description string `json:"description"`
}

// UpdateAccountInput represents account update input
type UpdateAccountInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateAccount creates a non-system ledger account
func (s *LedgerService) CreateAccount(ctx context.Context, input *CreateAccountInput) (*models.Account, error) {
	if !models.ValidAccountType(input.AccountType) {
		return nil, ErrInvalidAccountType
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Where("code = ?", input.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAccountCodeTaken
	}

	account := &models.Account{
		Code:           input.Code,
		Name:           input.Name,
		AccountType:    input.AccountType,
		Description:    input.Description,
		CurrentBalance: decimal.Zero,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount gets an account by ID
func (s *LedgerService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByCode gets an account by its code
func (s *LedgerService) GetAccountByCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateAccount updates account name and description. Code, type and
// balance are immutable through this path.
func (s *LedgerService) UpdateAccount(ctx context.Context, id uint, input *UpdateAccountInput) (*models.Account, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		account.Name = *input.Name
	}
	if input.Description != nil {
		account.Description = *input.Description
	}

	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount soft deletes a non-system account
func (s *LedgerService) DeleteAccount(ctx context.Context, id uint) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return ErrSystemAccountProtected
	}
	return s.db.WithContext(ctx).Delete(account).Error
}

// ListAccounts lists accounts, optionally filtered by type
func (s *LedgerService) ListAccounts(ctx context.Context, accountType string) ([]*models.Account, error) {
	var accounts []*models.Account
	query := s.db.WithContext(ctx).Order("code ASC")
	if accountType != "" {
		query = query.Where("account_type = ?", accountType)
	}
	err := query.Find(&accounts).Error
	return accounts, err
}

// ============================================================
// Transactions
// ============================================================

// PostTransactionInput represents a double-entry posting
type PostTransactionInput struct {
	TransactionType string          `json:"transaction_type" validate:"required"`
	Source          string          `json:"source"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	DebitAccountID  uint            `json:"debit_account_id" validate:"required"`
	CreditAccountID uint            `json:"credit_account_id" validate:"required"`
	TransactionDate *time.Time      `json:"transaction_date"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"`
	MemberID        *uint           `json:"member_id"`
	SaleID          *uint           `json:"sale_id"`
	CreatedBy       *uint           `json:"-"`
}

// PostTransaction atomically records a transaction and moves both account
// balances: +amount on the debit account, -amount on the credit account.
// Retried once when the generated number collides.
func (s *LedgerService) PostTransaction(ctx context.Context, input *PostTransactionInput) (*models.FinancialTransaction, error) {
	txn, err := s.postOnce(ctx, input)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Printf("⚠️ Transaction number collision, retrying")
		txn, err = s.postOnce(ctx, input)
	}
	return txn, err
}

func (s *LedgerService) postOnce(ctx context.Context, input *PostTransactionInput) (*models.FinancialTransaction, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.DebitAccountID == input.CreditAccountID {
		return nil, ErrSameAccount
	}

	source := input.Source
	if source == "" {
		source = models.SourceManual
	}

	txnDate := time.Now()
	if input.TransactionDate != nil {
		txnDate = *input.TransactionDate
	}

	var txn *models.FinancialTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock both account rows in ascending ID order to avoid deadlocks
		firstID, secondID := input.DebitAccountID, input.CreditAccountID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		var first, second models.Account
		if err := models.ForUpdate(tx).Where("id = ?", firstID).First(&first).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if err := models.ForUpdate(tx).Where("id = ?", secondID).First(&second).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		debit, credit := &first, &second
		if debit.ID != input.DebitAccountID {
			debit, credit = &second, &first
		}

		if source == models.SourceManual && (debit.IsSystem || credit.IsSystem) {
			return ErrSystemAccountManualPost
		}

		number, err := models.NextTransactionNumber(tx, txnDate)
		if err != nil {
			return err
		}

		txn = &models.FinancialTransaction{
			TransactionNumber: number,
			TransactionType:   input.TransactionType,
			Source:            source,
			Amount:            input.Amount,
			DebitAccountID:    input.DebitAccountID,
			CreditAccountID:   input.CreditAccountID,
			TransactionDate:   txnDate,
			Description:       input.Description,
			Reference:         input.Reference,
			MemberID:          input.MemberID,
			SaleID:            input.SaleID,
			CreatedBy:         input.CreatedBy,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		debit.CurrentBalance = debit.CurrentBalance.Add(input.Amount)
		credit.CurrentBalance = credit.CurrentBalance.Sub(input.Amount)

		if err := tx.Model(&models.Account{}).Where("id = ?", debit.ID).
			Update("current_balance", debit.CurrentBalance).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", credit.ID).
			Update("current_balance", credit.CurrentBalance).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Transaction posted: %s (%s)", txn.TransactionNumber, txn.Amount.StringFixed(2))
	return txn, nil
}

// GetTransaction gets a transaction with both accounts preloaded
func (s *LedgerService) GetTransaction(ctx context.Context, id uint) (*models.FinancialTransaction, error) {
	var txn models.FinancialTransaction
	err := s.db.WithContext(ctx).
		Preload("DebitAccount").
		Preload("CreditAccount").
		Preload("Member").
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	AccountID uint
	Source    string
	Type      string
	From      *time.Time
	To        *time.Time
}

// ListTransactions lists transactions newest first
func (s *LedgerService) ListTransactions(ctx context.Context, offset, limit int, filter *TransactionFilter) ([]*models.FinancialTransaction, int64, error) {
	var txns []*models.FinancialTransaction
	var total int64

	query := s.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if filter != nil {
		if filter.AccountID != 0 {
			query = query.Where("debit_account_id = ? OR credit_account_id = ?", filter.AccountID, filter.AccountID)
		}
		if filter.Source != "" {
			query = query.Where("source = ?", filter.Source)
		}
		if filter.Type != "" {
			query = query.Where("transaction_type = ?", filter.Type)
		}
		if filter.From != nil {
			query = query.Where("transaction_date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("transaction_date <= ?", *filter.To)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("DebitAccount").
		Preload("CreditAccount").
		Order("transaction_date DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ValidateTransaction stamps the validator once. A validated transaction
// cannot be validated again.
func (s *LedgerService) ValidateTransaction(ctx context.Context, id, validatorID uint) (*models.FinancialTransaction, error) {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.IsValidated() {
		return nil, ErrAlreadyValidated
	}

	now := time.Now()
	txn.ValidatedBy = &validatorID
	txn.ValidatedAt = &now
	if err := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{"validated_by": validatorID, "validated_at": now}).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Transaction validated: %s", txn.TransactionNumber)
	return txn, nil
}

// ReconcileTransaction flags a transaction as reconciled
func (s *LedgerService) ReconcileTransaction(ctx context.Context, id uint) (*models.FinancialTransaction, error) {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	txn.IsReconciled = true
	if err := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).Where("id = ?", id).
		Update("is_reconciled", true).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// ============================================================
// Reports
// ============================================================

// AccountSummary is a reporting line: one account with its display balance
type AccountSummary struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheet groups asset, liability and equity balances
type BalanceSheet struct {
	Assets           []AccountSummary `json:"assets"`
	Liabilities      []AccountSummary `json:"liabilities"`
	Equity           []AccountSummary `json:"equity"`
	TotalAssets      decimal.Decimal  `json:"total_assets"`
	TotalLiabilities decimal.Decimal  `json:"total_liabilities"`
	TotalEquity      decimal.Decimal  `json:"total_equity"`
}

// IncomeStatement groups revenue and expense balances
type IncomeStatement struct {
	Revenue       []AccountSummary `json:"revenue"`
	Expenses      []AccountSummary `json:"expenses"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	NetIncome     decimal.Decimal  `json:"net_income"`
}

func summarize(accounts []*models.Account) ([]AccountSummary, decimal.Decimal) {
	summaries := make([]AccountSummary, 0, len(accounts))
	total := decimal.Zero
	for _, a := range accounts {
		display := a.BalanceDisplay()
		summaries = append(summaries, AccountSummary{
			ID:          a.ID,
			Code:        a.Code,
			Name:        a.Name,
			AccountType: a.AccountType,
			Balance:     display,
		})
		total = total.Add(display)
	}
	return summaries, total
}

// GetBalanceSheet builds the balance sheet from current balances
func (s *LedgerService) GetBalanceSheet(ctx context.Context) (*BalanceSheet, error) {
	sheet := &BalanceSheet{}

	for _, group := range []struct {
		accountType string
		lines       *[]AccountSummary
		total       *decimal.Decimal
	}{
		{models.AccountTypeAsset, &sheet.Assets, &sheet.TotalAssets},
		{models.AccountTypeLiability, &sheet.Liabilities, &sheet.TotalLiabilities},
		{models.AccountTypeEquity, &sheet.Equity, &sheet.TotalEquity},
	} {
		accounts, err := s.ListAccounts(ctx, group.accountType)
		if err != nil {
			return nil, err
		}
		*group.lines, *group.total = summarize(accounts)
	}

	return sheet, nil
}

// GetIncomeStatement builds the income statement from current balances
func (s *LedgerService) GetIncomeStatement(ctx context.Context) (*IncomeStatement, error) {
	revenue, err := s.ListAccounts(ctx, models.AccountTypeRevenue)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ListAccounts(ctx, models.AccountTypeExpense)
	if err != nil {
		return nil, err
	}

	stmt := &IncomeStatement{}
	stmt.Revenue, stmt.TotalRevenue = summarize(revenue)
	stmt.Expenses, stmt.TotalExpenses = summarize(expenses)
	stmt.NetIncome = stmt.TotalRevenue.Sub(stmt.TotalExpenses)
	return stmt, nil
}

// TransactionStats aggregates ledger counters for the dashboard
type TransactionStats struct {
	TotalCount      int64           `json:"total_count"`
	ValidatedCount  int64           `json:"validated_count"`
	ReconciledCount int64           `json:"reconciled_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// GetTransactionStats returns ledger counters
func (s *LedgerService) GetTransactionStats(ctx context.Context) (*TransactionStats, error) {
	stats := &TransactionStats{TotalAmount: decimal.Zero}

	db := s.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if err := db.Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Where("validated_at IS NOT NULL").Count(&stats.ValidatedCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Where("is_reconciled = ?", true).Count(&stats.ReconciledCount).Error; err != nil {
		return nil, err
	}

	var sum decimal.NullDecimal
	if err := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Select("SUM(amount)").Scan(&sum).Error; err != nil {
		return nil, err
	}
	if sum.Valid {
		stats.TotalAmount = sum.Decimal
	}
	return stats, nil
}
