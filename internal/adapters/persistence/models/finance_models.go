package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Chart of accounts
// ============================================================

// Account types (closed enum)
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeRevenue   = "revenue"
	AccountTypeExpense   = "expense"
)

// System chart of accounts. Automated postings from sales, loans and
// savings target these codes.
const (
	AccountCodeCash            = "1000"
	AccountCodeLoansReceivable = "1100"
	AccountCodeMemberSavings   = "2100"
	AccountCodeShareCapital    = "3000"
	AccountCodeSalesRevenue    = "4000"
	AccountCodeInterestIncome  = "4100"
)

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account represents accounts table (ledger account)
type Account struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	AccountType    string          `gorm:"size:20;not null;index" json:"account_type"`
	Description    string          `gorm:"type:text" json:"description"`
	IsSystem       bool            `gorm:"default:false" json:"is_system"` // cannot be deleted, no manual postings
	CurrentBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_balance"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// BalanceDisplay returns the balance in its natural sign: debit-positive for
// asset/expense accounts, credit-positive for the rest.
func (a *Account) BalanceDisplay() decimal.Decimal {
	if a.AccountType == AccountTypeAsset || a.AccountType == AccountTypeExpense {
		return a.CurrentBalance
	}
	return a.CurrentBalance.Neg()
}

// ============================================================
// Financial transactions
// ============================================================

// Transaction types
const (
	TransactionTypeIncome     = "income"
	TransactionTypeExpense    = "expense"
	TransactionTypeTransfer   = "transfer"
	TransactionTypeAdjustment = "adjustment"
)

// Transaction sources. Only "manual" entries are typed by hand; the rest are
// posted by other subsystems and are the only sources allowed to touch
// system accounts.
const (
	SourceManual        = "manual"
	SourceSale          = "sale"
	SourcePurchase      = "purchase"
	SourceMembershipFee = "membership_fee"
	SourceLoan          = "loan"
	SourceDividend      = "dividend"
	SourceDonation      = "donation"
	SourceOther         = "other"
)

// FinancialTransaction represents financial_transactions table. Immutable
// after creation; corrections are posted as new entries.
type FinancialTransaction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TransactionNumber string          `gorm:"size:20;uniqueIndex;not null" json:"transaction_number"` // TXN-YYYYMM-NNNN
	TransactionType   string          `gorm:"size:20;not null" json:"transaction_type"`
	Source            string          `gorm:"size:20;not null;default:'manual'" json:"source"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DebitAccountID    uint            `gorm:"not null;index:idx_txn_debit" json:"debit_account_id"`
	CreditAccountID   uint            `gorm:"not null;index:idx_txn_credit" json:"credit_account_id"`
	TransactionDate   time.Time       `gorm:"not null;index" json:"transaction_date"`
	Description       string          `gorm:"type:text" json:"description"`
	Reference         string          `gorm:"size:100" json:"reference"`
	MemberID          *uint           `gorm:"index" json:"member_id"`
	SaleID            *uint           `gorm:"index" json:"sale_id"`
	CreatedBy         *uint           `json:"created_by"`
	ValidatedBy       *uint           `json:"validated_by"`
	ValidatedAt       *time.Time      `json:"validated_at"`
	IsReconciled      bool            `gorm:"default:false" json:"is_reconciled"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	DebitAccount  *Account `gorm:"foreignKey:DebitAccountID" json:"debit_account,omitempty"`
	CreditAccount *Account `gorm:"foreignKey:CreditAccountID" json:"credit_account,omitempty"`
	Member        *Member  `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Sale          *Sale    `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	Validator     *User    `gorm:"foreignKey:ValidatedBy" json:"validator,omitempty"`
}

func (FinancialTransaction) TableName() string {
	return "financial_transactions"
}

func (t *FinancialTransaction) IsValidated() bool {
	return t.ValidatedAt != nil
}

// ============================================================
// Member loans
// ============================================================

// Loan statuses. Forward-only: pending → approved → disbursed → active →
// completed, with pending → cancelled and disbursed/active → defaulted as
// side exits.
const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusDisbursed = "disbursed"
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusDefaulted = "defaulted"
	LoanStatusCancelled = "cancelled"
)

// MemberLoan represents member_loans table
type MemberLoan struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	LoanNumber         string           `gorm:"size:20;uniqueIndex;not null" json:"loan_number"` // PRT-YYYY-NNNN
	MemberID           uint             `gorm:"not null;index" json:"member_id"`
	RequestedAmount    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"requested_amount"`
	ApprovedAmount     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"approved_amount"`
	OutstandingBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"outstanding_balance"`
	InterestRate       decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"` // annual %
	TermMonths         int              `gorm:"not null" json:"term_months"`
	Status             string           `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Purpose            string           `gorm:"type:text" json:"purpose"`
	Notes              string           `gorm:"type:text" json:"notes"`
	ApplicationDate    time.Time        `gorm:"type:date;not null" json:"application_date"`
	ApprovalDate       *time.Time       `gorm:"type:date" json:"approval_date"`
	DisbursementDate   *time.Time       `gorm:"type:date" json:"disbursement_date"`
	MaturityDate       *time.Time       `gorm:"type:date" json:"maturity_date"`
	ApprovedBy         *uint            `json:"approved_by"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Member   *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Approver *User   `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (MemberLoan) TableName() string {
	return "member_loans"
}

// MonthlyPayment computes the fixed monthly installment using the annuity
// formula P·r(1+r)^n / ((1+r)^n − 1) with r the monthly rate. With a zero
// rate the installment is exactly principal / n. Returns zero when the loan
// has no approved amount or an invalid term.
func (l *MemberLoan) MonthlyPayment() decimal.Decimal {
	if l.ApprovedAmount == nil || l.TermMonths <= 0 {
		return decimal.Zero
	}
	if l.InterestRate.IsZero() {
		return l.ApprovedAmount.Div(decimal.NewFromInt(int64(l.TermMonths))).Round(2)
	}

	principal, _ := l.ApprovedAmount.Float64()
	rate, _ := l.InterestRate.Float64()
	r := rate / 100 / 12
	n := float64(l.TermMonths)
	payment := principal * (r * math.Pow(1+r, n)) / (math.Pow(1+r, n) - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// ============================================================
// Member savings
// ============================================================

// Savings types
const (
	SavingsTypeRegular = "regular"
	SavingsTypeTerm    = "term"
	SavingsTypeSpecial = "special"
)

// MemberSavings represents member_savings table
type MemberSavings struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	MemberID         uint            `gorm:"not null;index;uniqueIndex:idx_member_savings_type" json:"member_id"`
	SavingsType      string          `gorm:"size:20;not null;default:'regular';uniqueIndex:idx_member_savings_type" json:"savings_type"`
	CurrentBalance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_balance"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"` // annual %
	MinimumBalance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"minimum_balance"`
	OpeningDate      time.Time       `gorm:"type:date;not null" json:"opening_date"`
	LastInterestDate *time.Time      `gorm:"type:date" json:"last_interest_date"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (MemberSavings) TableName() string {
	return "member_savings"
}
