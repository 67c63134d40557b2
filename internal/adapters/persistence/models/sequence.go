package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence scopes. Each scope has its own counter per period.
const (
	SequenceScopeTransaction = "transaction" // period YYYYMM
	SequenceScopeLoan        = "loan"        // period YYYY
	SequenceScopeMember      = "member"      // period YYYY
	SequenceScopeSale        = "sale"        // period YYYYMM
)

// PeriodSequence represents period_sequences table. One counter row per
// (scope, period); the value is the last sequence handed out.
type PeriodSequence struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Scope  string `gorm:"size:20;not null;uniqueIndex:idx_seq_scope_period" json:"scope"`
	Period string `gorm:"size:10;not null;uniqueIndex:idx_seq_scope_period" json:"period"`
	Value  uint   `gorm:"not null;default:0" json:"value"`
}

func (PeriodSequence) TableName() string {
	return "period_sequences"
}

// ForUpdate applies a row-level write lock. SQLite has no SELECT ... FOR
// UPDATE; its single-writer transactions already serialize access.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// NextSequence increments and returns the counter for (scope, period).
// Must run inside a transaction; the counter row is locked for the
// duration so concurrent callers get distinct values.
func NextSequence(tx *gorm.DB, scope, period string) (uint, error) {
	var seq PeriodSequence
	err := ForUpdate(tx).Where("scope = ? AND period = ?", scope, period).First(&seq).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return 0, err
		}
		seq = PeriodSequence{Scope: scope, Period: period, Value: 0}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
	}
	seq.Value++
	if err := tx.Model(&seq).Update("value", seq.Value).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// NextTransactionNumber returns TXN-YYYYMM-NNNN for the given date.
func NextTransactionNumber(tx *gorm.DB, at time.Time) (string, error) {
	period := at.Format("200601")
	n, err := NextSequence(tx, SequenceScopeTransaction, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%s-%04d", period, n), nil
}

// NextLoanNumber returns PRT-YYYY-NNNN for the given date.
func NextLoanNumber(tx *gorm.DB, at time.Time) (string, error) {
	period := at.Format("2006")
	n, err := NextSequence(tx, SequenceScopeLoan, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRT-%s-%04d", period, n), nil
}

// NextMemberNumber returns COOP-YYYY-NNNN for the given date.
func NextMemberNumber(tx *gorm.DB, at time.Time) (string, error) {
	period := at.Format("2006")
	n, err := NextSequence(tx, SequenceScopeMember, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("COOP-%s-%04d", period, n), nil
}

// NextSaleNumber returns VEN-YYYYMM-NNNN for the given date.
func NextSaleNumber(tx *gorm.DB, at time.Time) (string, error) {
	period := at.Format("200601")
	n, err := NextSequence(tx, SequenceScopeSale, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("VEN-%s-%04d", period, n), nil
}
