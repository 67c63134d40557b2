package models

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSequenceDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&PeriodSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextSequenceIncrements(t *testing.T) {
	db := setupSequenceDB(t)

	for i := uint(1); i <= 3; i++ {
		value, err := NextSequence(db, SequenceScopeTransaction, "202601")
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if value != i {
			t.Fatalf("expected %d got %d", i, value)
		}
	}
}

func TestNextSequenceResetsPerPeriod(t *testing.T) {
	db := setupSequenceDB(t)

	if _, err := NextSequence(db, SequenceScopeTransaction, "202601"); err != nil {
		t.Fatalf("first period: %v", err)
	}
	value, err := NextSequence(db, SequenceScopeTransaction, "202602")
	if err != nil {
		t.Fatalf("second period: %v", err)
	}
	if value != 1 {
		t.Fatalf("expected counter restart at 1 got %d", value)
	}

	// Scopes are independent within one period
	value, err = NextSequence(db, SequenceScopeSale, "202601")
	if err != nil {
		t.Fatalf("sale scope: %v", err)
	}
	if value != 1 {
		t.Fatalf("expected independent scope counter got %d", value)
	}
}

func TestNumberFormats(t *testing.T) {
	db := setupSequenceDB(t)
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	txn, err := NextTransactionNumber(db, at)
	if err != nil {
		t.Fatalf("txn: %v", err)
	}
	if txn != "TXN-202603-0001" {
		t.Fatalf("expected TXN-202603-0001 got %s", txn)
	}

	loan, err := NextLoanNumber(db, at)
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	if loan != "PRT-2026-0001" {
		t.Fatalf("expected PRT-2026-0001 got %s", loan)
	}

	member, err := NextMemberNumber(db, at)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member != "COOP-2026-0001" {
		t.Fatalf("expected COOP-2026-0001 got %s", member)
	}

	sale, err := NextSaleNumber(db, at)
	if err != nil {
		t.Fatalf("sale: %v", err)
	}
	if sale != "VEN-202603-0001" {
		t.Fatalf("expected VEN-202603-0001 got %s", sale)
	}
}
