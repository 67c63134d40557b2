package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTestMember(t *testing.T, db *gorm.DB) *models.Member {
	member := &models.Member{
		MemberNumber: fmt.Sprintf("COOP-2026-%04d", time.Now().UnixNano()%10000),
		FirstName:    "Awa",
		LastName:     "Diop",
		Status:       models.MemberStatusActive,
		JoinDate:     time.Now(),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}

func seedTestAccount(t *testing.T, db *gorm.DB, code, name, accountType string, system bool) *models.Account {
	account := &models.Account{
		Code:           code,
		Name:           name,
		AccountType:    accountType,
		IsSystem:       system,
		CurrentBalance: decimal.Zero,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account %s: %v", code, err)
	}
	return account
}

func seedSystemAccounts(t *testing.T, db *gorm.DB) {
	seedTestAccount(t, db, models.AccountCodeCash, "Cash", models.AccountTypeAsset, true)
	seedTestAccount(t, db, models.AccountCodeLoansReceivable, "Loans receivable", models.AccountTypeAsset, true)
	seedTestAccount(t, db, models.AccountCodeMemberSavings, "Member savings", models.AccountTypeLiability, true)
	seedTestAccount(t, db, models.AccountCodeShareCapital, "Share capital", models.AccountTypeEquity, true)
	seedTestAccount(t, db, models.AccountCodeSalesRevenue, "Sales revenue", models.AccountTypeRevenue, true)
	seedTestAccount(t, db, models.AccountCodeInterestIncome, "Interest income", models.AccountTypeRevenue, true)
}

func testContext() context.Context {
	return context.Background()
}
