package config

import (
	"log"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.SeedRoles(); err != nil {
		return err
	}
	if err := s.SeedSystemAccounts(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// SeedRoles creates or updates the seven built-in roles. Idempotent by name.
func (s *Seeder) SeedRoles() error {
	roles := []models.UserRole{
		{
			Name: models.RoleAdmin, DisplayName: "Administrateur", Priority: 1, Color: "#dc3545",
			Description:             "Full system access, user and settings management",
			CanAccessAdmin:          true,
			CanViewReports:          true,
			CanManageMembers:        true,
			CanManageInventory:      true,
			CanManageSales:          true,
			CanManageFinance:        true,
			CanValidateTransactions: true,
		},
		{
			Name: models.RoleManager, DisplayName: "Gestionnaire", Priority: 2, Color: "#fd7e14",
			Description:             "Operational management, reports and supervision",
			CanAccessAdmin:          true,
			CanViewReports:          true,
			CanManageMembers:        true,
			CanManageInventory:      true,
			CanManageSales:          true,
			CanValidateTransactions: true,
		},
		{
			Name: models.RoleAccountant, DisplayName: "Comptable", Priority: 3, Color: "#20c997",
			Description:             "Financial management, bookkeeping and transactions",
			CanViewReports:          true,
			CanManageFinance:        true,
			CanValidateTransactions: true,
		},
		{
			Name: models.RoleSalesperson, DisplayName: "Vendeur", Priority: 4, Color: "#0d6efd",
			Description:    "Sales and customer management",
			CanManageSales: true,
		},
		{
			Name: models.RoleStockkeeper, DisplayName: "Gestionnaire de Stock", Priority: 5, Color: "#6f42c1",
			Description:        "Inventory and stock movement management",
			CanManageInventory: true,
		},
		{
			Name: models.RoleMember, DisplayName: "Membre", Priority: 6, Color: "#198754",
			Description: "Cooperative member with limited access",
		},
		{
			Name: models.RoleVisitor, DisplayName: "Visiteur", Priority: 7, Color: "#6c757d",
			Description: "Minimal system access",
		},
	}

	for i := range roles {
		var existing models.UserRole
		err := s.db.Where("name = ?", roles[i].Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(&roles[i]).Error; err != nil {
				return err
			}
			log.Printf("✅ Role created: %s", roles[i].Name)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedSystemAccounts creates the system ledger accounts. Idempotent by code.
func (s *Seeder) SeedSystemAccounts() error {
	accounts := []models.Account{
		{Code: models.AccountCodeCash, Name: "Cash", AccountType: models.AccountTypeAsset, IsSystem: true},
		{Code: models.AccountCodeLoansReceivable, Name: "Loans receivable", AccountType: models.AccountTypeAsset, IsSystem: true},
		{Code: models.AccountCodeMemberSavings, Name: "Member savings", AccountType: models.AccountTypeLiability, IsSystem: true},
		{Code: models.AccountCodeShareCapital, Name: "Share capital", AccountType: models.AccountTypeEquity, IsSystem: true},
		{Code: models.AccountCodeSalesRevenue, Name: "Sales revenue", AccountType: models.AccountTypeRevenue, IsSystem: true},
		{Code: models.AccountCodeInterestIncome, Name: "Interest income", AccountType: models.AccountTypeRevenue, IsSystem: true},
	}

	for i := range accounts {
		var count int64
		if err := s.db.Model(&models.Account{}).Where("code = ?", accounts[i].Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		accounts[i].CurrentBalance = decimal.Zero
		if err := s.db.Create(&accounts[i]).Error; err != nil {
			return err
		}
		log.Printf("✅ System account created: %s %s", accounts[i].Code, accounts[i].Name)
	}
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	var adminRole models.UserRole
	if err := s.db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@coop.local",
		Password: hashedPassword,
		RoleID:   &adminRole.ID,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	// Full permission set for the default admin
	access := &models.CooperativeAccess{
		UserID: admin.ID,
		AccessFlags: models.AccessFlags{
			CanViewDashboard:        true,
			CanManageOwnProfile:     true,
			CanViewMembers:          true,
			CanAddMembers:           true,
			CanEditMembers:          true,
			CanDeleteMembers:        true,
			CanViewInventory:        true,
			CanAddProducts:          true,
			CanEditProducts:         true,
			CanDeleteProducts:       true,
			CanManageStock:          true,
			CanViewSales:            true,
			CanCreateSales:          true,
			CanEditSales:            true,
			CanDeleteSales:          true,
			CanProcessPayments:      true,
			CanViewFinances:         true,
			CanCreateTransactions:   true,
			CanValidateTransactions: true,
			CanManageAccounts:       true,
			CanManageLoans:          true,
			CanViewBasicReports:     true,
			CanViewFinancialReports: true,
			CanExportData:           true,
			CanManageUsers:          true,
			CanManagePermissions:    true,
			CanViewLogs:             true,
			CanBackupData:           true,
		},
	}
	if err := s.db.Create(access).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
