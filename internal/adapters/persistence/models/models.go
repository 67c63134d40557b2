package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users, Roles & Permissions
// ============================================================

// Role names (closed set, seeded at startup)
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleAccountant  = "accountant"
	RoleSalesperson = "salesperson"
	RoleStockkeeper = "stockkeeper"
	RoleMember      = "member"
	RoleVisitor     = "visitor"
)

// UserRole represents user_roles table (global permission template)
type UserRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"size:7;default:'#6c757d'" json:"color"`
	Priority    int    `gorm:"not null;default:1" json:"priority"` // 1 = highest authority

	// Global capability flags
	CanAccessAdmin          bool `gorm:"default:false" json:"can_access_admin"`
	CanViewReports          bool `gorm:"default:false" json:"can_view_reports"`
	CanManageMembers        bool `gorm:"default:false" json:"can_manage_members"`
	CanManageInventory      bool `gorm:"default:false" json:"can_manage_inventory"`
	CanManageSales          bool `gorm:"default:false" json:"can_manage_sales"`
	CanManageFinance        bool `gorm:"default:false" json:"can_manage_finance"`
	CanValidateTransactions bool `gorm:"default:false" json:"can_validate_transactions"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	RoleID    *uint          `gorm:"index" json:"role_id"`
	MemberID  *uint          `gorm:"index" json:"member_id"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Role   *UserRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Member *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RoleName returns the user's role name, or "visitor" when unassigned
func (u *User) RoleName() string {
	if u.Role == nil {
		return RoleVisitor
	}
	return u.Role.Name
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	RoleID    *uint     `json:"role_id"`
	MemberID  *uint     `json:"member_id"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.RoleName(),
		RoleID:    u.RoleID,
		MemberID:  u.MemberID,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// AccessFlags holds the fine-grained per-module permissions. Embedded in
// CooperativeAccess and reused as the value type of the role sync matrix.
type AccessFlags struct {
	// Dashboard
	CanViewDashboard    bool `gorm:"default:true" json:"can_view_dashboard"`
	CanManageOwnProfile bool `gorm:"default:true" json:"can_manage_own_profile"`

	// Members
	CanViewMembers   bool `gorm:"default:false" json:"can_view_members"`
	CanAddMembers    bool `gorm:"default:false" json:"can_add_members"`
	CanEditMembers   bool `gorm:"default:false" json:"can_edit_members"`
	CanDeleteMembers bool `gorm:"default:false" json:"can_delete_members"`

	// Inventory
	CanViewInventory  bool `gorm:"default:false" json:"can_view_inventory"`
	CanAddProducts    bool `gorm:"default:false" json:"can_add_products"`
	CanEditProducts   bool `gorm:"default:false" json:"can_edit_products"`
	CanDeleteProducts bool `gorm:"default:false" json:"can_delete_products"`
	CanManageStock    bool `gorm:"default:false" json:"can_manage_stock"`

	// Sales
	CanViewSales       bool `gorm:"default:false" json:"can_view_sales"`
	CanCreateSales     bool `gorm:"default:false" json:"can_create_sales"`
	CanEditSales       bool `gorm:"default:false" json:"can_edit_sales"`
	CanDeleteSales     bool `gorm:"default:false" json:"can_delete_sales"`
	CanProcessPayments bool `gorm:"default:false" json:"can_process_payments"`

	// Finance
	CanViewFinances         bool `gorm:"default:false" json:"can_view_finances"`
	CanCreateTransactions   bool `gorm:"default:false" json:"can_create_transactions"`
	CanValidateTransactions bool `gorm:"default:false" json:"can_validate_transactions"`
	CanManageAccounts       bool `gorm:"default:false" json:"can_manage_accounts"`
	CanManageLoans          bool `gorm:"default:false" json:"can_manage_loans"`

	// Reports
	CanViewBasicReports     bool `gorm:"default:false" json:"can_view_basic_reports"`
	CanViewFinancialReports bool `gorm:"default:false" json:"can_view_financial_reports"`
	CanExportData           bool `gorm:"default:false" json:"can_export_data"`

	// Administration
	CanManageUsers       bool `gorm:"default:false" json:"can_manage_users"`
	CanManagePermissions bool `gorm:"default:false" json:"can_manage_permissions"`
	CanViewLogs          bool `gorm:"default:false" json:"can_view_logs"`
	CanBackupData        bool `gorm:"default:false" json:"can_backup_data"`
}

// Has reports whether the named permission flag is set.
func (f *AccessFlags) Has(permission string) bool {
	switch permission {
	case "can_view_dashboard":
		return f.CanViewDashboard
	case "can_manage_own_profile":
		return f.CanManageOwnProfile
	case "can_view_members":
		return f.CanViewMembers
	case "can_add_members":
		return f.CanAddMembers
	case "can_edit_members":
		return f.CanEditMembers
	case "can_delete_members":
		return f.CanDeleteMembers
	case "can_view_inventory":
		return f.CanViewInventory
	case "can_add_products":
		return f.CanAddProducts
	case "can_edit_products":
		return f.CanEditProducts
	case "can_delete_products":
		return f.CanDeleteProducts
	case "can_manage_stock":
		return f.CanManageStock
	case "can_view_sales":
		return f.CanViewSales
	case "can_create_sales":
		return f.CanCreateSales
	case "can_edit_sales":
		return f.CanEditSales
	case "can_delete_sales":
		return f.CanDeleteSales
	case "can_process_payments":
		return f.CanProcessPayments
	case "can_view_finances":
		return f.CanViewFinances
	case "can_create_transactions":
		return f.CanCreateTransactions
	case "can_validate_transactions":
		return f.CanValidateTransactions
	case "can_manage_accounts":
		return f.CanManageAccounts
	case "can_manage_loans":
		return f.CanManageLoans
	case "can_view_basic_reports":
		return f.CanViewBasicReports
	case "can_view_financial_reports":
		return f.CanViewFinancialReports
	case "can_export_data":
		return f.CanExportData
	case "can_manage_users":
		return f.CanManageUsers
	case "can_manage_permissions":
		return f.CanManagePermissions
	case "can_view_logs":
		return f.CanViewLogs
	case "can_backup_data":
		return f.CanBackupData
	}
	return false
}

// CooperativeAccess represents cooperative_accesses table (per-user permission set)
type CooperativeAccess struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	AccessFlags `gorm:"embedded"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (CooperativeAccess) TableName() string {
	return "cooperative_accesses"
}

// ============================================================
// Members
// ============================================================

// Member statuses
const (
	MemberStatusActive    = "active"
	MemberStatusSuspended = "suspended"
	MemberStatusResigned  = "resigned"
)

// Member represents members table (cooperative adherents, distinct from users)
type Member struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	MemberNumber string         `gorm:"size:20;uniqueIndex;not null" json:"member_number"` // COOP-YYYY-NNNN
	FirstName    string         `gorm:"size:100;not null" json:"first_name"`
	LastName     string         `gorm:"size:100;not null" json:"last_name"`
	Email        string         `gorm:"size:100" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Address      string         `gorm:"type:text" json:"address"`
	Status       string         `gorm:"size:20;not null;default:'active'" json:"status"`
	JoinDate     time.Time      `gorm:"type:date;not null" json:"join_date"`
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// FullName returns the member's display name
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// ============================================================
// Auth
// ============================================================

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts & access
		&UserRole{},
		&User{},
		&CooperativeAccess{},
		&RefreshToken{},
		// Members
		&Member{},
		// Finance
		&Account{},
		&FinancialTransaction{},
		&MemberLoan{},
		&MemberSavings{},
		// Inventory
		&ProductCategory{},
		&Product{},
		&StockMovement{},
		// Sales
		&Sale{},
		&SaleItem{},
		// Numbering
		&PeriodSequence{},
	)
}
