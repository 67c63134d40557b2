package services

import (
	"context"
	"errors"
	"log"

	"coop-backoffice/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Access errors
var (
	ErrAccessNotFound = errors.New("cooperative access not found")
)

// roleAccessMatrix maps each role name to the fine-grained permission set
// applied when the role is assigned. Roles outside the matrix fall back to
// the member profile.
var roleAccessMatrix = map[string]models.AccessFlags{
	models.RoleAdmin: {
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
	models.RoleManager: {
		CanViewDashboard:        true,
		CanManageOwnProfile:     true,
		CanViewMembers:          true,
		CanAddMembers:           true,
		CanEditMembers:          true,
		CanViewInventory:        true,
		CanAddProducts:          true,
		CanEditProducts:         true,
		CanManageStock:          true,
		CanViewSales:            true,
		CanCreateSales:          true,
		CanEditSales:            true,
		CanProcessPayments:      true,
		CanViewFinances:         true,
		CanValidateTransactions: true,
		CanManageLoans:          true,
		CanViewBasicReports:     true,
		CanViewFinancialReports: true,
		CanExportData:           true,
	},
	models.RoleAccountant: {
		CanViewDashboard:        true,
		CanManageOwnProfile:     true,
		CanViewMembers:          true,
		CanViewSales:            true,
		CanProcessPayments:      true,
		CanViewFinances:         true,
		CanCreateTransactions:   true,
		CanValidateTransactions: true,
		CanManageAccounts:       true,
		CanManageLoans:          true,
		CanViewBasicReports:     true,
		CanViewFinancialReports: true,
		CanExportData:           true,
	},
	models.RoleSalesperson: {
		CanViewDashboard:    true,
		CanManageOwnProfile: true,
		CanViewMembers:      true,
		CanAddMembers:       true,
		CanViewInventory:    true,
		CanViewSales:        true,
		CanCreateSales:      true,
		CanEditSales:        true,
		CanProcessPayments:  true,
		CanViewBasicReports: true,
	},
	models.RoleStockkeeper: {
		CanViewDashboard:    true,
		CanManageOwnProfile: true,
		CanViewInventory:    true,
		CanAddProducts:      true,
		CanEditProducts:     true,
		CanManageStock:      true,
		CanViewSales:        true,
		CanViewBasicReports: true,
	},
	models.RoleMember: {
		CanViewDashboard:    true,
		CanManageOwnProfile: true,
	},
	models.RoleVisitor: {
		CanManageOwnProfile: true,
	},
}

// AccessService manages per-user permission rows and keeps them in sync
// with the assigned role.
type AccessService struct {
	db *gorm.DB
}

// NewAccessService creates a new access service
func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// FlagsForRole returns the permission set for a role name. Unknown roles
// get the member profile.
func FlagsForRole(roleName string) models.AccessFlags {
	if flags, ok := roleAccessMatrix[roleName]; ok {
		return flags
	}
	return roleAccessMatrix[models.RoleMember]
}

// EnsureAccess creates the access row for a new user with the baseline
// permissions (dashboard + own profile). Does nothing if a row exists.
func (s *AccessService) EnsureAccess(ctx context.Context, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CooperativeAccess{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	access := &models.CooperativeAccess{
		UserID: userID,
		AccessFlags: models.AccessFlags{
			CanViewDashboard:    true,
			CanManageOwnProfile: true,
		},
	}
	return s.db.WithContext(ctx).Create(access).Error
}

// SyncWithRole overwrites the user's permission flags from the role matrix.
// A user without an access row is skipped silently.
func (s *AccessService) SyncWithRole(ctx context.Context, userID uint, roleName string) error {
	var access models.CooperativeAccess
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	access.AccessFlags = FlagsForRole(roleName)
	if err := s.db.WithContext(ctx).Save(&access).Error; err != nil {
		return err
	}

	log.Printf("✅ Access synced for user %d [role: %s]", userID, roleName)
	return nil
}

// GetByUserID returns the access row for a user
func (s *AccessService) GetByUserID(ctx context.Context, userID uint) (*models.CooperativeAccess, error) {
	var access models.CooperativeAccess
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, err
	}
	return &access, nil
}

// UpdateFlags replaces the user's permission flags with an explicit set
func (s *AccessService) UpdateFlags(ctx context.Context, userID uint, flags models.AccessFlags) (*models.CooperativeAccess, error) {
	access, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	access.AccessFlags = flags
	if err := s.db.WithContext(ctx).Save(access).Error; err != nil {
		return nil, err
	}
	return access, nil
}

// HasPermission checks a single named permission for a user. Users without
// an access row have no permissions.
func (s *AccessService) HasPermission(ctx context.Context, userID uint, permission string) (bool, error) {
	access, err := s.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrAccessNotFound) {
			return false, nil
		}
		return false, err
	}
	return access.Has(permission), nil
}
