package services

import (
	"context"
	"errors"
	"log"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// User errors
var (
	ErrRoleNotFound = errors.New("role not found")
)

// UserService handles user administration
type UserService struct {
	db            *gorm.DB
	userRepo      repositories.UserRepository
	accessService *AccessService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, userRepo repositories.UserRepository, accessService *AccessService) *UserService {
	return &UserService{
		db:            db,
		userRepo:      userRepo,
		accessService: accessService,
	}
}

// UpdateUserInput represents fields an admin may change on a user
type UpdateUserInput struct {
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
	MemberID *uint   `json:"member_id"`
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update updates a user's profile fields
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.MemberID != nil {
		user.MemberID = input.MemberID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft deletes a user
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// SetRole assigns a role to a user and syncs the permission flags
func (s *UserService) SetRole(ctx context.Context, userID uint, roleName string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var role models.UserRole
	if err := s.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	user.RoleID = &role.ID
	user.Role = &role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Role change overwrites the fine-grained flags
	if err := s.accessService.SyncWithRole(ctx, userID, role.Name); err != nil {
		return nil, err
	}

	log.Printf("✅ Role %s assigned to user %s", role.Name, user.Username)
	return user, nil
}

// ListRoles returns all roles ordered by priority
func (s *UserService) ListRoles(ctx context.Context) ([]*models.UserRole, error) {
	var roles []*models.UserRole
	err := s.db.WithContext(ctx).Order("priority ASC").Find(&roles).Error
	return roles, err
}
