package services

import (
	"context"
	"errors"
	"log"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Member errors
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrInvalidMemberStatus = errors.New("invalid member status")
)

// MemberService handles the member registry
type MemberService struct {
	db         *gorm.DB
	memberRepo repositories.MemberRepository
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB, memberRepo repositories.MemberRepository) *MemberService {
	return &MemberService{db: db, memberRepo: memberRepo}
}

// CreateMemberInput represents member registration input
type CreateMemberInput struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	JoinDate  *time.Time `json:"join_date"`
	Notes     string     `json:"notes"`
}

// UpdateMemberInput represents member update input
type UpdateMemberInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

// Create registers a member and allocates the member number
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	joinDate := time.Now()
	if input.JoinDate != nil {
		joinDate = *input.JoinDate
	}

	var member *models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.NextMemberNumber(tx, joinDate)
		if err != nil {
			return err
		}

		member = &models.Member{
			MemberNumber: number,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Email:        input.Email,
			Phone:        input.Phone,
			Address:      input.Address,
			Status:       models.MemberStatusActive,
			JoinDate:     joinDate,
			Notes:        input.Notes,
		}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member registered: %s (%s)", member.FullName(), member.MemberNumber)
	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// Update updates member fields
func (s *MemberService) Update(ctx context.Context, id uint, input *UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		switch *input.Status {
		case models.MemberStatusActive, models.MemberStatusSuspended, models.MemberStatusResigned:
			member.Status = *input.Status
		default:
			return nil, ErrInvalidMemberStatus
		}
	}
	if input.FirstName != nil {
		member.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		member.LastName = *input.LastName
	}
	if input.Email != nil {
		member.Email = *input.Email
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.Address != nil {
		member.Address = *input.Address
	}
	if input.Notes != nil {
		member.Notes = *input.Notes
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete soft deletes a member
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.memberRepo.Delete(ctx, id)
}

// List lists members with pagination and filters
func (s *MemberService) List(ctx context.Context, offset, limit int, status, search string) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit, status, search)
}
