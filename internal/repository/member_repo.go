package repository

import (
	"errors"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository member data access interface
type MemberRepository interface {
	FindByUserID(userID string) (*domain.Member, error)
	Exists(userID string) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByUserID finds a non-deleted member by user ID
func (r *memberRepository) FindByUserID(userID string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Exists reports whether a non-deleted member with the user ID exists
func (r *memberRepository) Exists(userID string) (bool, error) {
	var member domain.Member
	err := r.db.Select("id").Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
