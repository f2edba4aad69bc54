package repository

import (
	"errors"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"gorm.io/gorm"
)

// GroupRepository study-group membership access interface
type GroupRepository interface {
	FindByID(id int64) (*domain.StudyGroup, error)
	IsApprovedMember(userID string, groupID int64) (bool, error)
	ListApprovedMemberIDs(groupID int64) ([]string, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByID finds a non-deleted study group by ID
func (r *groupRepository) FindByID(id int64) (*domain.StudyGroup, error) {
	var group domain.StudyGroup
	if err := r.db.Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// IsApprovedMember reports whether the user has an approved, non-deleted
// membership in the group
func (r *groupRepository) IsApprovedMember(userID string, groupID int64) (bool, error) {
	var gm domain.GroupMember
	err := r.db.Select("id").
		Where("group_id = ? AND member_id = ? AND status = ?",
			groupID, userID, domain.MembershipStatusApproved).
		First(&gm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListApprovedMemberIDs returns the member IDs of all approved,
// non-deleted members of the group
func (r *groupRepository) ListApprovedMemberIDs(groupID int64) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, domain.MembershipStatusApproved).
		Pluck("member_id", &ids).Error
	return ids, err
}
