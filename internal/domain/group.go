package domain

import (
	"time"

	"gorm.io/gorm"
)

// Group membership statuses
const (
	MembershipStatusPending  = "pending"
	MembershipStatusApproved = "approved"
)

// Group member roles
const (
	GroupRoleMember = "member"
	GroupRoleAdmin  = "admin"
)

// StudyGroup represents a study group
type StudyGroup struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"column:name" json:"name"`
	OwnerID   string         `gorm:"column:owner_id" json:"owner_id"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (StudyGroup) TableName() string {
	return "study_groups"
}

// GroupMember represents a member's enrollment in a study group.
// Only approved, non-deleted rows grant posting and fan-out rights.
type GroupMember struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GroupID   int64          `gorm:"column:group_id;index:idx_grp_member,priority:1" json:"group_id"`
	MemberID  string         `gorm:"column:member_id;index:idx_grp_member,priority:2" json:"member_id"`
	Status    string         `gorm:"column:status" json:"status"`
	Role      string         `gorm:"column:role" json:"role"`
	JoinedAt  time.Time      `gorm:"column:joined_at" json:"joined_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// CanDeleteGroupMessage reports whether a requester may soft-delete a
// group message: the original author, or the owner of the group.
func CanDeleteGroupMessage(requesterID string, msg *GroupMessage, group *StudyGroup) bool {
	if requesterID == msg.AuthorID {
		return true
	}
	return group != nil && group.OwnerID == requesterID
}
