package domain

import (
	"time"

	"gorm.io/gorm"
)

// Member represents a platform user account
type Member struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       string         `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	Nickname     string         `gorm:"column:nickname" json:"nickname"`
	PasswordHash string         `gorm:"column:password_hash" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// LoginRequest represents a login request
type LoginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
}
