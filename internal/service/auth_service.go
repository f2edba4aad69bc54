package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/pkg/jwt"
)

// AuthService handles login and token issuance
type AuthService struct {
	memberRepo repository.MemberRepository
	jwtManager *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(memberRepo repository.MemberRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		jwtManager: jwtManager,
	}
}

// Login verifies credentials and returns a token pair
func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	member, err := s.memberRepo.FindByUserID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(member.UserID, member.Nickname)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(member.UserID)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       member.UserID,
		Nickname:     member.Nickname,
	}, nil
}
