package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims - studyhub JWT payload
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
}

// Manager issues and verifies JWT tokens
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
	refreshIn time.Duration
}

// NewManager creates a new JWT manager
func NewManager(secret string, expiresIn, refreshIn time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secret),
		expiresIn: expiresIn,
		refreshIn: refreshIn,
	}
}

// GenerateToken creates a signed access token for a user
func (m *Manager) GenerateToken(userID, nickname string) (string, error) {
	return m.generate(userID, nickname, m.expiresIn)
}

// GenerateRefreshToken creates a signed refresh token for a user
func (m *Manager) GenerateRefreshToken(userID string) (string, error) {
	return m.generate(userID, "", m.refreshIn)
}

func (m *Manager) generate(userID, nickname string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
		UserID:   userID,
		Nickname: nickname,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken validates a token string and returns its claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
