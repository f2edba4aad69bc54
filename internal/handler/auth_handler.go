package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// AuthHandler exposes login over HTTP
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "user_id and password are required")
		return
	}

	resp, err := h.svc.Login(&req)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}
