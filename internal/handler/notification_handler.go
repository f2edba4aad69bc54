package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// NotificationHandler exposes the notification inbox over HTTP
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	skip, take := pageParams(c)
	items, total, err := h.svc.GetList(middleware.GetUserID(c), skip, take)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, items, &common.Meta{Skip: skip, Take: take, Total: total})
}

// UnviewedCount handles GET /api/v1/notifications/unviewed-count
func (h *NotificationHandler) UnviewedCount(c *gin.Context) {
	summary, err := h.svc.GetUnviewedCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, summary, nil)
}

// MarkViewed handles POST /api/v1/notifications/:id/viewed
func (h *NotificationHandler) MarkViewed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.svc.MarkAsViewed(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

// MarkAllViewed handles POST /api/v1/notifications/viewed-all
func (h *NotificationHandler) MarkAllViewed(c *gin.Context) {
	if err := h.svc.MarkAllAsViewed(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

// Delete handles DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}
