package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// MessageHandler exposes direct and group messaging over HTTP
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// SendDirect handles POST /api/v1/messages
func (h *MessageHandler) SendDirect(c *gin.Context) {
	var req domain.SendDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "receiver_id and body are required")
		return
	}

	msg, err := h.svc.SendDirect(middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.CreatedResponse(c, msg)
}

// ListConversations handles GET /api/v1/messages/conversations
func (h *MessageHandler) ListConversations(c *gin.Context) {
	conversations, err := h.svc.ListConversations(middleware.GetUserID(c))
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, conversations, nil)
}

// ListConversation handles GET /api/v1/messages/with/:userID
func (h *MessageHandler) ListConversation(c *gin.Context) {
	skip, take := pageParams(c)
	msgs, err := h.svc.ListConversation(middleware.GetUserID(c), c.Param("userID"), skip, take)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, msgs, &common.Meta{Skip: skip, Take: take})
}

// MarkRead handles POST /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.svc.MarkMessageRead(middleware.GetUserID(c), id); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

// MarkConversationRead handles POST /api/v1/messages/conversations/:userID/read
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	if err := h.svc.MarkConversationRead(middleware.GetUserID(c), c.Param("userID")); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

// Delete handles DELETE /api/v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.svc.DeleteMessage(middleware.GetUserID(c), id); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

// SendGroup handles POST /api/v1/groups/:id/messages
func (h *MessageHandler) SendGroup(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid group ID")
		return
	}

	var req domain.SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "body is required")
		return
	}

	msg, err := h.svc.SendGroup(middleware.GetUserID(c), groupID, &req)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.CreatedResponse(c, msg)
}

// ListGroupMessages handles GET /api/v1/groups/:id/messages
func (h *MessageHandler) ListGroupMessages(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid group ID")
		return
	}

	skip, take := pageParams(c)
	msgs, err := h.svc.ListGroupMessages(middleware.GetUserID(c), groupID, skip, take)
	if err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, msgs, &common.Meta{Skip: skip, Take: take})
}

// DeleteGroupMessage handles DELETE /api/v1/groups/:id/messages/:messageID
func (h *MessageHandler) DeleteGroupMessage(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid group ID")
		return
	}
	messageID, err := strconv.ParseInt(c.Param("messageID"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.svc.DeleteGroupMessage(middleware.GetUserID(c), groupID, messageID); err != nil {
		common.ServiceErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, nil, nil)
}

func pageParams(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	take, _ := strconv.Atoi(c.DefaultQuery("take", "30"))
	return skip, take
}
