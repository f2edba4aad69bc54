package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/ws"
	"github.com/studyhub/studyhub-backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front; the upgrade
	// itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated requests to WebSocket connections
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws. Runs behind JWTAuth (token query parameter
// supported for browser clients).
func (h *WSHandler) Serve(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
