package handlers

import (
	"net/http"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/logging"
	"github.com/1auto-market/vehiclestore-backend/internal/middleware"
	"github.com/1auto-market/vehiclestore-backend/internal/socket"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Hub      *socket.Hub
	Roles    middleware.RoleLookup
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" or an empty
// list accepts any origin.
func NewWebSocketHandler(hub *socket.Hub, allowedOrigins []string, roles middleware.RoleLookup) *WebSocketHandler {
	origins := map[string]bool{}
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}
	return &WebSocketHandler{
		Hub:   hub,
		Roles: roles,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origins["*"] || origin == "" || origins[origin]
			},
		},
	}
}

// ServeWs upgrades an administrator's connection to the live push channel.
// Browsers cannot set headers on websocket requests, so the token travels in ?token=.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}
	d := middleware.Authorize(token)
	if d.Outcome != middleware.Allowed {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid or expired token"))
		return
	}
	p, err := middleware.Refresh(c.Request.Context(), h.Roles, d.Principal)
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.IsAdmin() {
		c.JSON(http.StatusForbidden, utils.ErrorResponse(domain.MsgForbidden))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.FromContext(c).WithError(err).Warn("Failed to upgrade connection")
		return
	}
	h.Hub.Serve(socket.NewClient(p.UserID.Hex(), conn))
}
