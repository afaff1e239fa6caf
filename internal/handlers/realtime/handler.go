package realtime

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/handlers/middleware"
)

// Handler upgrades GET /api/ws.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   ports.Logger
}

// NewHandler accepts connections whose Origin is one of allowedOrigins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewHandler(hub *Hub, allowedOrigins []string, logger ports.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
			},
		},
		logger: logger,
	}
}

// Serve godoc
// @Summary      Realtime lifecycle events
// @Description  Upgrades to a websocket delivering {type, payload, occurred_at} events for the caller.
// @Tags         realtime
// @Success      101
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/ws [get]
func (h *Handler) Serve(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		dto.Abort(c, dto.NewErrorResponse(c, domainerrors.ErrUnauthenticated))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		middleware.LoggerFrom(c, h.logger).Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: user.ID,
		role:   user.Role,
		logger: h.logger,
	}
	if !h.hub.attach(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
