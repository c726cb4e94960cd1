package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rosterly/rosterly-backend/internal/service"
	ws "github.com/rosterly/rosterly-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live dashboard statistics to admin clients. A snapshot
// is pushed on connect and after every record mutation (via the hub).
type WSHandler struct {
	hub              *ws.Hub
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, analyticsService *service.AnalyticsService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:              hub,
		analyticsService: analyticsService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// DashboardStream godoc
// WS /ws/v1/admin/dashboard/stream
func (h *WSHandler) DashboardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	client := h.hub.Register(conn)
	defer h.hub.Unregister(client)

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Dashboard connected")

	// Initial snapshot so the dashboard renders without waiting for a change.
	if stats, err := h.analyticsService.Dashboard(c.Request.Context()); err == nil {
		if err := client.Send(ws.SnapshotMessage{Event: ws.EventSnapshot, Stats: stats}); err != nil {
			return
		}
	}

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Dashboard disconnected")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			if err := client.Send(ws.PongMessage{Event: ws.EventPong}); err != nil {
				return
			}
		case ws.ActionRefresh:
			stats, err := h.analyticsService.Dashboard(c.Request.Context())
			if err != nil {
				_ = client.Send(ws.ErrorMessage{Event: ws.EventError, Error: "stats unavailable"})
				continue
			}
			if err := client.Send(ws.SnapshotMessage{Event: ws.EventSnapshot, Stats: stats}); err != nil {
				return
			}
		default:
			_ = client.Send(ws.ErrorMessage{Event: ws.EventError, Error: "unknown action"})
		}
	}
}
