package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/core"
)

// SessionHandlers reports the live session registry.
type SessionHandlers struct {
	router *core.Router
	log    *zerolog.Logger
}

// NewSessionHandlers creates a new session handlers instance.
func NewSessionHandlers(router *core.Router, logger *zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{router: router, log: logger}
}

// SessionsResponse is the body of GET /api/sessions.
type SessionsResponse struct {
	Capacity      int                `json:"capacity"`
	Connected     int                `json:"connected"`
	Authenticated int                `json:"authenticated"`
	Sessions      []core.SessionInfo `json:"sessions"`
}

// List returns every occupied slot in slot order.
// GET /api/sessions
func (h *SessionHandlers) List(c *gin.Context) {
	reg := h.router.Registry()
	snapshot := reg.Snapshot()

	resp := SessionsResponse{
		Capacity: reg.Capacity(),
		Sessions: make([]core.SessionInfo, 0, len(snapshot)),
	}
	for _, s := range snapshot {
		info := s.Info()
		if info.State == core.StateAuthenticated.String() {
			resp.Authenticated++
		}
		resp.Sessions = append(resp.Sessions, info)
	}
	resp.Connected = len(resp.Sessions)

	c.JSON(http.StatusOK, resp)
}
