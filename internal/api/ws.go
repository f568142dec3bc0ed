package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/internal/service"
	"github.com/robostack/teamhub/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the SPA origin; auth happens via the
	// bearer token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscribe upgrades the connection and attaches it to the caller's team
// change feed.
func (h *Handler) Subscribe(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}
	if !id.OnTeam() {
		return h.transportError(e, service.NewError(service.ErrorCodeNotOnTeam, "join a team to subscribe"))
	}

	conn, err := upgrader.Upgrade(e.Response(), e.Request(), nil)
	if err != nil {
		l.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	notify.NewClient(h.hub, conn, id.TeamID, id.UserID).Start()
	return nil
}
