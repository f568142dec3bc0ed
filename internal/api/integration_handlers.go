package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/firstapi"
	"github.com/robostack/teamhub/pkg/logger"
)

// IntegrationHandler proxies filtered schedule queries to the FIRST event
// APIs so client credentials never leave the server.
type IntegrationHandler struct {
	frc *firstapi.FRCClient
	ftc *firstapi.FTCClient
}

func NewIntegrationHandler(frc *firstapi.FRCClient, ftc *firstapi.FTCClient) *IntegrationHandler {
	return &IntegrationHandler{frc: frc, ftc: ftc}
}

func (h *IntegrationHandler) FRCEvents(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var filter firstapi.Filter
	if err := e.Bind(&filter); err != nil {
		return e.JSON(http.StatusBadRequest, integrationError("invalid filter payload", err))
	}

	events, err := h.frc.Events(e.Request().Context(), filter)
	if err != nil {
		l.Error("FRC events fetch failed", zap.Error(err))
		return e.JSON(http.StatusInternalServerError, integrationError("failed to fetch FRC events", err))
	}

	return e.JSON(http.StatusOK, struct {
		Events []firstapi.FRCEvent `json:"events"`
	}{Events: events})
}

func (h *IntegrationHandler) FTCEvents(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var filter firstapi.Filter
	if err := e.Bind(&filter); err != nil {
		return e.JSON(http.StatusBadRequest, integrationError("invalid filter payload", err))
	}

	events, err := h.ftc.Events(e.Request().Context(), filter)
	if err != nil {
		l.Error("FTC events fetch failed", zap.Error(err))
		return e.JSON(http.StatusInternalServerError, integrationError("failed to fetch FTC events", err))
	}

	return e.JSON(http.StatusOK, struct {
		Events []firstapi.FTCEvent `json:"events"`
	}{Events: events})
}

func integrationError(message string, err error) map[string]string {
	return map[string]string{
		"error":   message,
		"details": err.Error(),
	}
}
