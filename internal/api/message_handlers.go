package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/pkg/logger"
)

func (h *Handler) PostMessage(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		Content          string            `json:"content" validate:"required"`
		MessageType      model.MessageType `json:"message_type" validate:"omitempty,oneof=chat task carpool resource"`
		TaskID           *string           `json:"task_id"`
		CarpoolID        *string           `json:"carpool_id"`
		ResourceCategory *string           `json:"resource_category"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	msg, err := h.message.Post(e.Request().Context(), id, &model.Message{
		Content:          req.Content,
		MessageType:      req.MessageType,
		TaskID:           req.TaskID,
		CarpoolID:        req.CarpoolID,
		ResourceCategory: req.ResourceCategory,
	})
	if err != nil {
		l.Error("failed to post message", zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("message", id.TeamID, notify.ActionCreated)

	return e.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListMessages(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	messages, err := h.message.List(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to list messages", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, messages)
}

func (h *Handler) PinMessage(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	messageID := e.Param("id")

	var req struct {
		Pinned bool `json:"pinned"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("setting message pin",
		zap.String("message_id", messageID),
		zap.Bool("pinned", req.Pinned))

	msg, err := h.message.SetPinned(e.Request().Context(), id, messageID, req.Pinned)
	if err != nil {
		l.Error("failed to pin message", zap.String("message_id", messageID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("message", id.TeamID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, msg)
}
