package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/pkg/logger"
)

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		Name       string `json:"name" validate:"required"`
		TeamNumber *int   `json:"team_number"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating team", zap.String("team_name", req.Name))

	team, err := h.team.CreateTeam(e.Request().Context(), id, req.Name, req.TeamNumber)
	if err != nil {
		l.Error("failed to create team", zap.String("team_name", req.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, team)
}

func (h *Handler) JoinTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		InviteCode string `json:"invite_code" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	team, err := h.team.JoinTeam(e.Request().Context(), id, req.InviteCode)
	if err != nil {
		l.Warn("failed to join team", zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("team", team.ID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, team)
}

func (h *Handler) GetTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	team, members, err := h.team.GetTeam(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to get team", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, struct {
		Team    *model.Team      `json:"team"`
		Members []*model.Profile `json:"members"`
	}{Team: team, Members: members})
}

func (h *Handler) RegenerateInviteCode(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	l.Info("regenerating invite code", zap.String("team_id", id.TeamID))

	code, err := h.team.RegenerateInviteCode(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to regenerate invite code", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, struct {
		InviteCode string `json:"invite_code"`
	}{InviteCode: code})
}

func (h *Handler) SetMemberRole(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	memberID := e.Param("id")

	var req struct {
		Role model.Role `json:"role" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("setting member role",
		zap.String("member_id", memberID),
		zap.String("role", string(req.Role)))

	member, err := h.team.SetMemberRole(e.Request().Context(), id, memberID, req.Role)
	if err != nil {
		l.Error("failed to set member role", zap.String("member_id", memberID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("team", id.TeamID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, member)
}
