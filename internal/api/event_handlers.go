package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/internal/service"
	"github.com/robostack/teamhub/pkg/logger"
)

func (h *Handler) CreateEvent(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		Title             string          `json:"title" validate:"required"`
		Description       *string         `json:"description"`
		StartTime         time.Time       `json:"start_time" validate:"required"`
		EndTime           time.Time       `json:"end_time" validate:"required"`
		EventType         model.EventType `json:"event_type" validate:"required,oneof=meeting practice outreach competition other"`
		Location          *string         `json:"location"`
		IsRecurring       bool            `json:"is_recurring"`
		RecurrencePattern *string         `json:"recurrence_pattern"`
		WorkHours         float64         `json:"work_hours" validate:"gte=0"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating event",
		zap.String("title", req.Title),
		zap.String("event_type", string(req.EventType)))

	event, err := h.event.CreateEvent(e.Request().Context(), id, service.CreateEventInput{
		Title:             req.Title,
		Description:       req.Description,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		EventType:         req.EventType,
		Location:          req.Location,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		WorkHours:         req.WorkHours,
	})
	if err != nil {
		l.Error("failed to create event", zap.String("title", req.Title), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("event", id.TeamID, notify.ActionCreated)

	return e.JSON(http.StatusCreated, event)
}

func (h *Handler) ListEvents(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	events, err := h.event.ListEvents(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to list events", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, events)
}

func (h *Handler) RSVP(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	eventID := e.Param("id")

	var req struct {
		Status model.RSVPStatus `json:"status" validate:"required,oneof=yes no maybe"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	rsvp, err := h.event.RSVP(e.Request().Context(), id, eventID, req.Status)
	if err != nil {
		l.Error("failed to record RSVP", zap.String("event_id", eventID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("event", id.TeamID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, rsvp)
}

func (h *Handler) CheckIn(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	eventID := e.Param("id")

	l.Info("checking in", zap.String("event_id", eventID))

	attendance, err := h.event.CheckIn(e.Request().Context(), id, eventID)
	if err != nil {
		l.Error("failed to check in", zap.String("event_id", eventID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, attendance)
}

func (h *Handler) ListAttendance(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	eventID := e.Param("id")

	attendance, err := h.event.ListAttendance(e.Request().Context(), id, eventID)
	if err != nil {
		l.Error("failed to list attendance", zap.String("event_id", eventID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, attendance)
}

// Calendar returns the merged schedule. Query params: type (all|event|task|
// competition), member, from, to (RFC 3339).
func (h *Handler) Calendar(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	q := service.CalendarQuery{
		Type:     service.CalendarTypeFilter(e.QueryParam("type")),
		MemberID: e.QueryParam("member"),
	}
	if from := e.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "invalid 'from' timestamp"))
		}
		q.From = t
	}
	if to := e.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "invalid 'to' timestamp"))
		}
		q.To = t
	}

	view, err := h.calendar.Aggregate(e.Request().Context(), id, q)
	if err != nil {
		l.Error("failed to aggregate calendar", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, view)
}
