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

func (h *Handler) CreateCarpool(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		EventID           *string    `json:"event_id"`
		DepartureLocation string     `json:"departure_location" validate:"required"`
		DepartureTime     time.Time  `json:"departure_time" validate:"required"`
		ReturnTime        *time.Time `json:"return_time"`
		AvailableSeats    int        `json:"available_seats" validate:"required,gt=0"`
		Notes             *string    `json:"notes"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating carpool",
		zap.String("departure_location", req.DepartureLocation),
		zap.Int("available_seats", req.AvailableSeats))

	carpool, err := h.carpool.Create(e.Request().Context(), id, &model.Carpool{
		EventID:           req.EventID,
		DepartureLocation: req.DepartureLocation,
		DepartureTime:     req.DepartureTime,
		ReturnTime:        req.ReturnTime,
		AvailableSeats:    req.AvailableSeats,
		Notes:             req.Notes,
	})
	if err != nil {
		l.Error("failed to create carpool", zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("carpool", id.TeamID, notify.ActionCreated)

	return e.JSON(http.StatusCreated, carpool)
}

// ListCarpools filters by optional query params: class (car|bus), sort
// (departure|seats).
func (h *Handler) ListCarpools(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	q := service.CarpoolListQuery{
		Class: model.VehicleClass(e.QueryParam("class")),
		Sort:  service.CarpoolSort(e.QueryParam("sort")),
	}

	carpools, err := h.carpool.List(e.Request().Context(), id, q)
	if err != nil {
		l.Error("failed to list carpools", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, carpools)
}

func (h *Handler) JoinCarpool(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	carpoolID := e.Param("id")

	var req struct {
		PickupLocation *string `json:"pickup_location"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("joining carpool", zap.String("carpool_id", carpoolID))

	rider, err := h.carpool.Join(e.Request().Context(), id, carpoolID, req.PickupLocation)
	if err != nil {
		l.Warn("failed to join carpool", zap.String("carpool_id", carpoolID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("carpool", id.TeamID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, rider)
}

func (h *Handler) LeaveCarpool(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	carpoolID := e.Param("id")

	l.Info("leaving carpool", zap.String("carpool_id", carpoolID))

	if err := h.carpool.Leave(e.Request().Context(), id, carpoolID); err != nil {
		l.Warn("failed to leave carpool", zap.String("carpool_id", carpoolID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("carpool", id.TeamID, notify.ActionUpdated)

	return e.NoContent(http.StatusNoContent)
}
