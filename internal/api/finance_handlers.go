package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/pkg/logger"
)

func (h *Handler) CreateFinanceRecord(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		Type            model.FinanceType `json:"type" validate:"required,oneof=income expense"`
		Amount          float64           `json:"amount" validate:"gte=0"`
		Description     string            `json:"description" validate:"required"`
		Category        *string           `json:"category"`
		ExpenseCategory *string           `json:"expense_category"`
		IncomeSource    *string           `json:"income_source"`
		Date            time.Time         `json:"date" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating finance record",
		zap.String("type", string(req.Type)),
		zap.Float64("amount", req.Amount))

	record, err := h.finance.CreateRecord(e.Request().Context(), id, &model.FinanceRecord{
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        req.Category,
		ExpenseCategory: req.ExpenseCategory,
		IncomeSource:    req.IncomeSource,
		Date:            req.Date,
	})
	if err != nil {
		l.Error("failed to create finance record", zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("finance", id.TeamID, notify.ActionCreated)

	return e.JSON(http.StatusCreated, record)
}

func (h *Handler) ListFinanceRecords(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	records, err := h.finance.ListRecords(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to list finance records", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, records)
}

func (h *Handler) FinanceSummary(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	summary, err := h.finance.Summary(e.Request().Context(), id)
	if err != nil {
		l.Error("failed to build finance summary", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, summary)
}
