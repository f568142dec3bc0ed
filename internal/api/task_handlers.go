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

func (h *Handler) CreateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	var req struct {
		Title          string             `json:"title" validate:"required"`
		Description    *string            `json:"description"`
		Status         model.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
		Priority       model.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
		DueDate        *time.Time         `json:"due_date"`
		AssignedTo     *string            `json:"assigned_to"`
		Tags           []string           `json:"tags"`
		EstimatedHours *float64           `json:"estimated_hours"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating task", zap.String("title", req.Title))

	task, err := h.task.CreateTask(e.Request().Context(), id, &model.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		AssignedTo:     req.AssignedTo,
		Tags:           req.Tags,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		l.Error("failed to create task", zap.String("title", req.Title), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("task", id.TeamID, notify.ActionCreated)

	return e.JSON(http.StatusCreated, task)
}

// ListTasks filters by optional query params: status, assigned_to.
func (h *Handler) ListTasks(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	q := service.TaskListQuery{}
	if s := e.QueryParam("status"); s != "" {
		status := model.TaskStatus(s)
		q.Status = &status
	}
	if a := e.QueryParam("assigned_to"); a != "" {
		q.AssignedTo = &a
	}

	tasks, err := h.task.ListTasks(e.Request().Context(), id, q)
	if err != nil {
		l.Error("failed to list tasks", zap.String("team_id", id.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, tasks)
}

func (h *Handler) UpdateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, svcErr := h.identity(e)
	if svcErr != nil {
		return h.transportError(e, svcErr)
	}

	taskID := e.Param("id")

	var req struct {
		Status      *model.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
		AssignedTo  *string           `json:"assigned_to"`
		ActualHours *float64          `json:"actual_hours" validate:"omitempty,gte=0"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	task, err := h.task.UpdateTask(e.Request().Context(), id, taskID, service.UpdateTaskInput{
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		ActualHours: req.ActualHours,
	})
	if err != nil {
		l.Error("failed to update task", zap.String("task_id", taskID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	h.publish("task", id.TeamID, notify.ActionUpdated)

	return e.JSON(http.StatusOK, task)
}
