package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/internal/service"
)

type Handler struct {
	account  *service.AccountService
	team     *service.TeamService
	event    *service.EventService
	task     *service.TaskService
	calendar *service.CalendarService
	carpool  *service.CarpoolService
	finance  *service.FinanceService
	message  *service.MessageService

	integrations *IntegrationHandler
	hub          *notify.Hub

	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithAccountService(account *service.AccountService) *Handler {
	h.account = account
	return h
}

func (h *Handler) WithTeamService(team *service.TeamService) *Handler {
	h.team = team
	return h
}

func (h *Handler) WithEventService(event *service.EventService) *Handler {
	h.event = event
	return h
}

func (h *Handler) WithTaskService(task *service.TaskService) *Handler {
	h.task = task
	return h
}

func (h *Handler) WithCalendarService(calendar *service.CalendarService) *Handler {
	h.calendar = calendar
	return h
}

func (h *Handler) WithCarpoolService(carpool *service.CarpoolService) *Handler {
	h.carpool = carpool
	return h
}

func (h *Handler) WithFinanceService(finance *service.FinanceService) *Handler {
	h.finance = finance
	return h
}

func (h *Handler) WithMessageService(message *service.MessageService) *Handler {
	h.message = message
	return h
}

func (h *Handler) WithIntegrations(integrations *IntegrationHandler) *Handler {
	h.integrations = integrations
	return h
}

func (h *Handler) WithHub(hub *notify.Hub) *Handler {
	h.hub = hub
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.healthChecker.HealthCheck())

	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)

	secured := e.Group("", AuthMiddleware(h.account))

	secured.GET("/ws", h.Subscribe)

	secured.POST("/teams", h.CreateTeam)
	secured.POST("/teams/join", h.JoinTeam)
	secured.GET("/teams/me", h.GetTeam)
	secured.POST("/teams/invite/regenerate", h.RegenerateInviteCode)
	secured.PATCH("/teams/members/:id/role", h.SetMemberRole)

	secured.POST("/events", h.CreateEvent)
	secured.GET("/events", h.ListEvents)
	secured.POST("/events/:id/rsvp", h.RSVP)
	secured.POST("/events/:id/checkin", h.CheckIn)
	secured.GET("/events/:id/attendance", h.ListAttendance)

	secured.GET("/calendar", h.Calendar)

	secured.POST("/tasks", h.CreateTask)
	secured.GET("/tasks", h.ListTasks)
	secured.PATCH("/tasks/:id", h.UpdateTask)

	secured.POST("/carpools", h.CreateCarpool)
	secured.GET("/carpools", h.ListCarpools)
	secured.POST("/carpools/:id/join", h.JoinCarpool)
	secured.POST("/carpools/:id/leave", h.LeaveCarpool)

	secured.POST("/finances", h.CreateFinanceRecord)
	secured.GET("/finances", h.ListFinanceRecords)
	secured.GET("/finances/summary", h.FinanceSummary)

	secured.POST("/messages", h.PostMessage)
	secured.GET("/messages", h.ListMessages)
	secured.PATCH("/messages/:id/pin", h.PinMessage)

	secured.POST("/integrations/frc/events", h.integrations.FRCEvents)
	secured.POST("/integrations/ftc/events", h.integrations.FTCEvents)
}

// identity pulls the caller's identity placed on the context by AuthMiddleware.
func (h *Handler) identity(e echo.Context) (auth.Identity, *service.Error) {
	id, ok := auth.IdentityFromContext(e.Request().Context())
	if !ok {
		return auth.Identity{}, service.NewError(service.ErrorCodeUnauthorized, "missing identity")
	}
	return id, nil
}

// publish queues a change notice for the team's websocket subscribers.
func (h *Handler) publish(entity, teamID, action string) {
	if h.hub == nil || teamID == "" {
		return
	}
	h.hub.Publish(notify.Change{Entity: entity, TeamID: teamID, Action: action})
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeInvalidBody, service.ErrorCodeInviteInvalid:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeUnauthorized:
		return e.JSON(http.StatusUnauthorized, response)
	case service.ErrorCodeForbidden, service.ErrorCodeNotOnTeam:
		return e.JSON(http.StatusForbidden, response)
	case service.ErrorCodeAlreadyExists, service.ErrorCodeTeamExists,
		service.ErrorCodeCarpoolFull, service.ErrorCodeAlreadyRiding,
		service.ErrorCodeDriverJoin, service.ErrorCodeNotRiding:
		return e.JSON(http.StatusConflict, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
