package main

import (
	"context"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/api"
	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/config"
	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/firstapi"
	"github.com/robostack/teamhub/internal/notify"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/internal/service"
	"github.com/robostack/teamhub/pkg/logger"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application")

	cfg := config.Load()
	if cfg.TokenSecret != "" {
		auth.TokenSecretKey = cfg.TokenSecret
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	teamRepo := repository.NewPgxTeamRepository(pool)
	profileRepo := repository.NewPgxProfileRepository(pool)
	eventRepo := repository.NewPgxEventRepository(pool)
	taskRepo := repository.NewPgxTaskRepository(pool)
	carpoolRepo := repository.NewPgxCarpoolRepository(pool)
	financeRepo := repository.NewPgxFinanceRepository(pool)
	messageRepo := repository.NewPgxMessageRepository(pool)

	frcClient := firstapi.NewFRCClient(cfg.FirstAPIUser, cfg.FRCAPIToken)
	ftcClient := firstapi.NewFTCClient(cfg.FirstAPIUser, cfg.FTCAPIToken)

	account := service.NewAccountService(transactor).WithProfileRepo(profileRepo)
	team := service.NewTeamService(transactor).WithTeamRepo(teamRepo).WithProfileRepo(profileRepo)
	event := service.NewEventService(transactor).WithEventRepo(eventRepo).WithFinanceRepo(financeRepo)
	task := service.NewTaskService().WithTaskRepo(taskRepo)
	calendar := service.NewCalendarService(cfg.DefaultSeason).
		WithEventRepo(eventRepo).
		WithTaskRepo(taskRepo).
		WithCompetitionSources(frcClient, ftcClient)
	carpool := service.NewCarpoolService(transactor).WithCarpoolRepo(carpoolRepo)
	finance := service.NewFinanceService().WithFinanceRepo(financeRepo)
	message := service.NewMessageService().WithMessageRepo(messageRepo)

	hub := notify.NewHub(logger)
	go hub.Run()

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger).
		WithHealthChecker(healthChecker).
		WithAccountService(account).
		WithTeamService(team).
		WithEventService(event).
		WithTaskService(task).
		WithCalendarService(calendar).
		WithCarpoolService(carpool).
		WithFinanceService(finance).
		WithMessageService(message).
		WithIntegrations(api.NewIntegrationHandler(frcClient, ftcClient)).
		WithHub(hub)

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err = e.Start(cfg.Addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
