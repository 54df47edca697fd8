package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-reporting-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/config"
	pg "github.com/ogurasousui/codex-reporting-api/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/logging"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logrus.WithError(err).Fatal("failed to load dotenv")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database pool")
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	compensationRepo := postgres.NewCompensationRepository(dbPool)

	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	compensationSvc := compensation.NewService(compensationRepo, employeeRepo, nil, txManager)
	reportingSvc := reporting.NewService(employeeRepo, txManager, reporting.WithTimeout(cfg.Reporting.Timeout))

	httpHandler := handler.NewHandler(handler.Dependencies{
		Employees:      employeeSvc,
		Compensations:  compensationSvc,
		Reporting:      reportingSvc,
		Health:         dbPool,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
	})
	httpServer := server.NewHTTP(cfg.HTTP.ListenAddr, httpHandler.Routes(), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	grpcServer := server.New(cfg.Server.ListenAddr, reportingSvc, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTP.ListenAddr).Info("HTTP server listening")
		return httpServer.Run(gctx)
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.Server.ListenAddr).Info("gRPC server listening")
		return grpcServer.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		dbPool.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
