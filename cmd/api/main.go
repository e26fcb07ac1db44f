package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/config"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/database"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/middleware"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/router"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/validator"
)

// @title           Painel Financeiro API
// @version         1.0
// @description     Personal finance ledger: monthly balances, credit card bucket, piggy banks and recurring entries.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("ENV"), "")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(appConfig.Database)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := events.Connect(appConfig.AMQPURL, appConfig.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnw("failed to close event publisher", "error", err)
		}
	}()

	svc := router.NewServices(dbManager.DB(), appConfig.CardCategoryMarker, publisher)
	tokens := middleware.NewTokenIssuer(appConfig.JWTSecret, appConfig.JWTExpirationDur)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router.New(svc, tokens),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Painel Financeiro API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
