package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rentpayout/internal/app"
	"rentpayout/internal/handlers"
	"rentpayout/internal/routes"
	"rentpayout/internal/stream"
	"rentpayout/pkg/config"

	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatal(err)
	}
	logger := config.InitLogger(cfg.Logger)
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal(err)
	}

	hub := stream.NewHub(logger, routes.OriginChecker(cfg.Server.AllowedOrigins))
	defer hub.Close()

	a, err := app.New(cfg, logger, hub)
	if err != nil {
		logger.Fatal(err)
	}
	defer a.Close()

	h := handlers.NewPayoutHandler(a.Engine, a.Store, cfg.Payout.RunTimeout, logger)
	r := routes.SetupRouter(cfg.Server, h, hub, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("> payout API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("> shutting down payout API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
}
