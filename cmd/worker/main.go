package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"rentpayout/internal/app"
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
	if !cfg.RabbitMQ.Enabled() {
		logger.Fatal("RABBITMQ_HOST is required for the payout worker")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer a.Close()

	msgConsumer, err := config.NewConsumer(cfg.Payout.RequestQueue, cfg.RabbitMQ.RequeueDelay)
	if err != nil {
		logger.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("> payout worker started, waiting for messages on %s", cfg.Payout.RequestQueue)

	handler := newRunRequestHandler(a.Engine, cfg.Payout.RunTimeout, logger)
	if err := msgConsumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
		logger.Fatalf("consumer stopped: %v", err)
	}
	logger.Info("> payout worker stopped")
}
