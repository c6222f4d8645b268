package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"rentpayout/internal/app"
	"rentpayout/internal/payout"
	"rentpayout/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatal(err)
	}
	log := config.InitLogger(cfg.Logger)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Info("> initializing daily payout schedule")

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.VerbosePrintfLogger(log))),
	)

	_, err = c.AddFunc(cfg.Payout.Cron, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Payout.RunTimeout)
		defer cancel()
		if _, err := a.Engine.Run(runCtx, payout.TriggerCron); err != nil {
			log.Errorf("> daily payout run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("> failed to add payout job: %v", err)
	}

	log.Infof("> payout schedule started with spec %q", cfg.Payout.Cron)
	c.Start()

	<-ctx.Done()
	log.Info("> stopping payout schedule, waiting for the running job")
	<-c.Stop().Done()
}
