package main

import (
	"flag"

	"rentpayout/pkg/config"

	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	down := flag.Bool("down", false, "roll back the last migration instead of applying pending ones")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatal(err)
	}
	logger := config.InitLogger(cfg.Logger)

	cfg.Database.AutoMigrate = false
	if _, err := config.InitDB(cfg.Database); err != nil {
		logger.Fatal(err)
	}

	if *down {
		err = config.RollbackMigration(cfg.Payout.MigrationsDir)
	} else {
		err = config.ExecuteMigrations(cfg.Payout.MigrationsDir)
	}
	if err != nil {
		logger.Fatal(err)
	}
}
