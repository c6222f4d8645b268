package app

import (
	"fmt"

	"rentpayout/internal/events"
	"rentpayout/internal/payout"
	"rentpayout/pkg/config"

	"github.com/sirupsen/logrus"
)

// App holds the dependencies shared by the payout binaries
type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	Store     *payout.GormStore
	Engine    *payout.Engine
	Publisher *config.Publisher
}

// New connects to the database and, when configured, RabbitMQ, then builds
// the payout engine. extra notifiers are told about every payout alongside the
// queue notifier.
func New(cfg *config.Config, log *logrus.Logger, extra ...payout.Notifier) (*App, error) {
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("> database connection initialized")

	a := &App{Config: cfg, Log: log, Store: payout.NewGormStore(db)}

	notifiers := payout.Notifiers(extra)
	if cfg.RabbitMQ.Enabled() {
		if _, err := config.InitRabbitMQ(cfg.RabbitMQ); err != nil {
			a.Close()
			return nil, err
		}
		pub, err := config.NewPublisher()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
		a.Publisher = pub
		notifiers = append(notifiers, events.NewQueueNotifier(pub, cfg.Payout.CreditedQueue, cfg.Payout.RunFinishedQueue))
	} else {
		log.Info("> RabbitMQ not configured, payout events will not be published")
	}

	a.Engine = payout.NewEngine(a.Store,
		payout.WithNotifier(notifiers),
		payout.WithLogger(log),
		payout.WithWorkers(cfg.Payout.Workers),
	)
	return a, nil
}

// Close releases the broker and database connections
func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if config.RabbitMQ != nil {
		config.RabbitMQ.Close()
	}
	if config.DB != nil {
		if sqlDB, err := config.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
