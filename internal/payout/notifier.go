package payout

import (
	"context"
	"errors"
	"time"

	"rentpayout/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutCredited describes a settlement that landed in the store
type PayoutCredited struct {
	RunID        uuid.UUID       `json:"run_id"`
	PayoutID     uuid.UUID       `json:"payout_id"`
	InvestmentID uuid.UUID       `json:"investment_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Periods      int64           `json:"periods"`
	Amount       decimal.Decimal `json:"amount"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	Completed    bool            `json:"completed"`
}

// Notifier is told about credited payouts and finished runs.
// Errors are logged by the engine and never change a payout outcome.
type Notifier interface {
	PayoutCredited(ctx context.Context, event PayoutCredited) error
	RunFinished(ctx context.Context, run *models.PayoutRun) error
}

// Notifiers fans events out to several notifiers
type Notifiers []Notifier

func (ns Notifiers) PayoutCredited(ctx context.Context, event PayoutCredited) error {
	var errs []error
	for _, n := range ns {
		if err := n.PayoutCredited(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ns Notifiers) RunFinished(ctx context.Context, run *models.PayoutRun) error {
	var errs []error
	for _, n := range ns {
		if err := n.RunFinished(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
