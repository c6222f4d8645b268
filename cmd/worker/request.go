package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rentpayout/internal/payout"

	"github.com/sirupsen/logrus"
)

// RunRequest asks the worker to run the engine once
type RunRequest struct {
	RequestedBy string     `json:"requested_by"`
	AsOf        *time.Time `json:"as_of,omitempty"`
}

type runner interface {
	Run(ctx context.Context, trigger string) (*payout.Report, error)
	RunAt(ctx context.Context, trigger string, asOf time.Time) (*payout.Report, error)
}

// newRunRequestHandler returns a consumer handler. Malformed or unservable
// requests are dropped by returning nil; a run that could not list
// investments returns its error so the message is redelivered.
func newRunRequestHandler(engine runner, timeout time.Duration, log logrus.FieldLogger) func(context.Context, []byte) error {
	return func(ctx context.Context, body []byte) error {
		var req RunRequest
		if err := json.Unmarshal(body, &req); err != nil {
			log.WithError(err).Error("> dropping malformed run request")
			return nil
		}
		log := log.WithField("requested_by", req.RequestedBy)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var (
			report *payout.Report
			err    error
		)
		if req.AsOf != nil {
			report, err = engine.RunAt(ctx, payout.TriggerQueue, *req.AsOf)
		} else {
			report, err = engine.Run(ctx, payout.TriggerQueue)
		}

		if errors.Is(err, payout.ErrAsOfInFuture) {
			log.WithError(err).Error("> dropping run request")
			return nil
		}
		if err != nil {
			log.WithError(err).Error("> payout run failed, requeueing request")
			return err
		}

		log.WithFields(logrus.Fields{
			"run_id": report.Run.ID,
			"status": report.Run.Status,
		}).Info("> run request handled")
		return nil
	}
}
