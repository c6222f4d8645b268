package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentpayout/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run triggers
const (
	TriggerCron   = "cron"
	TriggerHTTP   = "http"
	TriggerQueue  = "queue"
	TriggerManual = "manual"
)

// DefaultWorkers is the number of investments settled in parallel
const DefaultWorkers = 4

// finishTimeout bounds saving and announcing a run once it has ended
const finishTimeout = 30 * time.Second

// ReasonMaturedNothingOwed tags a completion that paid nothing
const ReasonMaturedNothingOwed = "matured_nothing_owed"

// Store is the data access the engine needs
type Store interface {
	ListActive(ctx context.Context) ([]models.Investment, error)
	ApplySettlement(ctx context.Context, runID uuid.UUID, inv *models.Investment, s Settlement) (*models.Payout, error)
	Complete(ctx context.Context, inv *models.Investment) error
	SaveRun(ctx context.Context, run *models.PayoutRun) error
}

// Outcome of one investment in one run
type Outcome string

const (
	OutcomePaid             Outcome = "paid"
	OutcomePaidAndCompleted Outcome = "paid_and_completed"
	OutcomeCompleted        Outcome = "completed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeFailed           Outcome = "failed"
)

// Result is the per-investment outcome of a run
type Result struct {
	InvestmentID uuid.UUID       `json:"investment_id"`
	Outcome      Outcome         `json:"outcome"`
	Reason       string          `json:"reason,omitempty"`
	Periods      int64           `json:"periods,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Err          error           `json:"-"`
}

// Report is what a run returns: the persisted summary plus per-item results
type Report struct {
	Run     *models.PayoutRun `json:"run"`
	Results []Result          `json:"-"`
}

// Failures returns the results that did not settle
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Engine settles daily returns for all active investments
type Engine struct {
	store    Store
	notifier Notifier
	log      logrus.FieldLogger
	clock    func() time.Time
	workers  int
}

// Option configures an Engine
type Option func(*Engine)

// WithNotifier sets the notifier told about payouts and runs
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces the wall clock
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithWorkers sets how many investments are settled concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a payout engine over store
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		log:     logrus.StandardLogger(),
		clock:   func() time.Time { return time.Now().UTC() },
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run settles every active investment as of the current time
func (e *Engine) Run(ctx context.Context, trigger string) (*Report, error) {
	return e.RunAt(ctx, trigger, e.clock())
}

// RunAt settles every active investment as of asOf. asOf is read once and used
// for every decision in the run; it may not be later than the engine clock.
func (e *Engine) RunAt(ctx context.Context, trigger string, asOf time.Time) (*Report, error) {
	startedAt := e.clock()
	asOf = asOf.UTC()
	if asOf.After(startedAt) {
		return nil, fmt.Errorf("%w: %s", ErrAsOfInFuture, asOf.Format(time.RFC3339))
	}

	run := &models.PayoutRun{
		ID:          uuid.New(),
		Trigger:     trigger,
		AsOf:        asOf,
		StartedAt:   startedAt,
		TotalAmount: decimal.Zero,
	}
	log := e.log.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"trigger": trigger,
		"as_of":   asOf.Format(time.RFC3339),
	})
	log.Info("> payout run started")

	investments, err := e.store.ListActive(ctx)
	if err != nil {
		err = fmt.Errorf("list active investments: %w", err)
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		e.finish(ctx, log, run)
		return &Report{Run: run}, err
	}
	log.Infof("> found %d active investments", len(investments))

	results := make([]Result, len(investments))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i := range investments {
		if ctx.Err() != nil {
			for j := i; j < len(investments); j++ {
				results[j] = Result{InvestmentID: investments[j].ID, Outcome: OutcomeFailed, Err: ctx.Err()}
			}
			break
		}
		i := i
		g.Go(func() error {
			results[i] = e.settle(ctx, log, run.ID, &investments[i], asOf)
			return nil
		})
	}
	_ = g.Wait()

	run.Examined = len(investments)
	for _, res := range results {
		switch res.Outcome {
		case OutcomePaid:
			run.Paid++
		case OutcomePaidAndCompleted:
			run.Paid++
			run.Completed++
		case OutcomeCompleted:
			run.Completed++
		case OutcomeSkipped:
			run.Skipped++
		case OutcomeFailed:
			run.Failed++
		}
		run.TotalAmount = run.TotalAmount.Add(res.Amount)
	}
	run.Status = models.RunStatusSucceeded
	if run.Failed > 0 {
		run.Status = models.RunStatusPartial
	}
	e.finish(ctx, log, run)

	return &Report{Run: run, Results: results}, nil
}

// finish records the run even when ctx has already expired, so timed-out and
// cancelled runs still leave a summary behind.
func (e *Engine) finish(ctx context.Context, log logrus.FieldLogger, run *models.PayoutRun) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	run.FinishedAt = e.clock()
	if err := e.store.SaveRun(ctx, run); err != nil {
		log.WithError(err).Error("> failed to save payout run")
	}
	if e.notifier != nil {
		if err := e.notifier.RunFinished(ctx, run); err != nil {
			log.WithError(err).Warn("> failed to notify run finished")
		}
	}
	log.WithFields(logrus.Fields{
		"examined":     run.Examined,
		"paid":         run.Paid,
		"skipped":      run.Skipped,
		"completed":    run.Completed,
		"failed":       run.Failed,
		"total_amount": run.TotalAmount.String(),
		"status":       run.Status,
	}).Info("> payout run finished")
}

func (e *Engine) settle(ctx context.Context, log logrus.FieldLogger, runID uuid.UUID, inv *models.Investment, now time.Time) Result {
	res := Result{InvestmentID: inv.ID, Amount: decimal.Zero}
	log = log.WithFields(logrus.Fields{
		"investment_id": inv.ID,
		"user_id":       inv.UserID,
	})

	s, err := Evaluate(inv, now)
	if err != nil {
		log.WithError(err).Error("> investment cannot be evaluated")
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	switch s.Action {
	case ActionSkip:
		log.Debugf("> skipped: %s (paid through %s)", s.SkipReason, s.PaidThrough.Format(time.RFC3339))
		res.Outcome = OutcomeSkipped
		res.Reason = s.SkipReason
		return res

	case ActionComplete:
		if err := e.store.Complete(ctx, inv); err != nil {
			logFailure(log, err, "> failed to complete investment")
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
		log.Info("> investment matured with nothing owed, completed")
		res.Outcome = OutcomeCompleted
		res.Reason = ReasonMaturedNothingOwed
		return res
	}

	payout, err := e.store.ApplySettlement(ctx, runID, inv, s)
	if err != nil {
		logFailure(log, err, "> failed to apply payout")
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Outcome = OutcomePaid
	if s.Completes() {
		res.Outcome = OutcomePaidAndCompleted
	}
	res.Periods = s.Periods
	res.Amount = s.Amount
	log.WithFields(logrus.Fields{
		"periods":      s.Periods,
		"amount":       s.Amount.String(),
		"paid_through": s.PayThrough.Format(time.RFC3339),
		"completed":    s.Completes(),
	}).Info("> payout credited")

	if e.notifier != nil {
		event := PayoutCredited{
			RunID:        runID,
			PayoutID:     payout.ID,
			InvestmentID: inv.ID,
			UserID:       inv.UserID,
			Periods:      s.Periods,
			Amount:       s.Amount,
			PeriodStart:  s.PaidThrough,
			PeriodEnd:    s.PayThrough,
			Completed:    s.Completes(),
		}
		if err := e.notifier.PayoutCredited(ctx, event); err != nil {
			log.WithError(err).Warn("> failed to notify payout credited")
		}
	}
	return res
}

// a lost optimistic race is expected under overlapping runs
func logFailure(log logrus.FieldLogger, err error, msg string) {
	if errors.Is(err, ErrConcurrentUpdate) {
		log.WithError(err).Warn(msg)
		return
	}
	log.WithError(err).Error(msg)
}
