package payout

import (
	"fmt"
	"time"

	"rentpayout/internal/models"

	"github.com/shopspring/decimal"
)

// Period is the length of one payout period
const Period = 24 * time.Hour

// AmountScale is the number of fractional digits kept for money, matching the numeric(20,8) columns
const AmountScale = 8

// Action is what the engine must do with an investment in this run
type Action int

const (
	ActionSkip Action = iota
	ActionPay
	ActionComplete
	ActionPayAndComplete
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionPay:
		return "pay"
	case ActionComplete:
		return "complete"
	case ActionPayAndComplete:
		return "pay_and_complete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Skip reasons
const (
	SkipNotYetDue   = "not_yet_due"
	SkipAlreadyPaid = "already_paid"
)

// Settlement is the decision for one investment at one point in time
type Settlement struct {
	Action     Action
	SkipReason string
	Periods    int64
	Amount     decimal.Decimal
	// PaidThrough is the boundary covered before this settlement
	PaidThrough time.Time
	// PayThrough becomes the investment's last_payout_at
	PayThrough time.Time
}

// Pays reports whether the settlement credits earnings
func (s Settlement) Pays() bool {
	return s.Action == ActionPay || s.Action == ActionPayAndComplete
}

// Completes reports whether the settlement moves the investment to completed
func (s Settlement) Completes() bool {
	return s.Action == ActionComplete || s.Action == ActionPayAndComplete
}

// LastBoundary returns the latest payout boundary at or before t.
// Boundaries sit on anchor + k*Period. In UTC this is the same instant as
// "t's date at the anchor's time of day, or the day before if not reached yet",
// but keeps any sub-second part of the anchor. Times before the anchor map to the anchor.
func LastBoundary(anchor, t time.Time) time.Time {
	anchor = anchor.UTC()
	t = t.UTC()
	if !t.After(anchor) {
		return anchor
	}
	k := t.Sub(anchor) / Period
	return anchor.Add(k * Period)
}

// PeriodEarnings is the return for one period: principal * percent / 100, rounded to AmountScale
func PeriodEarnings(principal, dailyReturnPercent decimal.Decimal) decimal.Decimal {
	return principal.Mul(dailyReturnPercent).Div(decimal.NewFromInt(100)).Round(AmountScale)
}

// Evaluate decides what is owed on inv at now. It has no side effects.
func Evaluate(inv *models.Investment, now time.Time) (Settlement, error) {
	if inv.Plan == nil {
		return Settlement{}, ErrPlanMissing
	}
	if !inv.PrincipalAmount.IsPositive() || inv.Plan.DailyReturnPercent.IsNegative() {
		return Settlement{}, ErrInvalidAmount
	}

	now = now.UTC()
	start := inv.StartAt.UTC()
	end := inv.EndAt.UTC()
	if !end.After(start) {
		return Settlement{}, fmt.Errorf("%w: end_at %s is not after start_at %s",
			ErrInvalidSchedule, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	paidThrough := start
	if inv.LastPayoutAt != nil {
		last := inv.LastPayoutAt.UTC()
		if last.After(now) {
			return Settlement{}, fmt.Errorf("%w: last_payout_at %s, now %s",
				ErrPayoutInFuture, last.Format(time.RFC3339), now.Format(time.RFC3339))
		}
		if last.Before(start) {
			return Settlement{}, fmt.Errorf("%w: last_payout_at %s is before start_at %s",
				ErrInvalidSchedule, last.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		// rows written with a wall-clock payout time are pulled back onto the boundary grid
		paidThrough = LastBoundary(start, last)
	}

	matured := !now.Before(end)
	cutoff := now
	if matured {
		cutoff = end
	}
	lastDue := LastBoundary(start, cutoff)

	if !lastDue.After(paidThrough) {
		if matured {
			return Settlement{Action: ActionComplete, PaidThrough: paidThrough, PayThrough: paidThrough}, nil
		}
		reason := SkipAlreadyPaid
		if lastDue.Equal(start) {
			reason = SkipNotYetDue
		}
		return Settlement{Action: ActionSkip, SkipReason: reason, PaidThrough: paidThrough, PayThrough: paidThrough}, nil
	}

	periods := int64(lastDue.Sub(paidThrough) / Period)
	amount := PeriodEarnings(inv.PrincipalAmount, inv.Plan.DailyReturnPercent).Mul(decimal.NewFromInt(periods))

	action := ActionPay
	if matured {
		action = ActionPayAndComplete
	}
	return Settlement{
		Action:      action,
		Periods:     periods,
		Amount:      amount,
		PaidThrough: paidThrough,
		PayThrough:  lastDue,
	}, nil
}
