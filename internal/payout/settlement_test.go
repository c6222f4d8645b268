package payout

import (
	"testing"
	"time"

	"rentpayout/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

func newInvestment(principal, percent string, start time.Time, days int) *models.Investment {
	planID := uuid.New()
	return &models.Investment{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		PlanID:              planID,
		Plan:                &models.Plan{ID: planID, Name: "test", DailyReturnPercent: decimal.RequireFromString(percent), DurationDays: days},
		PrincipalAmount:     decimal.RequireFromString(principal),
		StartAt:             start,
		EndAt:               start.Add(time.Duration(days) * Period),
		Status:              models.InvestmentStatusActive,
		AccumulatedEarnings: decimal.Zero,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestLastBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before anchor", day0.Add(-time.Hour), day0},
		{"at anchor", day0, day0},
		{"same day after anchor", day0.Add(5 * time.Hour), day0},
		{"next day before anchor time", time.Date(2024, 3, 11, 13, 59, 59, 0, time.UTC), day0},
		{"next day at anchor time", time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC), day0.Add(Period)},
		{"next day after anchor time", time.Date(2024, 3, 11, 23, 0, 0, 0, time.UTC), day0.Add(Period)},
		{"two days later early morning", time.Date(2024, 3, 13, 1, 0, 0, 0, time.UTC), day0.Add(2 * Period)},
		{"non utc input", time.Date(2024, 3, 11, 16, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)), day0.Add(Period)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastBoundary(day0, tt.now)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestPeriodEarnings(t *testing.T) {
	assert.True(t, decimal.NewFromInt(25).Equal(PeriodEarnings(decimal.NewFromInt(1000), decimal.RequireFromString("2.5"))))
	assert.Equal(t, "0.12345679", PeriodEarnings(decimal.RequireFromString("12.345678901"), decimal.NewFromInt(1)).String())
	assert.True(t, PeriodEarnings(decimal.NewFromInt(500), decimal.Zero).IsZero())
}

func TestEvaluateBoundaryAnchoring(t *testing.T) {
	inv := newInvestment("1000", "2.5", day0, 10)

	s, err := Evaluate(inv, day0.Add(Period-time.Second))
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, s.Action)
	assert.Equal(t, SkipNotYetDue, s.SkipReason)

	s, err = Evaluate(inv, day0.Add(Period+time.Second))
	require.NoError(t, err)
	assert.Equal(t, ActionPay, s.Action)
	assert.Equal(t, int64(1), s.Periods)
	assert.Equal(t, "25", s.Amount.String())
	assert.True(t, s.PayThrough.Equal(day0.Add(Period)))
	assert.True(t, s.PaidThrough.Equal(day0))
}

func TestEvaluateMissedDays(t *testing.T) {
	inv := newInvestment("1000", "2.5", day0, 10)

	s, err := Evaluate(inv, day0.Add(3*Period+time.Second))
	require.NoError(t, err)
	assert.Equal(t, ActionPay, s.Action)
	assert.Equal(t, int64(3), s.Periods)
	assert.Equal(t, "75", s.Amount.String())
	assert.True(t, s.PayThrough.Equal(day0.Add(3*Period)))
}

func TestEvaluateAlreadyPaid(t *testing.T) {
	inv := newInvestment("1000", "2.5", day0, 10)
	inv.LastPayoutAt = timePtr(day0.Add(3 * Period))

	s, err := Evaluate(inv, day0.Add(4*Period-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, s.Action)
	assert.Equal(t, SkipAlreadyPaid, s.SkipReason)
	assert.True(t, s.Amount.IsZero())
}

func TestEvaluateMaturity(t *testing.T) {
	t.Run("owed periods are paid at end_at", func(t *testing.T) {
		inv := newInvestment("1000", "2.5", day0, 10)
		inv.LastPayoutAt = timePtr(day0.Add(8 * Period))

		s, err := Evaluate(inv, inv.EndAt)
		require.NoError(t, err)
		assert.Equal(t, ActionPayAndComplete, s.Action)
		assert.Equal(t, int64(2), s.Periods)
		assert.Equal(t, "50", s.Amount.String())
		assert.True(t, s.PayThrough.Equal(inv.EndAt))
	})

	t.Run("payout never passes end_at", func(t *testing.T) {
		inv := newInvestment("1000", "2.5", day0, 10)

		s, err := Evaluate(inv, inv.EndAt.Add(30*Period))
		require.NoError(t, err)
		assert.Equal(t, ActionPayAndComplete, s.Action)
		assert.Equal(t, int64(10), s.Periods)
		assert.Equal(t, "250", s.Amount.String())
	})

	t.Run("nothing owed just completes", func(t *testing.T) {
		inv := newInvestment("1000", "2.5", day0, 10)
		inv.LastPayoutAt = timePtr(inv.EndAt)

		s, err := Evaluate(inv, inv.EndAt.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, ActionComplete, s.Action)
		assert.Zero(t, s.Periods)
	})

	t.Run("partial final period is forfeited", func(t *testing.T) {
		inv := newInvestment("1000", "2.5", day0, 10)
		inv.EndAt = day0.Add(2*Period + 6*time.Hour)
		inv.LastPayoutAt = timePtr(day0.Add(2 * Period))

		s, err := Evaluate(inv, inv.EndAt)
		require.NoError(t, err)
		assert.Equal(t, ActionComplete, s.Action)
	})
}

func TestEvaluateLegacyPayoutTime(t *testing.T) {
	inv := newInvestment("1000", "2.5", day0, 10)
	// written with wall-clock time a few minutes after the boundary
	inv.LastPayoutAt = timePtr(day0.Add(Period + 5*time.Minute))

	s, err := Evaluate(inv, day0.Add(3*Period+time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Periods)
	assert.True(t, s.PaidThrough.Equal(day0.Add(Period)))
}

func TestEvaluateSubSecondAnchor(t *testing.T) {
	start := day0.Add(500 * time.Millisecond)
	inv := newInvestment("1000", "2.5", start, 10)

	s, err := Evaluate(inv, day0.Add(Period))
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, s.Action)

	s, err = Evaluate(inv, start.Add(Period))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Periods)
}

func TestEvaluateIntegrityErrors(t *testing.T) {
	now := day0.Add(3 * Period)

	noPlan := newInvestment("1000", "2.5", day0, 10)
	noPlan.Plan = nil
	_, err := Evaluate(noPlan, now)
	assert.ErrorIs(t, err, ErrPlanMissing)

	badSchedule := newInvestment("1000", "2.5", day0, 10)
	badSchedule.EndAt = day0
	_, err = Evaluate(badSchedule, now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	future := newInvestment("1000", "2.5", day0, 10)
	future.LastPayoutAt = timePtr(now.Add(time.Hour))
	_, err = Evaluate(future, now)
	assert.ErrorIs(t, err, ErrPayoutInFuture)

	beforeStart := newInvestment("1000", "2.5", day0, 10)
	beforeStart.LastPayoutAt = timePtr(day0.Add(-time.Hour))
	_, err = Evaluate(beforeStart, now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	zero := newInvestment("0", "2.5", day0, 10)
	_, err = Evaluate(zero, now)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	negativeRate := newInvestment("1000", "-1", day0, 10)
	_, err = Evaluate(negativeRate, now)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "pay_and_complete", ActionPayAndComplete.String())
	assert.Equal(t, "action(9)", Action(9).String())
}
