package payout

import "errors"

// Per-investment data integrity errors. The engine reports them and moves on.
var (
	ErrPlanMissing     = errors.New("investment has no plan")
	ErrInvalidSchedule = errors.New("investment schedule is inconsistent")
	ErrPayoutInFuture  = errors.New("last payout is after the run time")
	ErrInvalidAmount   = errors.New("investment amount or return rate is invalid")
)

// Store errors
var (
	ErrConcurrentUpdate = errors.New("investment was modified by another run")
	ErrBalanceNotFound  = errors.New("user balance not found")
	ErrRunNotFound      = errors.New("payout run not found")
)

// ErrAsOfInFuture is returned when a run is requested for a time that has not happened yet
var ErrAsOfInFuture = errors.New("as-of time is in the future")
