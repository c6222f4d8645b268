package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentpayout/internal/models"
	"rentpayout/internal/payout"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// Runner executes a payout run
type Runner interface {
	Run(ctx context.Context, trigger string) (*payout.Report, error)
}

// RunReader reads run history and the payout ledger
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]models.PayoutRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.PayoutRun, error)
	ListPayouts(ctx context.Context, investmentID uuid.UUID) ([]models.Payout, error)
}

// PayoutHandler serves payout run endpoints
type PayoutHandler struct {
	runner     Runner
	reader     RunReader
	runTimeout time.Duration
	logger     logrus.FieldLogger
}

// NewPayoutHandler creates a payout handler. A zero runTimeout disables the per-run deadline.
func NewPayoutHandler(runner Runner, reader RunReader, runTimeout time.Duration, logger logrus.FieldLogger) *PayoutHandler {
	return &PayoutHandler{
		runner:     runner,
		reader:     reader,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// FailureResp describes one investment that did not settle
type FailureResp struct {
	InvestmentID uuid.UUID `json:"investment_id"`
	Reason       string    `json:"reason,omitempty"`
	Error        string    `json:"error"`
}

// RunResp is the response for a triggered run
type RunResp struct {
	Run      *models.PayoutRun `json:"run"`
	Failures []FailureResp     `json:"failures"`
}

func newRunResp(report *payout.Report) RunResp {
	resp := RunResp{Run: report.Run, Failures: []FailureResp{}}
	for _, f := range report.Failures() {
		item := FailureResp{InvestmentID: f.InvestmentID, Reason: f.Reason}
		if f.Err != nil {
			item.Error = f.Err.Error()
		}
		resp.Failures = append(resp.Failures, item)
	}
	return resp
}

// TriggerRun runs the payout engine once and returns the run summary.
// The run is bounded by runTimeout only; a caller hanging up does not stop it.
func (h *PayoutHandler) TriggerRun(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	report, err := h.runner.Run(ctx, payout.TriggerHTTP)
	if err != nil {
		h.logger.WithError(err).Error("payout run failed")
		if report != nil && report.Run != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": report.Run})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newRunResp(report))
}

// ListRuns returns the most recent runs
// Query parameters: limit (default: 20, max: 200)
func (h *PayoutHandler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if parsed > maxRunsLimit {
			parsed = maxRunsLimit
		}
		limit = parsed
	}

	runs, err := h.reader.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list payout runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payout runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns a single run
func (h *PayoutHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.reader.GetRun(c.Request.Context(), id)
	if errors.Is(err, payout.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payout run not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("failed to get payout run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get payout run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListInvestmentPayouts returns the ledger entries of one investment in period order
func (h *PayoutHandler) ListInvestmentPayouts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}

	payouts, err := h.reader.ListPayouts(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("investment_id", id).Error("failed to list payouts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment_id": id, "payouts": payouts})
}
