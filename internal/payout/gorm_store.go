package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentpayout/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps investments, balances and payout history in a SQL database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListActive returns all active investments with their plan loaded
func (s *GormStore) ListActive(ctx context.Context) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("status = ?", models.InvestmentStatusActive).
		Order("start_at ASC").
		Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

// ApplySettlement credits a settlement in one transaction. The investment row is
// only written if its version still matches what the caller read; otherwise
// ErrConcurrentUpdate is returned and nothing is applied.
func (s *GormStore) ApplySettlement(ctx context.Context, runID uuid.UUID, inv *models.Investment, st Settlement) (*models.Payout, error) {
	if !st.Pays() {
		return nil, fmt.Errorf("settlement action %s does not pay", st.Action)
	}
	now := time.Now().UTC()
	payout := &models.Payout{
		InvestmentID: inv.ID,
		UserID:       inv.UserID,
		RunID:        runID,
		PeriodStart:  st.PaidThrough,
		PeriodEnd:    st.PayThrough,
		Periods:      st.Periods,
		Amount:       st.Amount,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"accumulated_earnings": gorm.Expr("accumulated_earnings + ?", st.Amount),
			"last_payout_at":       st.PayThrough,
			"version":              gorm.Expr("version + 1"),
			"updated_at":           now,
		}
		if st.Completes() {
			updates["status"] = models.InvestmentStatusCompleted
		}
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ? AND version = ?", inv.ID, models.InvestmentStatusActive, inv.Version).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update investment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		// lock the owner's balance so concurrent credits to the same user serialize
		var balance models.Balance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", inv.UserID).
			First(&balance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBalanceNotFound
			}
			return fmt.Errorf("lock balance: %w", err)
		}

		if err := tx.Model(&models.Balance{}).
			Where("id = ?", balance.ID).
			Updates(map[string]interface{}{
				"spendable_balance": gorm.Expr("spendable_balance + ?", st.Amount),
				"lifetime_earnings": gorm.Expr("lifetime_earnings + ?", st.Amount),
				"updated_at":        now,
			}).Error; err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}

		if err := tx.Create(payout).Error; err != nil {
			return fmt.Errorf("record payout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv.AccumulatedEarnings = inv.AccumulatedEarnings.Add(st.Amount)
	payThrough := st.PayThrough
	inv.LastPayoutAt = &payThrough
	inv.Version++
	if st.Completes() {
		inv.Status = models.InvestmentStatusCompleted
	}
	return payout, nil
}

// Complete moves a matured investment to completed without paying anything
func (s *GormStore) Complete(ctx context.Context, inv *models.Investment) error {
	res := s.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ? AND version = ?", inv.ID, models.InvestmentStatusActive, inv.Version).
		Updates(map[string]interface{}{
			"status":     models.InvestmentStatusCompleted,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("complete investment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	inv.Status = models.InvestmentStatusCompleted
	inv.Version++
	return nil
}

// SaveRun persists a run summary
func (s *GormStore) SaveRun(ctx context.Context, run *models.PayoutRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

// ListRuns returns the most recent runs first
func (s *GormStore) ListRuns(ctx context.Context, limit int) ([]models.PayoutRun, error) {
	var runs []models.PayoutRun
	if err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns a run by ID
func (s *GormStore) GetRun(ctx context.Context, id uuid.UUID) (*models.PayoutRun, error) {
	var run models.PayoutRun
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ListPayouts returns the payout history of an investment, oldest first
func (s *GormStore) ListPayouts(ctx context.Context, investmentID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := s.db.WithContext(ctx).
		Where("investment_id = ?", investmentID).
		Order("period_end ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
