package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payout is one settlement applied to an investment and its owner's balance.
// (investment_id, period_end) is unique: a boundary can only be paid once.
type Payout struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	InvestmentID uuid.UUID       `json:"investment_id" gorm:"type:uuid;not null;uniqueIndex:idx_payouts_investment_period"`
	UserID       uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	RunID        uuid.UUID       `json:"run_id" gorm:"type:uuid;not null;index"`
	PeriodStart  time.Time       `json:"period_start" gorm:"not null"`
	PeriodEnd    time.Time       `json:"period_end" gorm:"not null;uniqueIndex:idx_payouts_investment_period"`
	Periods      int64           `json:"periods" gorm:"not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(20,8);not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Payout) TableName() string {
	return "payouts"
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
