package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment statuses
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
)

// Investment is a user's fixed-term commitment of funds to a plan
type Investment struct {
	ID                  uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	PlanID              uuid.UUID       `json:"plan_id" gorm:"type:uuid;not null;index"`
	Plan                *Plan           `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount" gorm:"type:numeric(20,8);not null"`
	StartAt             time.Time       `json:"start_at" gorm:"not null"`
	EndAt               time.Time       `json:"end_at" gorm:"not null"`
	Status              string          `json:"status" gorm:"size:20;not null;default:active;index"`
	AccumulatedEarnings decimal.Decimal `json:"accumulated_earnings" gorm:"type:numeric(20,8);not null;default:0"`
	LastPayoutAt        *time.Time      `json:"last_payout_at,omitempty"`
	Version             int64           `json:"version" gorm:"not null;default:0"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Investment
func (Investment) TableName() string {
	return "user_investments"
}

// BeforeCreate assigns a random ID when none was set
func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the investment can still receive payouts
func (i *Investment) IsActive() bool {
	return i.Status == InvestmentStatusActive
}
