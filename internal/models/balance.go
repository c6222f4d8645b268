package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance holds a user's spendable funds and earnings totals.
// CommissionEarnings and TotalInvested belong to the referral and deposit flows.
type Balance struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	SpendableBalance   decimal.Decimal `json:"spendable_balance" gorm:"type:numeric(20,8);not null;default:0"`
	LifetimeEarnings   decimal.Decimal `json:"lifetime_earnings" gorm:"type:numeric(20,8);not null;default:0"`
	CommissionEarnings decimal.Decimal `json:"commission_earnings" gorm:"type:numeric(20,8);not null;default:0"`
	TotalInvested      decimal.Decimal `json:"total_invested" gorm:"type:numeric(20,8);not null;default:0"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Balance) TableName() string {
	return "user_balances"
}

func (b *Balance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
