package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run statuses
const (
	RunStatusSucceeded = "succeeded"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// PayoutRun records the outcome of one engine invocation
type PayoutRun struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Trigger     string          `json:"trigger" gorm:"size:20;not null"`
	AsOf        time.Time       `json:"as_of" gorm:"not null;index"`
	StartedAt   time.Time       `json:"started_at" gorm:"not null"`
	FinishedAt  time.Time       `json:"finished_at" gorm:"not null"`
	Examined    int             `json:"examined" gorm:"not null;default:0"`
	Paid        int             `json:"paid" gorm:"not null;default:0"`
	Skipped     int             `json:"skipped" gorm:"not null;default:0"`
	Completed   int             `json:"completed" gorm:"not null;default:0"`
	Failed      int             `json:"failed" gorm:"not null;default:0"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(20,8);not null;default:0"`
	Status      string          `json:"status" gorm:"size:20;not null"`
	Error       string          `json:"error,omitempty" gorm:"type:text"`
}

func (PayoutRun) TableName() string {
	return "payout_runs"
}

// All returns every model owned by this service, in dependency order
func All() []interface{} {
	return []interface{}{
		&Plan{},
		&Balance{},
		&Investment{},
		&Payout{},
		&PayoutRun{},
	}
}
