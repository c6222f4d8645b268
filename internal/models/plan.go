package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan is a catalog entry defining the daily return applied to an investment's principal
type Plan struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name               string          `json:"name" gorm:"size:128;not null"`
	DailyReturnPercent decimal.Decimal `json:"daily_return_percent" gorm:"type:numeric(10,4);not null"`
	DurationDays       int             `json:"duration_days" gorm:"not null"`
	MinAmount          decimal.Decimal `json:"min_amount" gorm:"type:numeric(20,8);not null;default:0"`
	MaxAmount          decimal.Decimal `json:"max_amount" gorm:"type:numeric(20,8);not null;default:0"`
	IsActive           bool            `json:"is_active" gorm:"default:true"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (Plan) TableName() string {
	return "investment_plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
