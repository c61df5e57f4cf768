package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	BaseModel
	Name     string         `gorm:"not null" json:"name"`
	Price    float64        `gorm:"not null" json:"price"`
	Currency string         `gorm:"default:'BRL'" json:"currency"`
	Duration string         `gorm:"not null" json:"duration"`     // "monthly", "yearly"
	Role     UserRole       `gorm:"type:varchar(20)" json:"role"` // which role the plan targets; empty = any
	Features datatypes.JSON `gorm:"type:jsonb" json:"features"`
	IsActive bool           `gorm:"default:true" json:"is_active"`
}

type UserSubscription struct {
	BaseModel
	UserID            string             `gorm:"not null;index" json:"user_id"`
	PlanID            string             `gorm:"not null;index" json:"plan_id"`
	Status            SubscriptionStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	PeriodStart       time.Time          `json:"period_start"`
	PeriodEnd         time.Time          `json:"period_end"`
	CancelAtPeriodEnd bool               `gorm:"default:false" json:"cancel_at_period_end"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty"`

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}
