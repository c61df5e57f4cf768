package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type CreatePlanRequest struct {
	Name     string          `json:"name" binding:"required"`
	Price    float64         `json:"price" binding:"required,gt=0"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
	Duration string          `json:"duration" binding:"required,oneof=monthly yearly"`
	Role     models.UserRole `json:"role" validate:"omitempty,is-user-role"`
	Features []string        `json:"features,omitempty"`
}

type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required,uuid"`
}

type PlanResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    float64         `json:"price"`
	Currency string          `json:"currency"`
	Duration string          `json:"duration"`
	Role     models.UserRole `json:"role,omitempty"`
	Features datatypes.JSON  `json:"features,omitempty"`
	IsActive bool            `json:"is_active"`
}

type SubscriptionResponse struct {
	ID                string                    `json:"id"`
	PlanID            string                    `json:"plan_id"`
	Status            models.SubscriptionStatus `json:"status"`
	PeriodStart       time.Time                 `json:"period_start"`
	PeriodEnd         time.Time                 `json:"period_end"`
	CancelAtPeriodEnd bool                      `json:"cancel_at_period_end"`
	CancelledAt       *time.Time                `json:"cancelled_at,omitempty"`
	Plan              *PlanResponse             `json:"plan,omitempty"`
}

func NewPlanResponse(plan *models.SubscriptionPlan) *PlanResponse {
	return &PlanResponse{
		ID:       plan.ID,
		Name:     plan.Name,
		Price:    plan.Price,
		Currency: plan.Currency,
		Duration: plan.Duration,
		Role:     plan.Role,
		Features: plan.Features,
		IsActive: plan.IsActive,
	}
}

func NewSubscriptionResponse(sub *models.UserSubscription) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:                sub.ID,
		PlanID:            sub.PlanID,
		Status:            sub.Status,
		PeriodStart:       sub.PeriodStart,
		PeriodEnd:         sub.PeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CancelledAt:       sub.CancelledAt,
	}
	if sub.Plan.ID != "" {
		resp.Plan = NewPlanResponse(&sub.Plan)
	}
	return resp
}
