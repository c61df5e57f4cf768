package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type SubscriptionService interface {
	CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, role models.UserRole) ([]*dto.PlanResponse, error)
	DeactivatePlan(ctx context.Context, planID string) error
	Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.SubscriptionResponse, error)
	Current(ctx context.Context, userID string) (*dto.SubscriptionResponse, error)
	Cancel(ctx context.Context, userID string, immediate bool) (*dto.SubscriptionResponse, error)
}

type SubscriptionServiceImpl struct {
	subRepo repositories.SubscriptionRepository
}

func NewSubscriptionService(subRepo repositories.SubscriptionRepository) SubscriptionService {
	return &SubscriptionServiceImpl{subRepo: subRepo}
}

func (s *SubscriptionServiceImpl) CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	plan := &models.SubscriptionPlan{
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
		Duration: req.Duration,
		Role:     req.Role,
		IsActive: true,
	}
	if plan.Currency == "" {
		plan.Currency = "BRL"
	}
	if len(req.Features) > 0 {
		raw, err := json.Marshal(req.Features)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		plan.Features = datatypes.JSON(raw)
	}

	if err := s.subRepo.CreatePlan(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "plan created", "plan_id", plan.ID, "name", plan.Name)
	return dto.NewPlanResponse(plan), nil
}

func (s *SubscriptionServiceImpl) ListPlans(ctx context.Context, role models.UserRole) ([]*dto.PlanResponse, error) {
	plans, err := s.subRepo.FindActivePlans(role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]*dto.PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, dto.NewPlanResponse(&plans[i]))
	}
	return out, nil
}

func (s *SubscriptionServiceImpl) DeactivatePlan(ctx context.Context, planID string) error {
	plan, err := s.subRepo.FindPlanByID(planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	plan.IsActive = false
	if err := s.subRepo.UpdatePlan(plan); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func periodEnd(start time.Time, duration string) time.Time {
	if duration == "yearly" {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func (s *SubscriptionServiceImpl) Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.SubscriptionResponse, error) {
	plan, err := s.subRepo.FindPlanByID(req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if !plan.IsActive {
		return nil, apperrors.ErrInvalidOperation("subscription", "plan is no longer offered")
	}

	now := time.Now()
	sub := &models.UserSubscription{
		UserID:      userID,
		PlanID:      plan.ID,
		Status:      models.SubscriptionStatusActive,
		PeriodStart: now,
		PeriodEnd:   periodEnd(now, plan.Duration),
	}
	if err := s.subRepo.CreateSubscription(sub); err != nil {
		if errors.Is(err, repositories.ErrActiveSubscription) {
			return nil, apperrors.ErrConflict(err, "subscription", "você já possui uma assinatura ativa")
		}
		return nil, apperrors.InternalError(err)
	}
	sub.Plan = *plan

	logger.CtxInfo(ctx, "subscription started", "user_id", userID, "plan_id", plan.ID)
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *SubscriptionServiceImpl) Current(ctx context.Context, userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subRepo.FindActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// Cancel either flags the subscription to lapse at period end, or ends
// it immediately.
func (s *SubscriptionServiceImpl) Cancel(ctx context.Context, userID string, immediate bool) (*dto.SubscriptionResponse, error) {
	sub, err := s.subRepo.FindActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	if immediate {
		sub.Status = models.SubscriptionStatusCancelled
		sub.CancelledAt = &now
	} else {
		sub.CancelAtPeriodEnd = true
	}
	if err := s.subRepo.Update(sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription cancelled",
		"user_id", userID, "immediate", immediate)
	return dto.NewSubscriptionResponse(sub), nil
}
