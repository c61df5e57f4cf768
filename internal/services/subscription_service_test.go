package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

func newSubscriptionFixture(t *testing.T) (*fakeStore, SubscriptionService) {
	t.Helper()
	store := newFakeStore()
	return store, NewSubscriptionService(&fakeSubscriptionRepo{store: store})
}

func seedPlan(store *fakeStore, id, duration string, role models.UserRole) *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		BaseModel: models.BaseModel{ID: id},
		Name:      "Plano " + id,
		Price:     49.90,
		Currency:  "BRL",
		Duration:  duration,
		Role:      role,
		IsActive:  true,
	}
	store.plans[id] = plan
	return plan
}

func TestCreatePlan_DefaultsCurrency(t *testing.T) {
	_, svc := newSubscriptionFixture(t)

	plan, err := svc.CreatePlan(context.Background(), &dto.CreatePlanRequest{
		Name:     "Cliente Plus",
		Price:    29.90,
		Duration: "monthly",
		Role:     models.UserRoleClient,
		Features: []string{"prioridade no atendimento"},
	})
	require.NoError(t, err)
	assert.Equal(t, "BRL", plan.Currency)
	assert.True(t, plan.IsActive)
	assert.NotEmpty(t, plan.Features)
}

func TestSubscribe_MonthlyPeriod(t *testing.T) {
	store, svc := newSubscriptionFixture(t)
	seedPlan(store, "plan-1", "monthly", models.UserRoleClient)

	sub, err := svc.Subscribe(context.Background(), "client-1", &dto.SubscribeRequest{PlanID: "plan-1"})
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	expected := sub.PeriodStart.AddDate(0, 1, 0)
	assert.WithinDuration(t, expected, sub.PeriodEnd, time.Second)
	require.NotNil(t, sub.Plan)
	assert.Equal(t, "plan-1", sub.Plan.ID)
}

func TestSubscribe_SecondActiveRejected(t *testing.T) {
	store, svc := newSubscriptionFixture(t)
	seedPlan(store, "plan-1", "monthly", models.UserRoleClient)
	seedPlan(store, "plan-2", "yearly", models.UserRoleClient)

	_, err := svc.Subscribe(context.Background(), "client-1", &dto.SubscribeRequest{PlanID: "plan-1"})
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), "client-1", &dto.SubscribeRequest{PlanID: "plan-2"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestSubscribe_InactivePlanRejected(t *testing.T) {
	store, svc := newSubscriptionFixture(t)
	plan := seedPlan(store, "plan-1", "monthly", models.UserRoleClient)
	plan.IsActive = false

	_, err := svc.Subscribe(context.Background(), "client-1", &dto.SubscribeRequest{PlanID: "plan-1"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestCancelSubscription(t *testing.T) {
	store, svc := newSubscriptionFixture(t)
	seedPlan(store, "plan-1", "monthly", models.UserRoleClient)

	_, err := svc.Subscribe(context.Background(), "client-1", &dto.SubscribeRequest{PlanID: "plan-1"})
	require.NoError(t, err)

	// Default cancel lets the period run out.
	sub, err := svc.Cancel(context.Background(), "client-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)

	// Immediate cancel ends it now.
	sub, err = svc.Cancel(context.Background(), "client-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)

	_, err = svc.Current(context.Background(), "client-1")
	require.Error(t, err, "no active subscription after immediate cancel")
}

func TestListPlans_FiltersByRole(t *testing.T) {
	store, svc := newSubscriptionFixture(t)
	seedPlan(store, "plan-c", "monthly", models.UserRoleClient)
	seedPlan(store, "plan-m", "monthly", models.UserRoleMechanic)

	plans, err := svc.ListPlans(context.Background(), models.UserRoleMechanic)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "plan-m", plans[0].ID)
}
