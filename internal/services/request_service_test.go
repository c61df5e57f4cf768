package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type requestFixture struct {
	store   *fakeStore
	pusher  *fakePusher
	service RequestService
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	setTestFeeRate(t, 0.15)

	store := newFakeStore()
	pusher := newFakePusher()
	store.vehicles["veh-1"] = &models.Vehicle{
		OwnerID: "client-1", Plate: "ABC1234", Brand: "Fiat", Model: "Uno", Year: 2015,
	}
	store.vehicles["veh-1"].ID = "veh-1"

	return &requestFixture{
		store:  store,
		pusher: pusher,
		service: NewRequestService(
			&fakeRequestRepo{store: store},
			&fakeVehicleRepo{store: store},
			&fakeProposalRepo{store: store},
			&fakeNotificationRepo{store: store},
			&fakeStatsRepo{store: store},
			pusher,
		),
	}
}

func (f *requestFixture) seed(id string, status models.RequestStatus, providerID string) *models.ServiceRequest {
	req := &models.ServiceRequest{
		RequesterID: "client-1",
		VehicleID:   "veh-1",
		Category:    "mechanic",
		Description: "Carro não pega",
		Status:      status,
	}
	req.ID = id
	if providerID != "" {
		req.ProviderID = &providerID
	}
	f.store.requests[id] = req
	return req
}

func TestCreateRequest(t *testing.T) {
	f := newRequestFixture(t)

	resp, err := f.service.Create(context.Background(), "client-1", &dto.CreateRequestRequest{
		VehicleID:   "veh-1",
		Category:    "mechanic",
		Description: "Superaquecimento no motor",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, resp.Status)
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, "ABC1234", resp.Vehicle.Plate)
}

func TestCreateRequest_ForeignVehicleRejected(t *testing.T) {
	f := newRequestFixture(t)

	_, err := f.service.Create(context.Background(), "client-2", &dto.CreateRequestRequest{
		VehicleID:   "veh-1",
		Category:    "mechanic",
		Description: "Tentativa com veículo alheio",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestStartAndComplete(t *testing.T) {
	f := newRequestFixture(t)
	f.seed("req-1", models.RequestStatusAccepted, "mech-1")

	started, err := f.service.Start(context.Background(), "req-1", "mech-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, started.Status)

	done, err := f.service.Complete(context.Background(), "req-1", "mech-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// Provider stats bumped, requester notified.
	require.NotNil(t, f.store.stats["mech-1"])
	assert.Equal(t, 1, f.store.stats["mech-1"].CompletedJobs)
	assert.NotEmpty(t, f.pusher.pushed["client-1"])
}

func TestComplete_WrongProviderForbidden(t *testing.T) {
	f := newRequestFixture(t)
	f.seed("req-1", models.RequestStatusInProgress, "mech-1")

	_, err := f.service.Complete(context.Background(), "req-1", "mech-2")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestStart_IllegalJumpRejected(t *testing.T) {
	f := newRequestFixture(t)
	f.seed("req-1", models.RequestStatusPending, "mech-1")

	_, err := f.service.Start(context.Background(), "req-1", "mech-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestCancel_OnlyBeforeAgreement(t *testing.T) {
	f := newRequestFixture(t)

	f.seed("req-pending", models.RequestStatusPending, "")
	resp, err := f.service.Cancel(context.Background(), "req-pending", "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, resp.Status)
	require.NotNil(t, resp.CancelledAt)

	f.seed("req-accepted", models.RequestStatusAccepted, "mech-1")
	_, err = f.service.Cancel(context.Background(), "req-accepted", "client-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestCancel_RejectsPendingProposalsAndNotifies(t *testing.T) {
	f := newRequestFixture(t)
	f.seed("req-1", models.RequestStatusQuoted, "")

	proposal := &models.Proposal{
		ServiceRequestID: "req-1",
		ProviderID:       "mech-1",
		ClientID:         "client-1",
		Status:           models.ProposalStatusPending,
	}
	proposal.ID = "prop-1"
	f.store.proposals["prop-1"] = proposal

	_, err := f.service.Cancel(context.Background(), "req-1", "client-1")
	require.NoError(t, err)

	assert.Equal(t, models.ProposalStatusRejected, f.store.proposals["prop-1"].Status)
	assert.NotEmpty(t, f.pusher.pushed["mech-1"])
}
