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

type proposalFixture struct {
	store    *fakeStore
	gateway  *fakeGateway
	mailer   *fakeMailer
	pusher   *fakePusher
	service  ProposalService
	requests RequestService
}

func newProposalFixture(t *testing.T) *proposalFixture {
	t.Helper()
	setTestFeeRate(t, 0.15)

	store := newFakeStore()
	gateway := newFakeGateway()
	mailer := &fakeMailer{}
	pusher := newFakePusher()

	proposalRepo := &fakeProposalRepo{store: store}
	requestRepo := &fakeRequestRepo{store: store}
	notificationRepo := &fakeNotificationRepo{store: store}
	statsRepo := &fakeStatsRepo{store: store}
	vehicleRepo := &fakeVehicleRepo{store: store}
	userRepo := &fakeUserRepo{store: store}

	return &proposalFixture{
		store:   store,
		gateway: gateway,
		mailer:  mailer,
		pusher:  pusher,
		service: NewProposalService(proposalRepo, requestRepo, notificationRepo,
			userRepo, gateway, mailer, pusher),
		requests: NewRequestService(requestRepo, vehicleRepo, proposalRepo,
			notificationRepo, statsRepo, pusher),
	}
}

func (f *proposalFixture) seedQuotedRequest() (*models.ServiceRequest, *models.Proposal, *models.Proposal) {
	f.store.users["client-1"] = &models.User{Email: "cliente@example.com", Role: models.UserRoleClient}
	f.store.users["mech-1"] = &models.User{Email: "mecanico@example.com", Role: models.UserRoleMechanic}
	f.store.profiles["mech-1"] = &models.Profile{UserID: "mech-1", Name: "Oficina do Zé"}

	request := &models.ServiceRequest{
		RequesterID: "client-1",
		VehicleID:   "veh-1",
		Category:    "mechanic",
		Description: "Motor não liga, bateria ok",
		Status:      models.RequestStatusQuoted,
	}
	request.ID = "req-1"
	f.store.requests[request.ID] = request

	winner := &models.Proposal{
		ServiceRequestID: request.ID,
		ProviderID:       "mech-1",
		ClientID:         "client-1",
		OriginalValue:    100,
		PlatformFee:      15,
		TotalValue:       115,
		Status:           models.ProposalStatusPending,
	}
	winner.ID = "prop-win"
	f.store.proposals[winner.ID] = winner

	sibling := &models.Proposal{
		ServiceRequestID: request.ID,
		ProviderID:       "mech-2",
		ClientID:         "client-1",
		OriginalValue:    150,
		PlatformFee:      22.5,
		TotalValue:       172.5,
		Status:           models.ProposalStatusPending,
	}
	sibling.ID = "prop-other"
	f.store.proposals[sibling.ID] = sibling

	return request, winner, sibling
}

func TestCreateProposal_ComputesFeeAndQuotesRequest(t *testing.T) {
	f := newProposalFixture(t)

	request := &models.ServiceRequest{
		RequesterID: "client-1",
		VehicleID:   "veh-1",
		Category:    "mechanic",
		Description: "Pane elétrica na marginal",
		Status:      models.RequestStatusPending,
	}
	request.ID = "req-1"
	f.store.requests[request.ID] = request

	resp, err := f.service.Create(context.Background(), "mech-1", models.UserRoleMechanic, &dto.CreateProposalRequest{
		ServiceRequestID: "req-1",
		Message:          "Chego em 40 minutos",
		OriginalValue:    100,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.OriginalValue)
	assert.Equal(t, 15.0, resp.PlatformFee)
	assert.Equal(t, 115.0, resp.TotalValue)
	assert.Equal(t, models.ProposalStatusPending, resp.Status)

	// First proposal moves the request to quoted.
	assert.Equal(t, models.RequestStatusQuoted, f.store.requests["req-1"].Status)

	// Client is notified, in the feed and over the socket.
	require.Len(t, f.pusher.pushed["client-1"], 1)
	assert.False(t, f.pusher.pushed["client-1"][0].IsRead)
}

func TestCreateProposal_RoleCategoryMismatch(t *testing.T) {
	f := newProposalFixture(t)

	request := &models.ServiceRequest{
		RequesterID: "client-1",
		Category:    "tow",
		Status:      models.RequestStatusPending,
	}
	request.ID = "req-1"
	f.store.requests[request.ID] = request

	_, err := f.service.Create(context.Background(), "mech-1", models.UserRoleMechanic, &dto.CreateProposalRequest{
		ServiceRequestID: "req-1",
		OriginalValue:    100,
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestAcceptProposal_HappyPath(t *testing.T) {
	f := newProposalFixture(t)
	request, winner, sibling := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	// Winner accepted, sibling rejected, request assigned.
	assert.Equal(t, models.ProposalStatusAccepted, f.store.proposals[winner.ID].Status)
	assert.Equal(t, models.ProposalStatusRejected, f.store.proposals[sibling.ID].Status)

	stored := f.store.requests[request.ID]
	assert.Equal(t, models.RequestStatusAccepted, stored.Status)
	require.NotNil(t, stored.ProviderID)
	assert.Equal(t, "mech-1", *stored.ProviderID)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 115.0, *stored.Price)

	// Charge carries the proposal-derived idempotency key and the split.
	require.Len(t, f.gateway.requests, 1)
	sent := f.gateway.requests[0]
	assert.Equal(t, "proposal-prop-win", sent.IdempotencyKey)
	assert.Equal(t, 115.0, sent.Amount)
	assert.Equal(t, winner.ID, sent.ExternalRef)

	// Charge id recorded on proposal and payment transaction.
	assert.Equal(t, "chg_proposal-prop-win", resp.ChargeID)
	require.NotNil(t, f.store.proposals[winner.ID].ExternalPaymentID)
	assert.Equal(t, resp.ChargeID, *f.store.proposals[winner.ID].ExternalPaymentID)

	var txn *models.PaymentTransaction
	for _, p := range f.store.payments {
		txn = p
	}
	require.NotNil(t, txn)
	assert.Equal(t, models.PaymentStatusPending, txn.Status)
	assert.Equal(t, 115.0, txn.Amount)
	assert.Equal(t, resp.ChargeID, txn.ChargeID)
}

func TestAcceptProposal_GatewayFailureRollsBack(t *testing.T) {
	f := newProposalFixture(t)
	request, winner, sibling := f.seedQuotedRequest()

	f.gateway.failNext = true
	_, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.Error(t, err)

	// Nothing moved; no partial "accepted without charge" state.
	assert.Equal(t, models.ProposalStatusPending, f.store.proposals[winner.ID].Status)
	assert.Equal(t, models.ProposalStatusPending, f.store.proposals[sibling.ID].Status)
	assert.Equal(t, models.RequestStatusQuoted, f.store.requests[request.ID].Status)
	assert.Nil(t, f.store.proposals[winner.ID].ExternalPaymentID)
	assert.Empty(t, f.store.payments)

	// A retry succeeds once the gateway recovers.
	_, err = f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, f.store.proposals[winner.ID].Status)
}

func TestAcceptProposal_DoubleAcceptRejected(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	_, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	_, err = f.service.Accept(context.Background(), winner.ID, "client-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	// Still exactly one charge.
	assert.Len(t, f.gateway.requests, 1)
}

func TestAcceptProposal_WrongClient(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	_, err := f.service.Accept(context.Background(), winner.ID, "client-2")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestMarkPaid_SettlesAndNotifiesBothParties(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	require.NoError(t, f.service.MarkPaid(context.Background(), resp.ChargeID))

	assert.Equal(t, models.ProposalStatusPaid, f.store.proposals[winner.ID].Status)
	require.NotNil(t, f.store.proposals[winner.ID].PaidAt)

	var txn *models.PaymentTransaction
	for _, p := range f.store.payments {
		txn = p
	}
	require.NotNil(t, txn)
	assert.Equal(t, models.PaymentStatusPaid, txn.Status)

	assert.NotEmpty(t, f.pusher.pushed["client-1"])
	assert.NotEmpty(t, f.pusher.pushed["mech-1"])

	// Settling twice is a no-op.
	require.NoError(t, f.service.MarkPaid(context.Background(), resp.ChargeID))
}

func TestRejectAfterAccept_RefundsOpenCharge(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	rejected, err := f.service.Reject(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, rejected.Status)

	charge, err := f.gateway.GetCharge(context.Background(), resp.ChargeID)
	require.NoError(t, err)
	assert.Equal(t, "REFUNDED", charge.Status)

	var txn *models.PaymentTransaction
	for _, p := range f.store.payments {
		txn = p
	}
	require.NotNil(t, txn)
	assert.Equal(t, models.PaymentStatusRefunded, txn.Status)
}

func TestMarkPaid_RejectedProposalDoesNotSettle(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)
	_, err = f.service.Reject(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	// A late gateway confirmation must not resurrect a rejected proposal.
	err = f.service.MarkPaid(context.Background(), resp.ChargeID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	assert.Equal(t, models.ProposalStatusRejected, f.store.proposals[winner.ID].Status)
	assert.Nil(t, f.store.proposals[winner.ID].PaidAt)
}

func TestRejectAfterSettlement_Blocked(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)
	require.NoError(t, f.service.MarkPaid(context.Background(), resp.ChargeID))

	_, err = f.service.Reject(context.Background(), winner.ID, "client-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
	assert.Equal(t, models.ProposalStatusPaid, f.store.proposals[winner.ID].Status)
}

func TestAcceptAndSettle_SendsTransactionalMail(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Accept(context.Background(), winner.ID, "client-1")
	require.NoError(t, err)

	require.Len(t, f.mailer.accepted, 1)
	assert.Equal(t, "cliente@example.com", f.mailer.accepted[0].To)
	assert.Equal(t, "Oficina do Zé", f.mailer.accepted[0].Provider)
	assert.Equal(t, 115.0, f.mailer.accepted[0].Total)
	assert.Equal(t, resp.InvoiceURL, f.mailer.accepted[0].InvoiceURL)

	require.NoError(t, f.service.MarkPaid(context.Background(), resp.ChargeID))
	require.Len(t, f.mailer.receipts, 1)
	assert.Equal(t, "cliente@example.com", f.mailer.receipts[0].To)
	assert.Equal(t, 115.0, f.mailer.receipts[0].Amount)
	assert.Equal(t, resp.ChargeID, f.mailer.receipts[0].ChargeID)
}

func TestWithdrawProposal(t *testing.T) {
	f := newProposalFixture(t)
	_, winner, _ := f.seedQuotedRequest()

	resp, err := f.service.Withdraw(context.Background(), winner.ID, "mech-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusWithdrawn, resp.Status)

	// A withdrawn proposal cannot be accepted.
	_, err = f.service.Accept(context.Background(), winner.ID, "client-1")
	require.Error(t, err)
}
