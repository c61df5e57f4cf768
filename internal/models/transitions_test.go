package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestLifecycle_HappyPath(t *testing.T) {
	t.Parallel()

	path := []RequestStatus{
		RequestStatusPending,
		RequestStatusQuoted,
		RequestStatusAccepted,
		RequestStatusInProgress,
		RequestStatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, path[i].GuardTransition(path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestRequestLifecycle_IllegalJumps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to RequestStatus
	}{
		{RequestStatusPending, RequestStatusCompleted},
		{RequestStatusPending, RequestStatusInProgress},
		{RequestStatusQuoted, RequestStatusInProgress},
		{RequestStatusAccepted, RequestStatusCancelled},
		{RequestStatusInProgress, RequestStatusCancelled},
		{RequestStatusCompleted, RequestStatusPending},
		{RequestStatusCancelled, RequestStatusPending},
	}

	for _, tc := range cases {
		err := tc.from.GuardTransition(tc.to)
		assert.Error(t, err, "expected %s -> %s to be rejected", tc.from, tc.to)

		var transErr *ErrTransition
		assert.True(t, errors.As(err, &transErr), "guard must return *ErrTransition")
		assert.Equal(t, string(tc.from), transErr.From)
		assert.Equal(t, string(tc.to), transErr.To)
	}
}

func TestRequestLifecycle_CancelOnlyBeforeAgreement(t *testing.T) {
	t.Parallel()

	assert.True(t, RequestStatusPending.CanTransitionTo(RequestStatusCancelled))
	assert.True(t, RequestStatusQuoted.CanTransitionTo(RequestStatusCancelled))
	assert.False(t, RequestStatusAccepted.CanTransitionTo(RequestStatusCancelled))
	assert.False(t, RequestStatusInProgress.CanTransitionTo(RequestStatusCancelled))
}

func TestRequestLifecycle_TerminalStates(t *testing.T) {
	t.Parallel()

	assert.True(t, RequestStatusCompleted.IsTerminal())
	assert.True(t, RequestStatusCancelled.IsTerminal())
	assert.False(t, RequestStatusPending.IsTerminal())
}

func TestProposalLifecycle(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ProposalStatusPending.GuardTransition(ProposalStatusAccepted))
	assert.NoError(t, ProposalStatusPending.GuardTransition(ProposalStatusWithdrawn))
	assert.NoError(t, ProposalStatusAccepted.GuardTransition(ProposalStatusCompleted))
	assert.NoError(t, ProposalStatusCompleted.GuardTransition(ProposalStatusPaid))
	assert.NoError(t, ProposalStatusAccepted.GuardTransition(ProposalStatusPaid))
	assert.NoError(t, ProposalStatusPaid.GuardTransition(ProposalStatusCompleted))

	// Double accept is an illegal self-transition.
	assert.Error(t, ProposalStatusAccepted.GuardTransition(ProposalStatusAccepted))
	assert.Error(t, ProposalStatusPaid.GuardTransition(ProposalStatusPending))
	assert.Error(t, ProposalStatusRejected.GuardTransition(ProposalStatusAccepted))
}
