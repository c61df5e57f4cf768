package models

import "fmt"

// ErrTransition is returned when a status change is not in the
// lifecycle table. Handlers map it onto an INVALID_STATUS response.
type ErrTransition struct {
	Entity string
	From   string
	To     string
}

func (e *ErrTransition) Error() string {
	return fmt.Sprintf("%s: transition %s -> %s is not allowed", e.Entity, e.From, e.To)
}

// requestTransitions is the full lifecycle of a service request.
// cancelled is reachable only before work was agreed.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:    {RequestStatusQuoted, RequestStatusCancelled},
	RequestStatusQuoted:     {RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusAccepted:   {RequestStatusInProgress},
	RequestStatusInProgress: {RequestStatusCompleted},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending: {ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn},
	// Payment may settle before or after the job is finished, so paid
	// and completed are reachable from each other in either order.
	ProposalStatusAccepted:  {ProposalStatusCompleted, ProposalStatusPaid, ProposalStatusRejected},
	ProposalStatusCompleted: {ProposalStatusPaid},
	ProposalStatusPaid:      {ProposalStatusCompleted},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
}

// CanTransitionTo reports whether the request may move to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GuardTransition validates the move and returns a typed error on an
// illegal jump (e.g. pending -> completed).
func (s RequestStatus) GuardTransition(next RequestStatus) error {
	if !s.CanTransitionTo(next) {
		return &ErrTransition{Entity: "service_request", From: string(s), To: string(next)}
	}
	return nil
}

func (s RequestStatus) IsTerminal() bool {
	return len(requestTransitions[s]) == 0
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ProposalStatus) GuardTransition(next ProposalStatus) error {
	if !s.CanTransitionTo(next) {
		return &ErrTransition{Entity: "proposal", From: string(s), To: string(next)}
	}
	return nil
}
