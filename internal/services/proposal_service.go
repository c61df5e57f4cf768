package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/email"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/payment"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type ProposalService interface {
	Create(ctx context.Context, providerID string, role models.UserRole, req *dto.CreateProposalRequest) (*dto.ProposalResponse, error)
	Accept(ctx context.Context, proposalID, clientID string) (*dto.AcceptProposalResponse, error)
	Reject(ctx context.Context, proposalID, clientID string) (*dto.ProposalResponse, error)
	Withdraw(ctx context.Context, proposalID, providerID string) (*dto.ProposalResponse, error)
	ListByRequest(ctx context.Context, requestID, userID string, role models.UserRole) ([]*dto.ProposalResponse, error)
	ListByProvider(ctx context.Context, providerID string) ([]*dto.ProposalResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]*dto.ProposalResponse, error)
	MarkPaid(ctx context.Context, chargeID string) error
}

type ProposalServiceImpl struct {
	proposalRepo     repositories.ProposalRepository
	requestRepo      repositories.RequestRepository
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	gateway          payment.Gateway
	mailer           email.Provider
	pusher           Pusher
}

func NewProposalService(
	proposalRepo repositories.ProposalRepository,
	requestRepo repositories.RequestRepository,
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	gateway payment.Gateway,
	mailer email.Provider,
	pusher Pusher,
) ProposalService {
	return &ProposalServiceImpl{
		proposalRepo:     proposalRepo,
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		gateway:          gateway,
		mailer:           mailer,
		pusher:           pusher,
	}
}

// Create records a provider's priced offer. The fee breakdown is
// computed server-side; the first proposal moves the request to quoted.
func (s *ProposalServiceImpl) Create(ctx context.Context, providerID string, role models.UserRole, req *dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	request, err := s.requestRepo.FindByID(req.ServiceRequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if categoryForRole(role) != request.Category {
		return nil, apperrors.ErrInvalidUserRole
	}
	if request.Status != models.RequestStatusPending && request.Status != models.RequestStatusQuoted {
		return nil, apperrors.ErrInvalidStatus("proposal", "request is no longer open for proposals")
	}
	if request.RequesterID == providerID {
		return nil, apperrors.ErrInvalidOperation("proposal", "cannot quote your own request")
	}

	existing, err := s.proposalRepo.FindByRequest(req.ServiceRequestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for i := range existing {
		if existing[i].ProviderID == providerID && existing[i].Status == models.ProposalStatusPending {
			return nil, apperrors.ErrConflict(nil, "proposal", "você já tem uma proposta pendente para esta solicitação")
		}
	}

	breakdown := ComputeFee(req.OriginalValue)
	proposal := &models.Proposal{
		ServiceRequestID: req.ServiceRequestID,
		ProviderID:       providerID,
		ClientID:         request.RequesterID,
		Message:          req.Message,
		OriginalValue:    breakdown.Original,
		PlatformFee:      breakdown.Fee,
		TotalValue:       breakdown.Total,
		Status:           models.ProposalStatusPending,
	}

	err = s.proposalRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.proposalRepo.Create(tx, proposal); err != nil {
			return err
		}
		if request.Status == models.RequestStatusPending {
			if err := s.requestRepo.UpdateStatus(tx, request.ID,
				models.RequestStatusPending, models.RequestStatusQuoted, nil); err != nil &&
				!errors.Is(err, repositories.ErrRequestNotFound) {
				// a concurrent first proposal already moved it to quoted
				return err
			}
		}
		n, err := s.notificationRepo.CreateNewProposalNotification(tx,
			request.RequesterID, request.ID, proposal.ID, proposal.TotalValue)
		if err != nil {
			return err
		}
		s.push(request.RequesterID, n)
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "proposal created",
		"proposal_id", proposal.ID, "request_id", request.ID, "total", proposal.TotalValue)
	return dto.NewProposalResponse(proposal), nil
}

// Accept is the agreement point. In one transaction: proposal pending →
// accepted, sibling proposals rejected, request quoted → accepted with
// provider and price, notifications inserted. Only then is the gateway
// charge created; a gateway failure rolls the whole acceptance back so
// no "accepted without charge" state survives.
func (s *ProposalServiceImpl) Accept(ctx context.Context, proposalID, clientID string) (*dto.AcceptProposalResponse, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if proposal.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("proposal belongs to another request")
	}
	if err := proposal.Status.GuardTransition(models.ProposalStatusAccepted); err != nil {
		return nil, apperrors.ErrInvalidStatus("proposal", err.Error()).WithError(err)
	}

	var charge *payment.Charge
	err = s.proposalRepo.Transaction(func(tx *gorm.DB) error {
		// Compare-and-set re-checks the status under the transaction, so
		// two simultaneous accepts cannot both win.
		if err := s.proposalRepo.UpdateStatus(tx, proposalID,
			models.ProposalStatusPending, models.ProposalStatusAccepted, nil); err != nil {
			return err
		}
		if err := s.proposalRepo.RejectSiblings(tx, proposal.ServiceRequestID, proposalID); err != nil {
			return err
		}
		if err := s.requestRepo.UpdateStatus(tx, proposal.ServiceRequestID,
			models.RequestStatusQuoted, models.RequestStatusAccepted,
			map[string]interface{}{
				"provider_id": proposal.ProviderID,
				"price":       proposal.TotalValue,
			}); err != nil {
			return err
		}

		n, err := s.notificationRepo.CreateProposalStatusNotification(tx,
			proposal.ProviderID, proposalID, models.ProposalStatusAccepted)
		if err != nil {
			return err
		}
		s.push(proposal.ProviderID, n)

		charge, err = s.createCharge(ctx, proposal)
		if err != nil {
			return err
		}

		if err := s.proposalRepo.SetExternalPayment(tx, proposalID, charge.ID); err != nil {
			return err
		}

		return s.proposalRepo.CreatePayment(tx, &models.PaymentTransaction{
			UserID:     clientID,
			ProposalID: proposalID,
			Amount:     proposal.TotalValue,
			Status:     models.PaymentStatusPending,
			ChargeID:   charge.ID,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) || errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrInvalidStatus("proposal", "proposal was accepted or withdrawn concurrently")
		}
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}

	proposal.Status = models.ProposalStatusAccepted
	proposal.ExternalPaymentID = &charge.ID

	s.sendAcceptedMail(ctx, proposal, charge)

	logger.CtxInfo(ctx, "proposal accepted",
		"proposal_id", proposalID, "charge_id", charge.ID, "total", proposal.TotalValue)
	return &dto.AcceptProposalResponse{
		Proposal:   dto.NewProposalResponse(proposal),
		ChargeID:   charge.ID,
		InvoiceURL: charge.InvoiceURL,
		DueDate:    charge.DueDate,
	}, nil
}

func (s *ProposalServiceImpl) createCharge(ctx context.Context, proposal *models.Proposal) (*payment.Charge, error) {
	req := payment.ChargeRequest{
		// Derived from the proposal id so a replayed accept cannot bill twice.
		IdempotencyKey: "proposal-" + proposal.ID,
		CustomerID:     proposal.ClientID,
		Amount:         proposal.TotalValue,
		Description:    fmt.Sprintf("SOS Mecânicos - serviço #%s", proposal.ServiceRequestID),
		ExternalRef:    proposal.ID,
	}
	if wallet := config.GetConfig().Payment.WalletID; wallet != "" {
		// The provider's share is routed at the gateway; the platform
		// keeps the remainder (the fee).
		req.Split = []payment.SplitEntry{{
			WalletID:   wallet,
			Percentage: ProviderSplitPercent(),
		}}
	}
	return s.gateway.CreateCharge(ctx, req)
}

func (s *ProposalServiceImpl) Reject(ctx context.Context, proposalID, clientID string) (*dto.ProposalResponse, error) {
	return s.clientSideTransition(ctx, proposalID, clientID, models.ProposalStatusRejected)
}

func (s *ProposalServiceImpl) clientSideTransition(ctx context.Context, proposalID, clientID string, to models.ProposalStatus) (*dto.ProposalResponse, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if proposal.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("proposal belongs to another request")
	}
	if err := proposal.Status.GuardTransition(to); err != nil {
		return nil, apperrors.ErrInvalidStatus("proposal", err.Error()).WithError(err)
	}

	err = s.proposalRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.proposalRepo.UpdateStatus(tx, proposalID, proposal.Status, to, nil); err != nil {
			return err
		}
		// Backing out of an accepted proposal voids the charge opened
		// when it was accepted.
		if to == models.ProposalStatusRejected && proposal.Status == models.ProposalStatusAccepted {
			if err := s.refundOpenCharge(ctx, tx, proposalID); err != nil {
				return err
			}
		}
		n, err := s.notificationRepo.CreateProposalStatusNotification(tx, proposal.ProviderID, proposalID, to)
		if err != nil {
			return err
		}
		s.push(proposal.ProviderID, n)
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, apperrors.ErrInvalidStatus("proposal", "proposal status changed concurrently")
		}
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}

	proposal.Status = to
	return dto.NewProposalResponse(proposal), nil
}

func (s *ProposalServiceImpl) Withdraw(ctx context.Context, proposalID, providerID string) (*dto.ProposalResponse, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if proposal.ProviderID != providerID {
		return nil, apperrors.NewForbiddenError("proposal belongs to another provider")
	}
	if err := proposal.Status.GuardTransition(models.ProposalStatusWithdrawn); err != nil {
		return nil, apperrors.ErrInvalidStatus("proposal", err.Error()).WithError(err)
	}

	if err := s.proposalRepo.Transaction(func(tx *gorm.DB) error {
		return s.proposalRepo.UpdateStatus(tx, proposalID,
			models.ProposalStatusPending, models.ProposalStatusWithdrawn, nil)
	}); err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, apperrors.ErrInvalidStatus("proposal", "proposal status changed concurrently")
		}
		return nil, apperrors.InternalError(err)
	}

	proposal.Status = models.ProposalStatusWithdrawn
	return dto.NewProposalResponse(proposal), nil
}

func (s *ProposalServiceImpl) ListByRequest(ctx context.Context, requestID, userID string, role models.UserRole) ([]*dto.ProposalResponse, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if request.RequesterID != userID && role != models.UserRoleAdmin {
		return nil, apperrors.NewForbiddenError("request belongs to another user")
	}

	proposals, err := s.proposalRepo.FindByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposalList(proposals), nil
}

func (s *ProposalServiceImpl) ListByProvider(ctx context.Context, providerID string) ([]*dto.ProposalResponse, error) {
	proposals, err := s.proposalRepo.FindByProvider(providerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposalList(proposals), nil
}

func (s *ProposalServiceImpl) ListByClient(ctx context.Context, clientID string) ([]*dto.ProposalResponse, error) {
	proposals, err := s.proposalRepo.FindByClient(clientID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposalList(proposals), nil
}

// MarkPaid is invoked by the payment worker once the gateway confirms
// a charge. Idempotent: an already-paid transaction is a no-op.
func (s *ProposalServiceImpl) MarkPaid(ctx context.Context, chargeID string) error {
	txn, err := s.proposalRepo.FindPaymentByChargeID(chargeID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if txn.Status == models.PaymentStatusPaid {
		return nil
	}

	proposal, err := s.proposalRepo.FindByID(txn.ProposalID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	// A rejected or withdrawn proposal never settles, even if the
	// gateway later reports the charge as paid.
	if err := proposal.Status.GuardTransition(models.ProposalStatusPaid); err != nil {
		return apperrors.ErrInvalidStatus("proposal", err.Error()).WithError(err)
	}

	now := time.Now()
	err = s.proposalRepo.Transaction(func(tx *gorm.DB) error {
		txn.Status = models.PaymentStatusPaid
		txn.PaidAt = &now
		if err := s.proposalRepo.UpdatePayment(tx, txn); err != nil {
			return err
		}
		if err := s.proposalRepo.UpdateStatus(tx, proposal.ID,
			proposal.Status, models.ProposalStatusPaid,
			map[string]interface{}{"paid_at": now}); err != nil {
			return err
		}

		for _, userID := range []string{proposal.ClientID, proposal.ProviderID} {
			n, err := s.notificationRepo.CreatePaymentNotification(tx, userID, proposal.ID, txn.Amount)
			if err != nil {
				return err
			}
			s.push(userID, n)
		}
		return nil
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	s.sendReceiptMail(ctx, txn)

	logger.CtxInfo(ctx, "payment settled", "charge_id", chargeID, "proposal_id", proposal.ID)
	return nil
}

// refundOpenCharge voids the still-pending charge of a proposal the
// client backed out of. A charge that already settled blocks the move.
func (s *ProposalServiceImpl) refundOpenCharge(ctx context.Context, tx *gorm.DB, proposalID string) error {
	txn, err := s.proposalRepo.FindPaymentByProposal(proposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil
		}
		return err
	}
	if txn.Status == models.PaymentStatusPaid {
		return apperrors.ErrInvalidStatus("proposal", "pagamento já compensado, proposta não pode ser recusada")
	}
	if txn.Status != models.PaymentStatusPending {
		return nil
	}
	if txn.ChargeID != "" {
		if _, err := s.gateway.RefundCharge(ctx, txn.ChargeID); err != nil {
			return err
		}
	}
	txn.Status = models.PaymentStatusRefunded
	return s.proposalRepo.UpdatePayment(tx, txn)
}

func (s *ProposalServiceImpl) sendAcceptedMail(ctx context.Context, proposal *models.Proposal, charge *payment.Charge) {
	if s.mailer == nil {
		return
	}
	client, err := s.userRepo.FindByID(proposal.ClientID)
	if err != nil {
		logger.CtxWarn(ctx, "accepted mail skipped", "proposal_id", proposal.ID, "error", err)
		return
	}
	providerName := proposal.ProviderID
	if provider, err := s.userRepo.FindByID(proposal.ProviderID); err == nil && provider.Profile != nil {
		providerName = provider.Profile.Name
	}
	if err := s.mailer.SendProposalAccepted(client.Email, providerName, proposal.TotalValue, charge.InvoiceURL); err != nil {
		logger.CtxWarn(ctx, "accepted mail failed", "proposal_id", proposal.ID, "error", err)
	}
}

func (s *ProposalServiceImpl) sendReceiptMail(ctx context.Context, txn *models.PaymentTransaction) {
	if s.mailer == nil {
		return
	}
	payer, err := s.userRepo.FindByID(txn.UserID)
	if err != nil {
		logger.CtxWarn(ctx, "receipt mail skipped", "charge_id", txn.ChargeID, "error", err)
		return
	}
	if err := s.mailer.SendPaymentReceipt(payer.Email, txn.Amount, txn.ChargeID); err != nil {
		logger.CtxWarn(ctx, "receipt mail failed", "charge_id", txn.ChargeID, "error", err)
	}
}

func (s *ProposalServiceImpl) push(userID string, n *models.Notification) {
	if s.pusher != nil && n != nil {
		s.pusher.Push(userID, n)
	}
}

func proposalList(proposals []models.Proposal) []*dto.ProposalResponse {
	out := make([]*dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		out = append(out, dto.NewProposalResponse(&proposals[i]))
	}
	return out
}
