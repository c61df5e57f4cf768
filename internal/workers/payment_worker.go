package workers

import (
	"context"
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/payment"
)

const pendingPaymentBatch = 50

// PaymentWorker reconciles pending charges against the gateway. The
// gateway has no webhook push in this deployment, so settlement is
// detected by polling.
type PaymentWorker struct {
	proposalRepo    repositories.ProposalRepository
	proposalService services.ProposalService
	gateway         payment.Gateway
	interval        time.Duration
}

func NewPaymentWorker(
	proposalRepo repositories.ProposalRepository,
	proposalService services.ProposalService,
	gateway payment.Gateway,
	interval time.Duration,
) *PaymentWorker {
	return &PaymentWorker{
		proposalRepo:    proposalRepo,
		proposalService: proposalService,
		gateway:         gateway,
		interval:        interval,
	}
}

func (w *PaymentWorker) Start(ctx context.Context) {
	go w.reconcileLoop(ctx)
}

func (w *PaymentWorker) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("payment worker stopped")
			return
		case <-ticker.C:
			w.reconcileOnce(ctx)
		}
	}
}

func (w *PaymentWorker) reconcileOnce(ctx context.Context) {
	pending, err := w.proposalRepo.FindPendingPayments(pendingPaymentBatch)
	if err != nil {
		logger.WorkerLog("payment", "list pending payments", err)
		return
	}

	for _, txn := range pending {
		if txn.ChargeID == "" {
			continue
		}

		charge, err := w.gateway.GetCharge(ctx, txn.ChargeID)
		if err != nil {
			logger.WorkerLog("payment", "poll charge "+txn.ChargeID, err)
			continue
		}
		if !charge.Paid() {
			continue
		}

		if err := w.proposalService.MarkPaid(ctx, txn.ChargeID); err != nil {
			logger.WorkerLog("payment", "settle charge "+txn.ChargeID, err)
			continue
		}
		logger.Info("charge settled", "charge_id", txn.ChargeID, "proposal_id", txn.ProposalID)
	}
}
