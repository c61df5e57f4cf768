package dto

import (
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type CreateProposalRequest struct {
	ServiceRequestID string  `json:"service_request_id" binding:"required,uuid"`
	Message          string  `json:"message" binding:"omitempty,max=2000"`
	OriginalValue    float64 `json:"original_value" binding:"required,gt=0"`
}

type ProposalResponse struct {
	ID               string                `json:"id"`
	ServiceRequestID string                `json:"service_request_id"`
	ProviderID       string                `json:"provider_id"`
	ClientID         string                `json:"client_id"`
	Message          string                `json:"message"`
	OriginalValue    float64               `json:"original_value"`
	PlatformFee      float64               `json:"platform_fee"`
	TotalValue       float64               `json:"total_value"`
	Status           models.ProposalStatus `json:"status"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// AcceptProposalResponse carries the gateway checkout data the client
// needs to pay the charge.
type AcceptProposalResponse struct {
	Proposal   *ProposalResponse `json:"proposal"`
	ChargeID   string            `json:"charge_id"`
	InvoiceURL string            `json:"invoice_url,omitempty"`
	DueDate    string            `json:"due_date,omitempty"`
}

type PaymentResponse struct {
	ID         string               `json:"id"`
	ProposalID string               `json:"proposal_id"`
	Amount     float64              `json:"amount"`
	Status     models.PaymentStatus `json:"status"`
	ChargeID   string               `json:"charge_id"`
	PaidAt     *time.Time           `json:"paid_at,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

func NewProposalResponse(p *models.Proposal) *ProposalResponse {
	return &ProposalResponse{
		ID:               p.ID,
		ServiceRequestID: p.ServiceRequestID,
		ProviderID:       p.ProviderID,
		ClientID:         p.ClientID,
		Message:          p.Message,
		OriginalValue:    p.OriginalValue,
		PlatformFee:      p.PlatformFee,
		TotalValue:       p.TotalValue,
		Status:           p.Status,
		PaidAt:           p.PaidAt,
		CreatedAt:        p.CreatedAt,
	}
}

func NewPaymentResponse(t *models.PaymentTransaction) *PaymentResponse {
	return &PaymentResponse{
		ID:         t.ID,
		ProposalID: t.ProposalID,
		Amount:     t.Amount,
		Status:     t.Status,
		ChargeID:   t.ChargeID,
		PaidAt:     t.PaidAt,
		CreatedAt:  t.CreatedAt,
	}
}
