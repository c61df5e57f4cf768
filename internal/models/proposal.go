package models

import "time"

// Proposal is a priced offer from a provider against a service request.
// Money fields are stored with 2 decimal places; OriginalValue + PlatformFee
// must always equal TotalValue (see services.ComputeFee).
type Proposal struct {
	BaseModel
	ServiceRequestID string         `gorm:"not null;index" json:"service_request_id"`
	ProviderID       string         `gorm:"not null;index" json:"provider_id"`
	ClientID         string         `gorm:"not null;index" json:"client_id"`
	Message          string         `json:"message"`
	OriginalValue    float64        `gorm:"not null" json:"original_value"`
	PlatformFee      float64        `gorm:"not null" json:"platform_fee"`
	TotalValue       float64        `gorm:"not null" json:"total_value"`
	Status           ProposalStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// Charge created at the payment gateway when the client accepts.
	ExternalPaymentID *string    `gorm:"uniqueIndex" json:"external_payment_id,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}

type PaymentTransaction struct {
	BaseModel
	UserID     string        `gorm:"not null;index" json:"user_id"`
	ProposalID string        `gorm:"not null;index" json:"proposal_id"`
	Amount     float64       `json:"amount"`
	Status     PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	// Gateway charge id; unique so a replayed accept cannot record twice.
	ChargeID string     `gorm:"uniqueIndex" json:"charge_id"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}
