package models

import "time"

// ServiceRequest is a client's ask for roadside assistance on one of
// their vehicles. Status moves through the lifecycle table in
// transitions.go; direct writes bypassing the guard are a bug.
type ServiceRequest struct {
	BaseModel
	RequesterID string        `gorm:"not null;index" json:"requester_id"`
	VehicleID   string        `gorm:"not null;index" json:"vehicle_id"`
	Category    string        `gorm:"type:varchar(20);not null" json:"category"` // "mechanic" or "tow"
	Description string        `gorm:"not null" json:"description"`
	Status      RequestStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// Set when a proposal is accepted.
	ProviderID *string  `gorm:"index" json:"provider_id,omitempty"`
	Price      *float64 `json:"price,omitempty"`

	// Where the breakdown happened.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Relations
	Vehicle   *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Proposals []Proposal `gorm:"foreignKey:ServiceRequestID" json:"proposals,omitempty"`
}
