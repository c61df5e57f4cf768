package dto

import (
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type CreateRequestRequest struct {
	VehicleID   string   `json:"vehicle_id" binding:"required,uuid"`
	Category    string   `json:"category" binding:"required,oneof=mechanic tow"`
	Description string   `json:"description" binding:"required,min=10,max=2000"`
	Latitude    *float64 `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
}

type RequestSearchCriteria struct {
	Status   string `form:"status" validate:"omitempty,is-request-status"`
	Category string `form:"category" validate:"omitempty,oneof=mechanic tow"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type RequestResponse struct {
	ID          string               `json:"id"`
	RequesterID string               `json:"requester_id"`
	VehicleID   string               `json:"vehicle_id"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Status      models.RequestStatus `json:"status"`
	ProviderID  *string              `json:"provider_id,omitempty"`
	Price       *float64             `json:"price,omitempty"`
	Latitude    *float64             `json:"latitude,omitempty"`
	Longitude   *float64             `json:"longitude,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`

	Vehicle   *VehicleResponse    `json:"vehicle,omitempty"`
	Proposals []*ProposalResponse `json:"proposals,omitempty"`
}

type RequestListResponse struct {
	Requests []*RequestResponse `json:"requests"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

func NewRequestResponse(req *models.ServiceRequest) *RequestResponse {
	resp := &RequestResponse{
		ID:          req.ID,
		RequesterID: req.RequesterID,
		VehicleID:   req.VehicleID,
		Category:    req.Category,
		Description: req.Description,
		Status:      req.Status,
		ProviderID:  req.ProviderID,
		Price:       req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CompletedAt: req.CompletedAt,
		CancelledAt: req.CancelledAt,
		CreatedAt:   req.CreatedAt,
	}
	if req.Vehicle != nil {
		resp.Vehicle = NewVehicleResponse(req.Vehicle)
	}
	for i := range req.Proposals {
		resp.Proposals = append(resp.Proposals, NewProposalResponse(&req.Proposals[i]))
	}
	return resp
}
