package dto

import (
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type CreateReviewRequest struct {
	ServiceRequestID string `json:"service_request_id" binding:"required,uuid"`
	Rating           int    `json:"rating" binding:"required,min=1,max=5"`
	Comment          string `json:"comment" binding:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID               string    `json:"id"`
	ServiceRequestID string    `json:"service_request_id"`
	AuthorID         string    `json:"author_id"`
	ProviderID       string    `json:"provider_id"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProviderStatsResponse struct {
	UserID        string            `json:"user_id"`
	CompletedJobs int               `json:"completed_jobs"`
	Rating        float64           `json:"rating"`
	RatingCount   int               `json:"rating_count"`
	IsOnline      bool              `json:"is_online"`
	LastSeenAt    *time.Time        `json:"last_seen_at,omitempty"`
	Reviews       []*ReviewResponse `json:"reviews,omitempty"`
}

func NewReviewResponse(r *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:               r.ID,
		ServiceRequestID: r.ServiceRequestID,
		AuthorID:         r.AuthorID,
		ProviderID:       r.ProviderID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		CreatedAt:        r.CreatedAt,
	}
}
