package models

import "time"

// ProviderStats is the per-provider aggregate row: jobs, ratings and
// the location heartbeat used to decide whether the provider is online.
type ProviderStats struct {
	BaseModel
	UserID          string     `gorm:"uniqueIndex;not null" json:"user_id"`
	CompletedJobs   int        `gorm:"default:0" json:"completed_jobs"`
	Rating          float64    `gorm:"default:0" json:"rating"`
	RatingCount     int        `gorm:"default:0" json:"rating_count"`
	LocationReports int64      `gorm:"default:0" json:"location_reports"`
	IsOnline        bool       `gorm:"default:false" json:"is_online"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
}

// Review is left by the client after a completed request.
type Review struct {
	BaseModel
	ServiceRequestID string `gorm:"not null;uniqueIndex" json:"service_request_id"`
	AuthorID         string `gorm:"not null;index" json:"author_id"`
	ProviderID       string `gorm:"not null;index" json:"provider_id"`
	Rating           int    `gorm:"not null" json:"rating"` // 1..5
	Comment          string `json:"comment"`
}
