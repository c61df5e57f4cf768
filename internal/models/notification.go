package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID      string         `gorm:"not null;index" json:"user_id"`
	Type        string         `gorm:"not null" json:"type"` // "new_proposal", "proposal_status", ...
	Title       string         `gorm:"not null" json:"title"`
	Message     string         `json:"message"`
	ReferenceID string         `gorm:"index" json:"reference_id"` // request or proposal id
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead      bool           `gorm:"default:false" json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
}
