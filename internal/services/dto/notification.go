package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type NotificationResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	ReferenceID string         `json:"reference_id,omitempty"`
	Data        datatypes.JSON `json:"data,omitempty"`
	IsRead      bool           `json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		Data:        n.Data,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}
