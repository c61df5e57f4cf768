package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationData = errors.New("invalid notification data")
)

// Notification type tags
const (
	NotificationTypeNewRequest     = "new_request"
	NotificationTypeNewProposal    = "new_proposal"
	NotificationTypeProposalStatus = "proposal_status"
	NotificationTypeRequestStatus  = "request_status"
	NotificationTypePayment        = "payment"
	NotificationTypeSubscription   = "subscription"
)

type NotificationCriteria struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type NotificationRepository interface {
	CreateNotification(tx *gorm.DB, notification *models.Notification) error
	FindNotificationByID(id string) (*models.Notification, error)
	FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	GetUnreadCount(userID string) (int64, error)
	DeleteNotification(id, userID string) error
	CleanOldNotifications(days int) error

	// Factory methods for the common notification types
	CreateNewProposalNotification(tx *gorm.DB, clientID, requestID, proposalID string, total float64) (*models.Notification, error)
	CreateProposalStatusNotification(tx *gorm.DB, providerID, proposalID string, status models.ProposalStatus) (*models.Notification, error)
	CreateRequestStatusNotification(tx *gorm.DB, userID, requestID string, status models.RequestStatus) (*models.Notification, error)
	CreatePaymentNotification(tx *gorm.DB, userID, proposalID string, amount float64) (*models.Notification, error)
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) CreateNotification(tx *gorm.DB, notification *models.Notification) error {
	if err := r.validateNotification(notification); err != nil {
		return err
	}
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindNotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := r.db.Where("user_id = ?", userID)

	// Apply filters
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	var total int64
	if err := query.Model(&models.Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&notifications).Error

	return notifications, total, err
}

// MarkAsRead is scoped by user so nobody can read-flag foreign rows.
func (r *NotificationRepositoryImpl) MarkAsRead(notificationID, userID string) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(userID string) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}

func (r *NotificationRepositoryImpl) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) DeleteNotification(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) CleanOldNotifications(days int) error {
	cutoffDate := time.Now().AddDate(0, 0, -days)
	return r.db.Where("created_at < ? AND is_read = ?", cutoffDate, true).
		Delete(&models.Notification{}).Error
}

// Factory methods

func (r *NotificationRepositoryImpl) CreateNewProposalNotification(tx *gorm.DB, clientID, requestID, proposalID string, total float64) (*models.Notification, error) {
	data, err := json.Marshal(map[string]interface{}{
		"request_id":  requestID,
		"proposal_id": proposalID,
		"total_value": total,
	})
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:      clientID,
		Type:        NotificationTypeNewProposal,
		Title:       "Nova proposta recebida",
		Message:     fmt.Sprintf("Você recebeu uma proposta de R$ %.2f para o seu chamado", total),
		ReferenceID: proposalID,
		Data:        datatypes.JSON(data),
	}

	return notification, r.CreateNotification(tx, notification)
}

func (r *NotificationRepositoryImpl) CreateProposalStatusNotification(tx *gorm.DB, providerID, proposalID string, status models.ProposalStatus) (*models.Notification, error) {
	var title, message string

	switch status {
	case models.ProposalStatusAccepted:
		title = "Proposta aceita"
		message = "Sua proposta foi aceita pelo cliente"
	case models.ProposalStatusRejected:
		title = "Proposta recusada"
		message = "Sua proposta foi recusada"
	case models.ProposalStatusPaid:
		title = "Pagamento confirmado"
		message = "O pagamento da sua proposta foi confirmado"
	default:
		return nil, fmt.Errorf("unsupported proposal status for notification: %s", status)
	}

	notification := &models.Notification{
		UserID:      providerID,
		Type:        NotificationTypeProposalStatus,
		Title:       title,
		Message:     message,
		ReferenceID: proposalID,
	}

	return notification, r.CreateNotification(tx, notification)
}

func (r *NotificationRepositoryImpl) CreateRequestStatusNotification(tx *gorm.DB, userID, requestID string, status models.RequestStatus) (*models.Notification, error) {
	var title, message string

	switch status {
	case models.RequestStatusInProgress:
		title = "Atendimento iniciado"
		message = "O prestador iniciou o atendimento do seu chamado"
	case models.RequestStatusCompleted:
		title = "Atendimento concluído"
		message = "Seu chamado foi concluído"
	case models.RequestStatusCancelled:
		title = "Chamado cancelado"
		message = "O chamado foi cancelado"
	default:
		return nil, fmt.Errorf("unsupported request status for notification: %s", status)
	}

	notification := &models.Notification{
		UserID:      userID,
		Type:        NotificationTypeRequestStatus,
		Title:       title,
		Message:     message,
		ReferenceID: requestID,
	}

	return notification, r.CreateNotification(tx, notification)
}

func (r *NotificationRepositoryImpl) CreatePaymentNotification(tx *gorm.DB, userID, proposalID string, amount float64) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:      userID,
		Type:        NotificationTypePayment,
		Title:       "Pagamento recebido",
		Message:     fmt.Sprintf("Pagamento de R$ %.2f confirmado", amount),
		ReferenceID: proposalID,
	}

	return notification, r.CreateNotification(tx, notification)
}

// Helpers

func (r *NotificationRepositoryImpl) validateNotification(notification *models.Notification) error {
	if notification.UserID == "" {
		return errors.New("user ID is required")
	}
	if notification.Type == "" {
		return errors.New("notification type is required")
	}
	if notification.Title == "" {
		return errors.New("notification title is required")
	}

	validTypes := map[string]bool{
		NotificationTypeNewRequest:     true,
		NotificationTypeNewProposal:    true,
		NotificationTypeProposalStatus: true,
		NotificationTypeRequestStatus:  true,
		NotificationTypePayment:        true,
		NotificationTypeSubscription:   true,
	}
	if !validTypes[notification.Type] {
		return fmt.Errorf("invalid notification type: %s", notification.Type)
	}

	if len(notification.Data) > 0 && !json.Valid(notification.Data) {
		return ErrInvalidNotificationData
	}

	return nil
}
