package services

import (
	"context"
	"errors"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type NotificationService interface {
	List(ctx context.Context, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID, userID string) error
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(userID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, dto.NewNotificationResponse(&notifications[i]))
	}

	page := criteria.Page
	if page == 0 {
		page = 1
	}
	return &dto.NotificationListResponse{
		Notifications: out,
		UnreadCount:   unread,
		Total:         total,
		Page:          page,
	}, nil
}

func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	if err := s.notificationRepo.MarkAsRead(notificationID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) Delete(ctx context.Context, notificationID, userID string) error {
	if err := s.notificationRepo.DeleteNotification(notificationID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}
