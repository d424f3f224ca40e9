package service

import (
	"context"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
)

// ============================================
// Notification Service (for handlers)
// ============================================

type NotificationService interface {
	List(ctx context.Context, userID string, filter repository.NotificationFilter) ([]*repository.Notification, error)
	Count(ctx context.Context, userID string) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, userID, id string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broadcaster *socket.Broadcaster) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, broadcaster: broadcaster}
}

func (s *notificationService) List(ctx context.Context, userID string, filter repository.NotificationFilter) ([]*repository.Notification, error) {
	return s.notificationRepo.FindForUser(ctx, userID, filter)
}

func (s *notificationService) Count(ctx context.Context, userID string) (total int, unread int, err error) {
	return s.notificationRepo.CountByUserID(ctx, userID)
}

// owned loads a notification and checks it belongs to userID.
func (s *notificationService) owned(ctx context.Context, userID, id string) error {
	n, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

func (s *notificationService) pushCount(ctx context.Context, userID string) {
	if total, unread, err := s.notificationRepo.CountByUserID(ctx, userID); err == nil {
		s.broadcaster.SendNotificationCount(userID, total, unread)
	}
}
