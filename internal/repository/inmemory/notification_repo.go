package inmemory

import (
	"context"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type NotificationRepo struct {
	s *Storage
}

func NewNotificationRepo(s *Storage) *NotificationRepo {
	return &NotificationRepo{s: s}
}

func copyNotification(n *repository.Notification) *repository.Notification {
	c := *n
	c.Data = copyMap(n.Data)
	return &c
}

func (r *NotificationRepo) Create(ctx context.Context, notification *repository.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notification.ID = newID()
	notification.CreatedAt = r.s.now()
	r.s.Notifications[notification.ID] = copyNotification(notification)
	return nil
}

func (r *NotificationRepo) FindByID(ctx context.Context, id string) (*repository.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if n, ok := r.s.Notifications[id]; ok {
		return copyNotification(n), nil
	}
	return nil, nil
}

func (r *NotificationRepo) FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error) {
	return r.FindForUser(ctx, userID, repository.NotificationFilter{UnreadOnly: unreadOnly})
}

func (r *NotificationRepo) FindForUser(ctx context.Context, userID string, filter repository.NotificationFilter) ([]*repository.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []*repository.Notification{}
	for _, n := range r.s.Notifications {
		if n.UserID != userID || (filter.UnreadOnly && n.Read) {
			continue
		}
		if filter.ProjectID != "" && (n.ProjectID == nil || *n.ProjectID != filter.ProjectID) {
			continue
		}
		list = append(list, copyNotification(n))
	}
	sortByCreated(list, func(n *repository.Notification) time.Time { return n.CreatedAt }, true)

	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultNotificationLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *NotificationRepo) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total, unread := 0, 0
	for _, n := range r.s.Notifications {
		if n.UserID != userID {
			continue
		}
		total++
		if !n.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *NotificationRepo) MarkAsRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n, ok := r.s.Notifications[id]; ok {
		n.Read = true
	}
	return nil
}

func (r *NotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.Notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.Notifications, id)
	return nil
}

func (r *NotificationRepo) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, notif := range r.s.Notifications {
		if notif.CreatedAt.Before(olderThan) && (!readOnly || notif.Read) {
			delete(r.s.Notifications, id)
			n++
		}
	}
	return n, nil
}
