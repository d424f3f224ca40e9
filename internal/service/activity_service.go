package service

import (
	"context"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

// ============================================
// Activity Service
// ============================================

// ActivityService records and reads raw activity logs. Callers format them with the activity package.
type ActivityService interface {
	Log(ctx context.Context, entry *repository.ActivityLog) error
	LogChanges(ctx context.Context, projectID, entityType, entityID, actorID string, changes []activity.FieldChange) error
	ListEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.ActivityLog, error)
	ListProject(ctx context.Context, projectID string, limit int) ([]*repository.ActivityLog, error)
	Cleanup(ctx context.Context, retentionDays int) (int, error)
}

type activityService struct {
	activityRepo repository.ActivityLogRepository
	now          func() time.Time
}

func NewActivityService(activityRepo repository.ActivityLogRepository, now func() time.Time) ActivityService {
	if now == nil {
		now = time.Now
	}
	return &activityService{activityRepo: activityRepo, now: now}
}

func (s *activityService) Log(ctx context.Context, entry *repository.ActivityLog) error {
	return s.activityRepo.Create(ctx, entry)
}

// LogChanges writes one log row per changed field. A status field is recorded as a status change.
func (s *activityService) LogChanges(ctx context.Context, projectID, entityType, entityID, actorID string, changes []activity.FieldChange) error {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	for _, c := range changes {
		field := c.Field
		activityType := types.ActivityUpdated
		if field == "status" {
			activityType = types.ActivityStatusChanged
		}
		entry := &repository.ActivityLog{
			ProjectID:    projectID,
			EntityType:   entityType,
			EntityID:     entityID,
			ActivityType: activityType,
			FieldName:    &field,
			OldValue:     activity.EncodeValue(c.Old),
			NewValue:     activity.EncodeValue(c.New),
			CreatedBy:    actor,
		}
		if err := s.activityRepo.Create(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *activityService) ListEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.ActivityLog, error) {
	return s.activityRepo.FindByEntity(ctx, entityType, entityID, limit)
}

func (s *activityService) ListProject(ctx context.Context, projectID string, limit int) ([]*repository.ActivityLog, error) {
	return s.activityRepo.FindByProject(ctx, projectID, limit)
}

func (s *activityService) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	n, err := s.activityRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[Activity] 🧹 removed %d logs older than %s", n, cutoff.Format("2006-01-02"))
	}
	return n, nil
}

// logEvent records a created/deleted/assigned style event. Failures are logged, never returned.
func logEvent(ctx context.Context, svc ActivityService, projectID, entityType, entityID, activityType, actorID string, metadata map[string]interface{}) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	err := svc.Log(ctx, &repository.ActivityLog{
		ProjectID:    projectID,
		EntityType:   entityType,
		EntityID:     entityID,
		ActivityType: activityType,
		Metadata:     metadata,
		CreatedBy:    actor,
	})
	if err != nil {
		log.Printf("[Activity] ⚠️ failed to log %s %s %s: %v", activityType, entityType, entityID, err)
	}
}

func logChanges(ctx context.Context, svc ActivityService, projectID, entityType, entityID, actorID string, changes []activity.FieldChange) {
	if err := svc.LogChanges(ctx, projectID, entityType, entityID, actorID, changes); err != nil {
		log.Printf("[Activity] ⚠️ failed to log changes on %s %s: %v", entityType, entityID, err)
	}
}

// ============================================
// Value helpers for diffing
// ============================================

func textValue(s string) activity.Value { return activity.Text(s) }

func optionalText(s *string) activity.Value {
	if s == nil {
		return activity.Empty()
	}
	return activity.Text(*s)
}

func dateValue(t *time.Time) activity.Value {
	if t == nil || t.IsZero() {
		return activity.Empty()
	}
	return activity.Text(t.Format("2006-01-02"))
}

func stringsValue(items []string) activity.Value {
	values := make([]activity.Value, 0, len(items))
	for _, s := range items {
		values = append(values, activity.Text(s))
	}
	return activity.List(values...)
}

func changedFields(changes []activity.FieldChange) []string {
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	return fields
}
