package cron

import (
	"context"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cronTestEnv struct {
	now       time.Time
	repos     *repository.Repositories
	scheduler *Scheduler
	pm        *repository.User
	project   *repository.Project
}

func setupCronTest(t *testing.T) *cronTestEnv {
	t.Helper()
	ctx := context.Background()
	env := &cronTestEnv{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return env.now }

	repos, storage := inmemory.NewRepositories()
	storage.SetClock(clock)
	env.repos = repos

	cfg := &config.Config{
		JWTSecret:             "cron-secret",
		UnknownRolePolicy:     "deny",
		VDCRReminderDays:      7,
		ActivityRetentionDays: 90,
	}
	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		NotifSvc: notification.NewService(repos.NotificationRepo, repos.UserRepo, repos.ProjectRepo),
		EmailSvc: email.NewService(&email.Config{}),
		Clock:    clock,
	})
	env.scheduler = NewScheduler(services, repos, cfg)
	env.scheduler.now = clock

	env.pm = &repository.User{Email: "pm@fab.com", Name: "Priya PM", Role: types.RoleProjectManager, Password: "x"}
	require.NoError(t, repos.UserRepo.Create(ctx, env.pm))
	env.project = &repository.Project{
		Name:       "Refinery Expansion",
		ClientName: "Acme Petro",
		Status:     types.ProjectActive,
		ManagerID:  &env.pm.ID,
		CreatedBy:  env.pm.ID,
	}
	require.NoError(t, repos.ProjectRepo.Create(ctx, env.project))
	return env
}

func (env *cronTestEnv) addDocument(t *testing.T, name, status string, age time.Duration) {
	t.Helper()
	last := env.now.Add(-age)
	require.NoError(t, env.repos.VDCRRepo.Create(context.Background(), &repository.VDCRRecord{
		ProjectID:    env.project.ID,
		SrNo:         "1",
		DocumentName: name,
		Status:       status,
		LastUpdate:   &last,
	}))
}

func TestReviewRemindersOnlyForStaleReviewDocuments(t *testing.T) {
	env := setupCronTest(t)
	env.addDocument(t, "GA Drawing", types.VDCRSentForApproval, 10*24*time.Hour)
	env.addDocument(t, "Datasheet", types.VDCRSentForApproval, 2*24*time.Hour)
	env.addDocument(t, "Weld Map", types.VDCRApproved, 30*24*time.Hour)

	sent, err := env.scheduler.ManualTrigger("vdcr_reminders")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	notifications, err := env.repos.NotificationRepo.FindByUserID(context.Background(), env.pm.ID, false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "GA Drawing")
	assert.NotContains(t, notifications[0].Message, "Datasheet")
}

func TestReviewRemindersDisabled(t *testing.T) {
	env := setupCronTest(t)
	env.scheduler.reminderDays = 0
	env.addDocument(t, "GA Drawing", types.VDCRSentForApproval, 10*24*time.Hour)

	sent, err := env.scheduler.ManualTrigger("vdcr_reminders")
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestNotificationCleanupKeepsUnreadAndRecent(t *testing.T) {
	env := setupCronTest(t)
	ctx := context.Background()
	start := env.now

	env.now = start.Add(-40 * 24 * time.Hour)
	require.NoError(t, env.repos.NotificationRepo.Create(ctx, &repository.Notification{UserID: env.pm.ID, Title: "old read", Read: true}))
	require.NoError(t, env.repos.NotificationRepo.Create(ctx, &repository.Notification{UserID: env.pm.ID, Title: "old unread"}))
	env.now = start.Add(-5 * 24 * time.Hour)
	require.NoError(t, env.repos.NotificationRepo.Create(ctx, &repository.Notification{UserID: env.pm.ID, Title: "recent read", Read: true}))
	env.now = start

	removed, err := env.scheduler.ManualTrigger("notifications")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	left, err := env.repos.NotificationRepo.FindByUserID(ctx, env.pm.ID, false)
	require.NoError(t, err)
	titles := []string{}
	for _, n := range left {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"old unread", "recent read"}, titles)
}

func TestUnknownJob(t *testing.T) {
	env := setupCronTest(t)

	_, err := env.scheduler.ManualTrigger("reindex")
	assert.Error(t, err)
}
