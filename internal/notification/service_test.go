package notification

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationTestEnv struct {
	ctx     context.Context
	repos   *repository.Repositories
	svc     *Service
	project *repository.Project
	manager *repository.User
	pm      *repository.User
}

func setupNotificationTest(t *testing.T) *notificationTestEnv {
	t.Helper()
	ctx := context.Background()
	repos, _ := inmemory.NewRepositories()

	manager := &repository.User{Email: "manager@fab.com", Name: "Manager", Role: types.RoleProjectManager}
	pm := &repository.User{Email: "pm2@fab.com", Name: "Second PM", Role: types.RoleEditor}
	require.NoError(t, repos.UserRepo.Create(ctx, manager))
	require.NoError(t, repos.UserRepo.Create(ctx, pm))

	project := &repository.Project{Name: "Refinery", Status: types.ProjectActive, ManagerID: &manager.ID, CreatedBy: manager.ID}
	require.NoError(t, repos.ProjectRepo.Create(ctx, project))

	for _, m := range []*repository.ProjectMember{
		{ProjectID: project.ID, Email: "PM2@fab.com", Role: "Project Manager", Status: types.MemberActive},
		{ProjectID: project.ID, Email: "nouser@fab.com", Role: types.RoleProjectManager, Status: types.MemberInvited},
		{ProjectID: project.ID, Email: "manager@fab.com", Role: types.RoleProjectManager, Status: types.MemberActive},
	} {
		require.NoError(t, repos.ProjectRepo.AddMember(ctx, m))
	}

	return &notificationTestEnv{
		ctx:     ctx,
		repos:   repos,
		svc:     NewService(repos.NotificationRepo, repos.UserRepo, repos.ProjectRepo),
		project: project,
		manager: manager,
		pm:      pm,
	}
}

func TestGetProjectManagerIDs(t *testing.T) {
	env := setupNotificationTest(t)

	ids, err := env.svc.GetProjectManagerIDs(env.ctx, env.project.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{env.manager.ID, env.pm.ID}, ids)
}

func TestSendVDCRStatusChanged_SkipsActor(t *testing.T) {
	env := setupNotificationTest(t)

	err := env.svc.SendVDCRStatusChanged(env.ctx, []string{env.manager.ID, env.pm.ID}, env.manager.ID,
		env.project.ID, "rec-1", "GA Drawing", types.VDCRSentForApproval, types.VDCRApproved)
	require.NoError(t, err)

	mine, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.manager.ID, false)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.pm.ID, false)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, TypeVDCRStatusChanged, theirs[0].Type)
	assert.Equal(t, "'GA Drawing' moved from Sent For Approval to Approved", theirs[0].Message)
}

func TestSendVDCRReviewOverdue(t *testing.T) {
	env := setupNotificationTest(t)

	docs := []OverdueDocument{
		{RecordID: "1", DocumentName: "GA", Age: "9 days ago"},
		{RecordID: "2", DocumentName: "P&ID", Age: "8 days ago"},
		{RecordID: "3", DocumentName: "Datasheet", Age: "8 days ago"},
		{RecordID: "4", DocumentName: "WPS", Age: "7 days ago"},
	}
	require.NoError(t, env.svc.SendVDCRReviewOverdue(env.ctx, env.pm.ID, env.project.ID, "Refinery", docs))

	list, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.pm.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "4 document(s) in Refinery are waiting on review: GA (9 days ago), P&ID (8 days ago), Datasheet (8 days ago)...", list[0].Message)
	assert.Equal(t, []string{"1", "2", "3", "4"}, list[0].Data["recordIds"])
}

func TestSendEquipmentAssigned_Message(t *testing.T) {
	env := setupNotificationTest(t)

	require.NoError(t, env.svc.SendEquipmentAssigned(env.ctx, env.pm.ID, "Refinery", env.project.ID, []string{types.AllEquipment}))
	require.NoError(t, env.svc.SendEquipmentAssigned(env.ctx, "", "Refinery", env.project.ID, []string{"HX-1"}))

	total, _, err := env.repos.NotificationRepo.CountByUserID(env.ctx, env.pm.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
