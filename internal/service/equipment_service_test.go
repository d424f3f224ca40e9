package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentService_ListVisible(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Equipment

	tests := []struct {
		name string
		user *repository.User
		want []string
	}{
		{"firm admin sees everything", env.admin, []string{"TAG-101", "TAG-102", "TAG-103"}},
		{"project manager sees everything", env.pm, []string{"TAG-101", "TAG-102", "TAG-103"}},
		{"editor sees assigned tag only", env.editor, []string{"TAG-101"}},
		{"viewer with All Equipment sees everything", env.viewer, []string{"TAG-101", "TAG-102", "TAG-103"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.ListVisible(env.ctx, tt.user.ID, env.project.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tags(list))
		})
	}
}

func TestEquipmentService_ListVisible_NotOnProject(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.services.Equipment.ListVisible(env.ctx, env.outsider.ID, env.project.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.services.Equipment.ListVisible(env.ctx, env.admin.ID, "missing-project")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEquipmentService_ListVisible_UnknownRoleDenied(t *testing.T) {
	env := setupServiceTest(t)
	inspector := env.createUser(t, "inspector@fab.com", "Ivy Inspector", types.RoleViewer)
	env.addMember(t, "Ivy Inspector", "inspector@fab.com", "Third Party Inspector", []string{types.AllEquipment})

	list, err := env.services.Equipment.ListVisible(env.ctx, inspector.ID, env.project.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEquipmentService_ListVisible_InactiveMemberFallsBackToManagerRule(t *testing.T) {
	env := setupServiceTest(t)
	m, err := env.repos.ProjectRepo.FindMemberByEmail(env.ctx, env.project.ID, "viewer@fab.com")
	require.NoError(t, err)
	m.Status = types.MemberInactive
	require.NoError(t, env.repos.ProjectRepo.UpdateMember(env.ctx, m))

	_, err = env.services.Equipment.ListVisible(env.ctx, env.viewer.ID, env.project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEquipmentService_Get_HiddenFromEditor(t *testing.T) {
	env := setupServiceTest(t)

	got, err := env.services.Equipment.Get(env.ctx, env.editor.ID, env.pump.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feed Pump", got.Name)

	_, err = env.services.Equipment.Get(env.ctx, env.editor.ID, env.vessel.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.services.Equipment.Get(env.ctx, env.editor.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEquipmentService_Update_LogsEachChangedField(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Equipment

	updated, err := svc.Update(env.ctx, env.editor.ID, env.pump.ID, EquipmentUpdate{
		Progress: intPtr(60),
		Location: strPtr("Bay 3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Progress)

	entries, err := svc.ListActivity(env.ctx, env.editor.ID, env.pump.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byField := map[string][2]string{}
	for _, e := range entries {
		require.Len(t, e.Changes, 1)
		assert.Equal(t, "Eddie Editor", e.Actor)
		byField[e.Changes[0].Field] = [2]string{e.Changes[0].Old, e.Changes[0].New}
	}
	assert.Equal(t, [2]string{"40%", "60%"}, byField["Progress"])
	assert.Equal(t, [2]string{"Not set", "Bay 3"}, byField["Location"])
}

func TestEquipmentService_Update_NoChangeWritesNothing(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.services.Equipment.Update(env.ctx, env.pm.ID, env.pump.ID, EquipmentUpdate{Progress: intPtr(40)})
	require.NoError(t, err)

	logs, err := env.repos.ActivityLogRepo.FindByEntity(env.ctx, types.EntityEquipment, env.pump.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestEquipmentService_Update_Permissions(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Equipment

	_, err := svc.Update(env.ctx, env.viewer.ID, env.pump.ID, EquipmentUpdate{Progress: intPtr(50)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(env.ctx, env.editor.ID, env.vessel.ID, EquipmentUpdate{Progress: intPtr(50)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(env.ctx, env.pm.ID, env.vessel.ID, EquipmentUpdate{Progress: intPtr(150)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(env.ctx, env.pm.ID, env.vessel.ID, EquipmentUpdate{Status: strPtr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEquipmentService_CreateAndDelete(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Equipment

	_, err := svc.Create(env.ctx, env.editor.ID, env.project.ID, EquipmentInput{Name: "Column", TagNumber: "TAG-200"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(env.ctx, env.pm.ID, env.project.ID, EquipmentInput{Name: "Dup", TagNumber: "tag-101"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(env.ctx, env.pm.ID, env.project.ID, EquipmentInput{Name: " ", TagNumber: "TAG-300"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	created, err := svc.Create(env.ctx, env.pm.ID, env.project.ID, EquipmentInput{Name: "Column", TagNumber: "TAG-200"})
	require.NoError(t, err)
	assert.Equal(t, types.EquipmentPending, created.Status)
	assert.Equal(t, env.pm.ID, created.CreatedBy)

	require.NoError(t, svc.Delete(env.ctx, env.pm.ID, created.ID))
	_, err = svc.Get(env.ctx, env.pm.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	logs, err := env.repos.ActivityLogRepo.FindByEntity(env.ctx, types.EntityEquipment, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, types.ActivityDeleted, logs[0].ActivityType)
	assert.Equal(t, types.ActivityCreated, logs[1].ActivityType)
}
