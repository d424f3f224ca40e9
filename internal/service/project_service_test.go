package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/Marga-Ghale/ora-fabtrack/internal/vdcr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Project

	_, err := svc.Create(env.ctx, env.editor.ID, ProjectInput{Name: "X", ClientName: "Y"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(env.ctx, env.pm.ID, ProjectInput{Name: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := svc.Create(env.ctx, env.pm.ID, ProjectInput{Name: " Boiler Retrofit ", ClientName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Boiler Retrofit", p.Name)
	assert.Equal(t, types.ProjectActive, p.Status)
	require.NotNil(t, p.ManagerID)
	assert.Equal(t, env.pm.ID, *p.ManagerID)
}

func TestProjectService_List(t *testing.T) {
	env := setupServiceTest(t)
	other := &repository.Project{Name: "Other", ClientName: "Z", Status: types.ProjectActive, CreatedBy: env.admin.ID}
	require.NoError(t, env.repos.ProjectRepo.Create(env.ctx, other))

	all, err := env.services.Project.List(env.ctx, env.admin.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := env.services.Project.List(env.ctx, env.editor.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, env.project.ID, mine[0].ID)

	none, err := env.services.Project.List(env.ctx, env.outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Project

	_, err := svc.Update(env.ctx, env.editor.ID, env.project.ID, ProjectUpdate{Status: strPtr(types.ProjectOnHold)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(env.ctx, env.pm.ID, env.project.ID, ProjectUpdate{Status: strPtr("sleeping")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := svc.Update(env.ctx, env.pm.ID, env.project.ID, ProjectUpdate{Status: strPtr(types.ProjectOnHold)})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectOnHold, p.Status)

	assert.ErrorIs(t, svc.Delete(env.ctx, env.pm.ID, env.project.ID), ErrForbidden)
	require.NoError(t, svc.Delete(env.ctx, env.admin.ID, env.project.ID))

	_, err = svc.Get(env.ctx, env.admin.ID, env.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_SummaryIsCachedUntilInvalidated(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.Project
	env.createVDCR(t, "1", "GA", types.VDCRApproved, env.now)
	env.createVDCR(t, "2", "DS", types.VDCRPending, env.now)

	first, err := svc.Summary(env.ctx, env.viewer.ID, env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, first.EquipmentCount)
	assert.Equal(t, 2, first.VDCRTotal)
	assert.Equal(t, 1, first.VDCRCounts[vdcr.StatusApproved])
	assert.Equal(t, 2, first.MemberCount)
	assert.True(t, decimal.RequireFromString("41.7").Equal(first.AverageProgress), first.AverageProgress.String())

	// A write that bypasses the services leaves the cached copy in place.
	env.createEquipment(t, "Column", "TAG-104", 0)
	cached, err := svc.Summary(env.ctx, env.viewer.ID, env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.EquipmentCount)

	_, err = env.services.Equipment.Create(env.ctx, env.pm.ID, env.project.ID, EquipmentInput{Name: "Drum", TagNumber: "TAG-105"})
	require.NoError(t, err)
	fresh, err := svc.Summary(env.ctx, env.viewer.ID, env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.EquipmentCount)
}

func TestProjectService_ActivityHidesUnassignedEquipment(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.services.Equipment.Update(env.ctx, env.pm.ID, env.pump.ID, EquipmentUpdate{Progress: intPtr(50)})
	require.NoError(t, err)
	_, err = env.services.Equipment.Update(env.ctx, env.pm.ID, env.vessel.ID, EquipmentUpdate{Progress: intPtr(20)})
	require.NoError(t, err)
	_, err = env.services.VDCR.Create(env.ctx, env.pm.ID, env.project.ID, VDCRInput{DocumentName: "GA Drawing"})
	require.NoError(t, err)

	pmFeed, err := env.services.Project.Activity(env.ctx, env.pm.ID, env.project.ID, 0)
	require.NoError(t, err)
	assert.Len(t, pmFeed, 3)

	editorFeed, err := env.services.Project.Activity(env.ctx, env.editor.ID, env.project.ID, 0)
	require.NoError(t, err)
	require.Len(t, editorFeed, 2)
	assert.Equal(t, "Created VDCR GA Drawing", editorFeed[0].Summary)
	assert.Equal(t, env.pump.ID, editorFeed[1].EntityID)
}

func TestPermissionService_RosterRoleWins(t *testing.T) {
	env := setupServiceTest(t)

	access, err := env.services.Permission.Access(env.ctx, env.editor.ID, env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleEditor, access.Role)
	assert.True(t, access.CanEditVDCR())
	assert.False(t, access.CanManageMembers())

	access, err = env.services.Permission.Access(env.ctx, env.pm.ID, env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleProjectManager, access.Role)
	assert.True(t, access.CanManageMembers())
	assert.False(t, access.CanDeleteProject())

	assert.False(t, env.services.Permission.CanAccessProject(env.ctx, env.outsider.ID, env.project.ID))
	assert.True(t, env.services.Permission.CanAccessProject(env.ctx, env.admin.ID, env.project.ID))
}
