package seed

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedData_CreatesDemoProjectOnce(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmemory.NewRepositories()

	SeedData(repos)
	SeedData(repos)

	projects, err := repos.ProjectRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	projectID := projects[0].ID

	members, err := repos.ProjectRepo.FindMembers(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, members, 4)

	equipment, err := repos.EquipmentRepo.FindByProjectID(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, equipment, 3)

	records, err := repos.VDCRRepo.FindByProjectID(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}
