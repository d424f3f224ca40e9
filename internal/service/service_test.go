package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/db"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/stretchr/testify/require"
)

// memoryCache mimics db.RedisDB: JSON values, ErrCacheMiss on absent keys.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) GetCache(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return db.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) InvalidateCache(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if k == pattern || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(k, prefix)) {
			delete(c.data, k)
		}
	}
	return nil
}

type serviceTestEnv struct {
	ctx      context.Context
	now      time.Time
	repos    *repository.Repositories
	storage  *inmemory.Storage
	cache    *memoryCache
	services *Services

	project *repository.Project

	admin    *repository.User
	pm       *repository.User
	editor   *repository.User
	viewer   *repository.User
	outsider *repository.User

	pump   *repository.Equipment
	vessel *repository.Equipment
	heater *repository.Equipment
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()

	env := &serviceTestEnv{
		ctx:   context.Background(),
		now:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		cache: newMemoryCache(),
	}
	env.repos, env.storage = inmemory.NewRepositories()
	env.storage.SetClock(func() time.Time { return env.now })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiry:         1,
		RefreshExpiry:     1,
		UnknownRolePolicy: "deny",
		SummaryCacheTTL:   time.Minute,
	}
	notifSvc := notification.NewService(env.repos.NotificationRepo, env.repos.UserRepo, env.repos.ProjectRepo)

	env.services = NewServices(&ServiceDeps{
		Config:   cfg,
		Repos:    env.repos,
		NotifSvc: notifSvc,
		EmailSvc: email.NewService(&email.Config{}),
		Cache:    env.cache,
		Clock:    func() time.Time { return env.now },
	})

	env.admin = env.createUser(t, "admin@fab.com", "Admin", types.RoleAdmin)
	env.pm = env.createUser(t, "pm@fab.com", "Priya PM", types.RoleProjectManager)
	env.editor = env.createUser(t, "editor@fab.com", "Eddie Editor", types.RoleViewer)
	env.viewer = env.createUser(t, "viewer@fab.com", "Vera Viewer", types.RoleViewer)
	env.outsider = env.createUser(t, "outsider@fab.com", "Olly Outsider", types.RoleEditor)

	env.project = &repository.Project{
		Name:       "Refinery Expansion",
		ClientName: "Acme Petro",
		Status:     types.ProjectActive,
		ManagerID:  &env.pm.ID,
		CreatedBy:  env.pm.ID,
	}
	require.NoError(t, env.repos.ProjectRepo.Create(env.ctx, env.project))

	env.addMember(t, "Eddie Editor", "Editor@Fab.com", types.RoleEditor, []string{"TAG-101"})
	env.addMember(t, "Vera Viewer", "viewer@fab.com", "Viewer", []string{types.AllEquipment})

	env.pump = env.createEquipment(t, "Feed Pump", "TAG-101", 40)
	env.vessel = env.createEquipment(t, "Pressure Vessel", "TAG-102", 10)
	env.heater = env.createEquipment(t, "Heat Exchanger", "TAG-103", 75)
	return env
}

func (env *serviceTestEnv) createUser(t *testing.T, emailAddr, name, role string) *repository.User {
	t.Helper()
	u := &repository.User{Email: emailAddr, Name: name, Role: role, Password: "x"}
	require.NoError(t, env.repos.UserRepo.Create(env.ctx, u))
	return u
}

func (env *serviceTestEnv) addMember(t *testing.T, name, emailAddr, role string, assignments []string) *repository.ProjectMember {
	t.Helper()
	m := &repository.ProjectMember{
		ProjectID:            env.project.ID,
		Name:                 name,
		Email:                emailAddr,
		Role:                 role,
		Status:               types.MemberActive,
		EquipmentAssignments: assignments,
	}
	require.NoError(t, env.repos.ProjectRepo.AddMember(env.ctx, m))
	return m
}

func (env *serviceTestEnv) createEquipment(t *testing.T, name, tag string, progress int) *repository.Equipment {
	t.Helper()
	e := &repository.Equipment{
		ProjectID: env.project.ID,
		Name:      name,
		Type:      "Static",
		TagNumber: tag,
		Status:    types.EquipmentInProgress,
		Progress:  progress,
		CreatedBy: env.pm.ID,
	}
	require.NoError(t, env.repos.EquipmentRepo.Create(env.ctx, e))
	return e
}

func (env *serviceTestEnv) createVDCR(t *testing.T, srNo, name, status string, lastUpdate time.Time) *repository.VDCRRecord {
	t.Helper()
	r := &repository.VDCRRecord{
		ProjectID:           env.project.ID,
		SrNo:                srNo,
		DocumentName:        name,
		Status:              status,
		EquipmentTagNumbers: []string{"TAG-101"},
		LastUpdate:          &lastUpdate,
	}
	require.NoError(t, env.repos.VDCRRepo.Create(env.ctx, r))
	return r
}

func tags(list []*repository.Equipment) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.TagNumber)
	}
	return out
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
