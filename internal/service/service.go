package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/db"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/Marga-Ghale/ora-fabtrack/internal/visibility"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvitationClosed   = errors.New("invitation is no longer valid")
)

// Cache is the subset of db.RedisDB used by services.
type Cache interface {
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetCache(ctx context.Context, key string, dest interface{}) error
	InvalidateCache(ctx context.Context, pattern string) error
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Permission   PermissionService
	Project      ProjectService
	Member       MemberService
	Equipment    EquipmentService
	VDCR         VDCRService
	Activity     ActivityService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Cache       Cache
	Clock       func() time.Time
}

func NewServices(deps *ServiceDeps) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	policy, err := visibility.ParsePolicy(deps.Config.UnknownRolePolicy)
	if err != nil {
		log.Printf("[Services] ⚠️ %v, falling back to %s", err, policy)
	}

	permissionService := NewPermissionService(deps.Repos.ProjectRepo, deps.Repos.UserRepo, policy)
	activityService := NewActivityService(deps.Repos.ActivityLogRepo, deps.Clock)
	summaryCache := newSummaryCache(deps.Cache, deps.Config.SummaryCacheTTL)

	return &Services{
		Auth:       NewAuthService(deps.Config, deps.Repos.UserRepo),
		User:       NewUserService(deps.Repos.UserRepo, deps.Repos.ProjectRepo),
		Permission: permissionService,
		Project: NewProjectService(
			deps.Repos.ProjectRepo,
			deps.Repos.UserRepo,
			deps.Repos.EquipmentRepo,
			deps.Repos.VDCRRepo,
			deps.Repos.ActivityLogRepo,
			permissionService,
			activityService,
			summaryCache,
			deps.Broadcaster,
			deps.Clock,
		),
		Member: NewMemberService(
			deps.Repos.ProjectRepo,
			deps.Repos.UserRepo,
			deps.Repos.InvitationRepo,
			permissionService,
			activityService,
			deps.NotifSvc,
			deps.EmailSvc,
			summaryCache,
			deps.Broadcaster,
			deps.Clock,
		),
		Equipment: NewEquipmentService(
			deps.Repos.EquipmentRepo,
			deps.Repos.ActivityLogRepo,
			permissionService,
			activityService,
			summaryCache,
			deps.Broadcaster,
		),
		VDCR: NewVDCRService(
			deps.Repos.VDCRRepo,
			deps.Repos.ProjectRepo,
			deps.Repos.UserRepo,
			deps.Repos.ActivityLogRepo,
			permissionService,
			activityService,
			deps.NotifSvc,
			deps.EmailSvc,
			summaryCache,
			deps.Broadcaster,
			deps.Clock,
		),
		Activity:     activityService,
		Notification: NewNotificationService(deps.Repos.NotificationRepo, deps.Broadcaster),
		Broadcaster:  deps.Broadcaster,
	}
}

// ============================================
// Summary cache
// ============================================

// summaryCache wraps the optional Redis cache. A nil cache turns every call into a miss.
type summaryCache struct {
	cache Cache
	ttl   time.Duration
}

func newSummaryCache(cache Cache, ttl time.Duration) *summaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &summaryCache{cache: cache, ttl: ttl}
}

func (c *summaryCache) get(ctx context.Context, projectID string, dest *ProjectSummary) bool {
	if c == nil || c.cache == nil {
		return false
	}
	err := c.cache.GetCache(ctx, db.ProjectSummaryKey(projectID), dest)
	if err != nil && !errors.Is(err, db.ErrCacheMiss) {
		log.Printf("[Cache] ⚠️ summary read failed for %s: %v", projectID, err)
	}
	return err == nil
}

func (c *summaryCache) set(ctx context.Context, projectID string, summary *ProjectSummary) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.SetCache(ctx, db.ProjectSummaryKey(projectID), summary, c.ttl); err != nil {
		log.Printf("[Cache] ⚠️ summary write failed for %s: %v", projectID, err)
	}
}

func (c *summaryCache) invalidate(ctx context.Context, projectID string) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.InvalidateCache(ctx, db.ProjectSummaryKey(projectID)); err != nil {
		log.Printf("[Cache] ⚠️ summary invalidation failed for %s: %v", projectID, err)
	}
}
