// Package inmemory is a process-local implementation of the repository interfaces.
// It backs STORAGE_DRIVER=memory and the service tests.
package inmemory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/google/uuid"
)

// Storage holds every table. Repositories created from the same Storage share state.
type Storage struct {
	mu sync.RWMutex

	Users         map[string]*repository.User
	RefreshTokens map[string]*repository.RefreshToken
	Projects      map[string]*repository.Project
	Members       map[string]*repository.ProjectMember
	Equipment     map[string]*repository.Equipment
	VDCR          map[string]*repository.VDCRRecord
	Activity      []*repository.ActivityLog
	Notifications map[string]*repository.Notification
	Invitations   map[string]*repository.Invitation

	now func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		Users:         make(map[string]*repository.User),
		RefreshTokens: make(map[string]*repository.RefreshToken),
		Projects:      make(map[string]*repository.Project),
		Members:       make(map[string]*repository.ProjectMember),
		Equipment:     make(map[string]*repository.Equipment),
		VDCR:          make(map[string]*repository.VDCRRecord),
		Notifications: make(map[string]*repository.Notification),
		Invitations:   make(map[string]*repository.Invitation),
		now:           time.Now,
	}
}

// SetClock overrides the timestamp source, for tests that need deterministic times.
func (s *Storage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// NewRepositories returns a repository container backed by a fresh Storage.
func NewRepositories() (*repository.Repositories, *Storage) {
	s := NewStorage()
	return &repository.Repositories{
		UserRepo:         NewUserRepo(s),
		ProjectRepo:      NewProjectRepo(s),
		EquipmentRepo:    NewEquipmentRepo(s),
		InvitationRepo:   NewInvitationRepo(s),
		NotificationRepo: NewNotificationRepo(s),
		VDCRRepo:         NewVDCRRepo(s),
		ActivityLogRepo:  NewActivityLogRepo(s),
	}, s
}

func newID() string {
	return uuid.New().String()
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func sortByCreated[T any](items []T, created func(T) time.Time, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return created(items[i]).After(created(items[j]))
		}
		return created(items[i]).Before(created(items[j]))
	})
}
