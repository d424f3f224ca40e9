// Package visibility decides which equipment records a project member may see.
package visibility

import (
	"fmt"
	"strings"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

// Policy governs roles outside the known set.
type Policy string

const (
	PolicyDeny  Policy = "deny"
	PolicyAllow Policy = "allow"
)

// ParsePolicy accepts "deny" or "allow" in any case. An empty string yields PolicyDeny.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyDeny):
		return PolicyDeny, nil
	case string(PolicyAllow):
		return PolicyAllow, nil
	}
	return PolicyDeny, fmt.Errorf("unknown role policy %q", s)
}

// Viewer is the user asking to see the list.
type Viewer struct {
	Role  string
	Email string
}

// Roster is a project's member list. Loaded is false while the list is unavailable,
// in which case restricted viewers see nothing.
type Roster struct {
	Members []*repository.ProjectMember
	Loaded  bool
}

// HasFullAccess reports whether role sees every equipment record without assignment checks.
func HasFullAccess(role string) bool {
	switch types.NormalizeRole(role) {
	case types.RoleAdmin, types.RoleProjectManager, types.RoleVDCRManager:
		return true
	}
	return false
}

func isRestricted(role string) bool {
	switch types.NormalizeRole(role) {
	case types.RoleEditor, types.RoleViewer:
		return true
	}
	return false
}

// Filter returns the subset of equipment the viewer may see, in input order.
func Filter(viewer Viewer, roster Roster, equipment []*repository.Equipment, policy Policy) []*repository.Equipment {
	if HasFullAccess(viewer.Role) {
		return equipment
	}
	if !isRestricted(viewer.Role) {
		if policy == PolicyAllow {
			return equipment
		}
		return []*repository.Equipment{}
	}

	if !roster.Loaded {
		return []*repository.Equipment{}
	}
	member := FindMember(roster.Members, viewer.Email)
	if member == nil {
		return []*repository.Equipment{}
	}
	return Assigned(member.EquipmentAssignments, equipment)
}

// FindMember matches on email, ignoring case and surrounding whitespace.
func FindMember(members []*repository.ProjectMember, email string) *repository.ProjectMember {
	want := strings.ToLower(strings.TrimSpace(email))
	if want == "" {
		return nil
	}
	for _, m := range members {
		if m != nil && strings.ToLower(strings.TrimSpace(m.Email)) == want {
			return m
		}
	}
	return nil
}

// Assigned keeps equipment whose ID, name or tag number appears in assignments.
// The "All Equipment" sentinel keeps everything.
func Assigned(assignments []string, equipment []*repository.Equipment) []*repository.Equipment {
	keys := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if a == types.AllEquipment {
			out := make([]*repository.Equipment, len(equipment))
			copy(out, equipment)
			return out
		}
		keys[a] = struct{}{}
	}

	out := []*repository.Equipment{}
	for _, e := range equipment {
		if e == nil {
			continue
		}
		if matches(keys, e.ID) || matches(keys, e.Name) || matches(keys, e.TagNumber) {
			out = append(out, e)
		}
	}
	return out
}

func matches(keys map[string]struct{}, v string) bool {
	if v == "" {
		return false
	}
	_, ok := keys[v]
	return ok
}

// CanSee reports whether a single equipment record passes Filter for the viewer.
func CanSee(viewer Viewer, roster Roster, equipment *repository.Equipment, policy Policy) bool {
	return len(Filter(viewer, roster, []*repository.Equipment{equipment}, policy)) == 1
}
