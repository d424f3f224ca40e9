package visibility

import (
	"testing"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEquipment() []*repository.Equipment {
	return []*repository.Equipment{
		{ID: "eq-1", Name: "Heat Exchanger", TagNumber: "HX-101"},
		{ID: "eq-2", Name: "Pressure Vessel", TagNumber: "PV-201"},
		{ID: "eq-3", Name: "Reactor", TagNumber: "R-301"},
	}
}

func roster(email string, assignments ...string) Roster {
	return Roster{
		Loaded: true,
		Members: []*repository.ProjectMember{
			{Email: "someone@else.com", EquipmentAssignments: []string{types.AllEquipment}},
			{Email: email, EquipmentAssignments: assignments},
		},
	}
}

func TestFilter_FullAccessRolesReturnInput(t *testing.T) {
	eq := sampleEquipment()
	for _, role := range []string{types.RoleAdmin, types.RoleProjectManager, types.RoleVDCRManager, "Project Manager"} {
		t.Run(role, func(t *testing.T) {
			got := Filter(Viewer{Role: role, Email: "nobody@x.com"}, Roster{}, eq, PolicyDeny)
			assert.Equal(t, eq, got)
		})
	}
}

func TestFilter_RestrictedWithoutMemberIsEmpty(t *testing.T) {
	for _, role := range []string{types.RoleEditor, types.RoleViewer} {
		got := Filter(Viewer{Role: role, Email: "ghost@x.com"}, roster("ann@x.com", types.AllEquipment), sampleEquipment(), PolicyAllow)
		assert.Empty(t, got, role)
	}
}

func TestFilter_ViewerWithAllEquipment(t *testing.T) {
	eq := sampleEquipment()
	got := Filter(Viewer{Role: types.RoleViewer, Email: "ann@x.com"}, roster("ann@x.com", types.AllEquipment), eq, PolicyDeny)
	assert.Equal(t, eq, got)
}

func TestFilter_EditorWithSingleAssignment(t *testing.T) {
	eq := []*repository.Equipment{{ID: "eq-1"}, {ID: "eq-2"}}
	got := Filter(Viewer{Role: types.RoleEditor, Email: "ann@x.com"}, roster("ann@x.com", "eq-1"), eq, PolicyDeny)
	require.Len(t, got, 1)
	assert.Equal(t, "eq-1", got[0].ID)
}

func TestFilter_MatchesNameOrTagOnce(t *testing.T) {
	eq := sampleEquipment()
	got := Filter(Viewer{Role: types.RoleEditor, Email: "  ANN@x.com "},
		roster("ann@x.com", "R-301", "Heat Exchanger", "eq-1"), eq, PolicyDeny)

	require.Len(t, got, 2)
	assert.Equal(t, "eq-1", got[0].ID)
	assert.Equal(t, "eq-3", got[1].ID)
}

func TestFilter_RosterNotLoadedFailsClosed(t *testing.T) {
	r := roster("ann@x.com", types.AllEquipment)
	r.Loaded = false
	got := Filter(Viewer{Role: types.RoleViewer, Email: "ann@x.com"}, r, sampleEquipment(), PolicyAllow)
	assert.Empty(t, got)
}

func TestFilter_UnknownRoleFollowsPolicy(t *testing.T) {
	eq := sampleEquipment()
	v := Viewer{Role: "contractor", Email: "ann@x.com"}

	assert.Empty(t, Filter(v, roster("ann@x.com"), eq, PolicyDeny))
	assert.Equal(t, eq, Filter(v, roster("ann@x.com"), eq, PolicyAllow))
}

func TestFilter_IsDeterministic(t *testing.T) {
	eq := sampleEquipment()
	v := Viewer{Role: types.RoleEditor, Email: "ann@x.com"}
	r := roster("ann@x.com", "PV-201")

	first := Filter(v, r, eq, PolicyDeny)
	second := Filter(v, r, eq, PolicyDeny)
	assert.Equal(t, first, second)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("ALLOW")
	require.NoError(t, err)
	assert.Equal(t, PolicyAllow, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDeny, p)

	_, err = ParsePolicy("maybe")
	assert.Error(t, err)
}

func TestCanSee(t *testing.T) {
	eq := sampleEquipment()
	v := Viewer{Role: types.RoleViewer, Email: "ann@x.com"}
	r := roster("ann@x.com", "HX-101")

	assert.True(t, CanSee(v, r, eq[0], PolicyDeny))
	assert.False(t, CanSee(v, r, eq[1], PolicyDeny))
}
