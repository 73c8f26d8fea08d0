package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupUnregisteredFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("nothing")
	require.Error(t, err)
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("thing", 42)
	obj, err := r.Lookup("thing")
	require.NoError(t, err)
	assert.Equal(t, 42, obj)
}

func TestRegisterReplacesPriorInstance(t *testing.T) {
	r := NewRegistry()
	r.Register("thing", 1)
	r.Register("thing", 2)
	obj, err := r.Lookup("thing")
	require.NoError(t, err)
	assert.Equal(t, 2, obj)
}

func TestNamesListsAllRegistered(t *testing.T) {
	r := NewRegistry()
	r.Register("a", 1)
	r.Register("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}

func TestGenericLookupTyped(t *testing.T) {
	r := NewRegistry()
	r.Register("state", &StateCoordination{})
	sc, err := Lookup[*StateCoordination](r, "state")
	require.NoError(t, err)
	assert.NotNil(t, sc)
}

func TestGenericLookupWrongTypeFails(t *testing.T) {
	r := NewRegistry()
	r.Register("state", "not a StateCoordination")
	_, err := Lookup[*StateCoordination](r, "state")
	assert.Error(t, err)
}

func TestRegisterStandardInstallsAllSix(t *testing.T) {
	r := NewRegistry()
	RegisterStandard(r)
	names := r.Names()
	assert.ElementsMatch(t, []string{
		NameStateCoordination, NameRoleManagement, NameBehaviorCoordination,
		NameBootstrapCoordination, NameMetricsCoordination, NameHealthMonitoring,
	}, names)
}

func TestStateCoordinationFlags(t *testing.T) {
	sc := &StateCoordination{}
	sc.SetNeedsRespawn(true)
	sc.SetEmergencyReset(true)
	er, nr := sc.Get()
	assert.True(t, er)
	assert.True(t, nr)

	sc.ClearFlags()
	er, nr = sc.Get()
	assert.False(t, er)
	assert.False(t, nr)
}

func TestRoleManagementCounts(t *testing.T) {
	rm := &RoleManagement{}
	rm.SetCounts(map[string]uint32{"harvester": 3})
	assert.Equal(t, uint32(3), rm.Count("harvester"))
	assert.Equal(t, uint32(0), rm.Count("builder"))
}
