package invariants

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTickFirstCallNeverViolates(t *testing.T) {
	var m Monitor
	assert.Nil(t, m.CheckTick(5))
}

func TestCheckTickStrictlyIncreasing(t *testing.T) {
	var m Monitor
	m.CheckTick(1)
	assert.Nil(t, m.CheckTick(2))
	v := m.CheckTick(2)
	require.NotNil(t, v)
	assert.Equal(t, "non_monotonic_tick", v.Kind)

	v = m.CheckTick(1)
	require.NotNil(t, v)
	assert.Equal(t, "non_monotonic_tick", v.Kind)
}

func TestCheckCPUWithinTickAndReset(t *testing.T) {
	var m Monitor
	m.ResetTick()
	assert.Nil(t, m.CheckCPUWithinTick(1.0))
	assert.Nil(t, m.CheckCPUWithinTick(2.0))

	v := m.CheckCPUWithinTick(1.5)
	require.NotNil(t, v)
	assert.Equal(t, "non_monotonic_cpu", v.Kind)

	m.ResetTick()
	assert.Nil(t, m.CheckCPUWithinTick(0.0))
}

func TestCheckBounded(t *testing.T) {
	assert.Nil(t, CheckBounded("alpha", 0.5, 0, 1))
	v := CheckBounded("alpha", 1.5, 0, 1)
	require.NotNil(t, v)
	assert.Equal(t, "unbounded_parameter", v.Kind)
}

func TestCheckFinite(t *testing.T) {
	assert.Nil(t, CheckFinite("score", 0.5))

	v := CheckFinite("score", math.NaN())
	require.NotNil(t, v)
	assert.Equal(t, "nan_detected", v.Kind)

	v = CheckFinite("score", math.Inf(1))
	require.NotNil(t, v)
	assert.Equal(t, "inf_detected", v.Kind)

	v = CheckFinite("score", math.Inf(-1))
	require.NotNil(t, v)
	assert.Equal(t, "inf_detected", v.Kind)
}

func TestViolationString(t *testing.T) {
	v := Violation{Kind: "k", Message: "m"}
	assert.Equal(t, "k: m", v.String())
}
