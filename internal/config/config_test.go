package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, Validate(&cfg))
}

func TestLoadEmptyBytesYieldsDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	data := []byte(`
schema_version: "1"
scheduler:
  emergency_threshold: 0.75
task:
  cpu_budget: 5
  max_tasks_per_tick: 50
`)
	cfg, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.Scheduler.EmergencyThreshold)
	assert.Equal(t, 5.0, cfg.Task.CPUBudget)
	assert.Equal(t, 50, cfg.Task.MaxTasksPerTick)
	// untouched fields keep their defaults
	assert.Equal(t, 0.5, cfg.Bootstrap.SafetyMargin)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	data := []byte(`
schema_version: "2"
`)
	_, err := Load(data)
	assert.Error(t, err)
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.SchemaVersion = "bogus"
	cfg.Scheduler.EmergencyThreshold = 0
	cfg.Task.CPUBudget = -1
	cfg.Task.MaxTasksPerTick = -1
	cfg.Bootstrap.SafetyMargin = 2
	cfg.Bootstrap.MaxInitTicks = 0
	cfg.Health.Alpha = 2
	cfg.Health.WeightCPUPressure = -1
	cfg.Health.ThresholdStressed = 0.9
	cfg.Health.ThresholdDegraded = 0.5
	cfg.Metrics.TrendThreshold = 0

	err := Validate(&cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "schema_version")
	assert.Contains(t, msg, "emergency_threshold")
	assert.Contains(t, msg, "cpu_budget")
	assert.Contains(t, msg, "max_tasks_per_tick")
	assert.Contains(t, msg, "safety_margin")
	assert.Contains(t, msg, "max_init_ticks")
	assert.Contains(t, msg, "alpha")
	assert.Contains(t, msg, "health weights")
	assert.Contains(t, msg, "thresholds must be strictly increasing")
	assert.Contains(t, msg, "trend_threshold")
}

func TestValidateThresholdOrdering(t *testing.T) {
	cfg := Defaults()
	cfg.Health.ThresholdStressed = 0.6
	cfg.Health.ThresholdDegraded = 0.6
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}
