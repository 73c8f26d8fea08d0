// Package config provides configuration loading and validation for the
// kernel (spec §9 guidance: "hard-coded constants -> a loaded Config
// struct with documented defaults"). Unlike the teacher's agent, the
// kernel itself never reads a file off disk — Load is supplied bytes by
// the embedding host, since the kernel runs inside a sandboxed per-tick
// VM with no filesystem of its own.
//
// Schema version: 1.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the kernel. All fields
// have defaults; see Defaults() for values.
type Config struct {
	// SchemaVersion must be "1". Any other value fails Validate; no
	// migration between versions is performed.
	SchemaVersion string `yaml:"schema_version"`

	// Scheduler configures the process scheduler's CPU protections.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Task configures the cooperative task runner.
	Task TaskConfig `yaml:"task"`

	// Bootstrap configures phased initialization.
	Bootstrap BootstrapConfig `yaml:"bootstrap"`

	// Health configures the health evaluator's smoothing, weights, and
	// thresholds.
	Health HealthConfig `yaml:"health"`

	// Metrics configures performance-trend detection sensitivity.
	Metrics MetricsConfig `yaml:"metrics"`

	// Observability configures logging.
	Observability ObservabilityConfig `yaml:"observability"`

	// ProfilerEnabled is decoded as a plain YAML boolean; no kernel
	// component reads it. A value that YAML cannot decode as a boolean
	// makes Load return an error: it is not replaced by a default and no
	// warning is emitted.
	ProfilerEnabled bool `yaml:"profiler_enabled"`
}

// SchedulerConfig holds the process scheduler's CPU protection
// parameters (spec §4.1).
type SchedulerConfig struct {
	// EmergencyThreshold is the fraction of cpu.limit above which all
	// processes are skipped this tick. Default: 0.90.
	EmergencyThreshold float64 `yaml:"emergency_threshold"`
}

// TaskConfig holds the cooperative task runner's defaults (spec §4.3).
type TaskConfig struct {
	// CPUBudget is the runner's per-tick secondary CPU budget.
	// Default: 10.
	CPUBudget float64 `yaml:"cpu_budget"`

	// MaxTasksPerTick bounds how many tasks may be stepped in one tick.
	// Default: 200.
	MaxTasksPerTick int `yaml:"max_tasks_per_tick"`
}

// BootstrapConfig holds phased-initialization parameters (spec §4.5).
type BootstrapConfig struct {
	// SafetyMargin bounds phase CPU spend to cpu.limit*SafetyMargin.
	// Default: 0.5.
	SafetyMargin float64 `yaml:"safety_margin"`

	// MinBucketLevel is the minimum cpu.bucket required to start another
	// phase this tick. Default: 0.
	MinBucketLevel int64 `yaml:"min_bucket_level"`

	// MaxInitTicks caps how many ticks initialization may span before
	// remaining phases force-run. Default: 20.
	MaxInitTicks int `yaml:"max_init_ticks"`
}

// HealthConfig holds the health evaluator's EWMA smoothing, composite
// weights, and state thresholds.
type HealthConfig struct {
	// Alpha is the EWMA smoothing factor applied to every dimension.
	// Range: [0.0, 1.0]. Default: 0.8.
	Alpha float64 `yaml:"alpha"`

	WeightCPUPressure   float64 `yaml:"weight_cpu_pressure"`
	WeightTaskFailure   float64 `yaml:"weight_task_failure"`
	WeightProcessFault  float64 `yaml:"weight_process_fault"`
	WeightRoleImbalance float64 `yaml:"weight_role_imbalance"`

	ThresholdStressed float64 `yaml:"threshold_stressed"`
	ThresholdDegraded float64 `yaml:"threshold_degraded"`
	ThresholdCritical float64 `yaml:"threshold_critical"`
}

// MetricsConfig holds the performance-trend detector's sensitivity.
type MetricsConfig struct {
	// TrendThreshold is the z-score magnitude beyond which a metric is
	// flagged. Default: 3.0.
	TrendThreshold float64 `yaml:"trend_threshold"`
}

// ObservabilityConfig holds logging parameters.
type ObservabilityConfig struct {
	// LogLevel controls the minimum log level (debug, info, warn, error).
	// Default: info.
	LogLevel string `yaml:"log_level"`

	// LogFormat controls the log output format (json, console).
	// Default: json.
	LogFormat string `yaml:"log_format"`
}

// Defaults returns a Config populated with all default values.
func Defaults() Config {
	return Config{
		SchemaVersion: "1",
		Scheduler: SchedulerConfig{
			EmergencyThreshold: 0.90,
		},
		Task: TaskConfig{
			CPUBudget:       10,
			MaxTasksPerTick: 200,
		},
		Bootstrap: BootstrapConfig{
			SafetyMargin:   0.5,
			MinBucketLevel: 0,
			MaxInitTicks:   20,
		},
		Health: HealthConfig{
			Alpha:               0.8,
			WeightCPUPressure:   0.4,
			WeightTaskFailure:   0.2,
			WeightProcessFault:  0.2,
			WeightRoleImbalance: 0.2,
			ThresholdStressed:   0.3,
			ThresholdDegraded:   0.6,
			ThresholdCritical:   0.85,
		},
		Metrics: MetricsConfig{
			TrendThreshold: 3.0,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		ProfilerEnabled: true,
	}
}

// Load parses and validates config bytes supplied by the embedding host,
// merged over Defaults(). The kernel never touches a filesystem itself;
// I/O is the host's responsibility.
func Load(data []byte) (*Config, error) {
	cfg := Defaults()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks all config fields for correctness, returning a
// descriptive error listing every violation found.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.SchemaVersion != "1" {
		errs = append(errs, fmt.Sprintf("schema_version must be \"1\", got %q", cfg.SchemaVersion))
	}
	if cfg.Scheduler.EmergencyThreshold <= 0 || cfg.Scheduler.EmergencyThreshold > 1 {
		errs = append(errs, fmt.Sprintf("scheduler.emergency_threshold must be in (0.0, 1.0], got %f", cfg.Scheduler.EmergencyThreshold))
	}
	if cfg.Task.CPUBudget < 0 {
		errs = append(errs, fmt.Sprintf("task.cpu_budget must be >= 0, got %f", cfg.Task.CPUBudget))
	}
	if cfg.Task.MaxTasksPerTick < 0 {
		errs = append(errs, fmt.Sprintf("task.max_tasks_per_tick must be >= 0, got %d", cfg.Task.MaxTasksPerTick))
	}
	if cfg.Bootstrap.SafetyMargin <= 0 || cfg.Bootstrap.SafetyMargin > 1 {
		errs = append(errs, fmt.Sprintf("bootstrap.safety_margin must be in (0.0, 1.0], got %f", cfg.Bootstrap.SafetyMargin))
	}
	if cfg.Bootstrap.MaxInitTicks < 1 {
		errs = append(errs, fmt.Sprintf("bootstrap.max_init_ticks must be >= 1, got %d", cfg.Bootstrap.MaxInitTicks))
	}
	if cfg.Health.Alpha < 0.0 || cfg.Health.Alpha > 1.0 {
		errs = append(errs, fmt.Sprintf("health.alpha must be in [0.0, 1.0], got %f", cfg.Health.Alpha))
	}
	if cfg.Health.WeightCPUPressure < 0 || cfg.Health.WeightTaskFailure < 0 ||
		cfg.Health.WeightProcessFault < 0 || cfg.Health.WeightRoleImbalance < 0 {
		errs = append(errs, "all health weights must be >= 0")
	}
	if !(cfg.Health.ThresholdStressed < cfg.Health.ThresholdDegraded && cfg.Health.ThresholdDegraded < cfg.Health.ThresholdCritical) {
		errs = append(errs, "health thresholds must be strictly increasing: stressed < degraded < critical")
	}
	if cfg.Metrics.TrendThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("metrics.trend_threshold must be > 0, got %f", cfg.Metrics.TrendThreshold))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s",
			joinStrings(errs, "\n  - "))
	}
	return nil
}

// joinStrings joins a slice of strings with a separator.
func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	result := ss[0]
	for _, s := range ss[1:] {
		result += sep + s
	}
	return result
}
