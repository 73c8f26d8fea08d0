package protocol

import "sync"

// Standard protocol names (spec §4.2).
const (
	NameStateCoordination    = "state-coordination"
	NameRoleManagement       = "role-management"
	NameBehaviorCoordination = "behavior-coordination"
	NameBootstrapCoordination = "bootstrap-coordination"
	NameMetricsCoordination  = "metrics-coordination"
	NameHealthMonitoring     = "health-monitoring"
)

// StateCoordination carries emergency/respawn flags written by the
// memory manager and respawn detector, read by all processes, and
// cleared at tick end (spec §4.2, §8 invariant 7).
type StateCoordination struct {
	mu             sync.Mutex
	EmergencyReset bool
	NeedsRespawn   bool
}

// ClearFlags resets both flags to false. Run once at tick end; after
// this call, EmergencyReset == false and NeedsRespawn == false
// (spec §8 invariant 7).
func (s *StateCoordination) ClearFlags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EmergencyReset = false
	s.NeedsRespawn = false
}

// Get returns a snapshot of both flags.
func (s *StateCoordination) Get() (emergencyReset, needsRespawn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.EmergencyReset, s.NeedsRespawn
}

// SetNeedsRespawn sets the needs_respawn flag, written by the respawn
// detector on fresh-world detection (spec §4.6).
func (s *StateCoordination) SetNeedsRespawn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NeedsRespawn = v
}

// SetEmergencyReset sets the emergency_reset flag.
func (s *StateCoordination) SetEmergencyReset(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EmergencyReset = v
}

// RoleManagement carries live worker counts per role, written by the
// memory manager and read by behavior processes.
type RoleManagement struct {
	mu     sync.Mutex
	Counts map[string]uint32
}

// SetCounts replaces the role count map.
func (r *RoleManagement) SetCounts(counts map[string]uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts = counts
}

// Count returns the live count for a single role.
func (r *RoleManagement) Count(role string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counts[role]
}

// BehaviorSummary is the per-tick summary a behavior process reports.
type BehaviorSummary struct {
	Processed      int
	Spawned        int
	TasksExecuted  int
}

// BehaviorCoordination carries the behavior process's per-tick summary,
// read by the metrics process.
type BehaviorCoordination struct {
	mu      sync.Mutex
	Summary *BehaviorSummary
}

// SetSummary installs the latest behavior summary.
func (b *BehaviorCoordination) SetSummary(s *BehaviorSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Summary = s
}

// GetSummary returns the latest behavior summary, or nil if none has
// been reported yet this tick.
func (b *BehaviorCoordination) GetSummary() *BehaviorSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Summary
}

// BootstrapStatus describes the initialization manager's progress.
type BootstrapStatus struct {
	Active   bool
	Phase    string
	Progress float64 // 0.0-1.0
}

// BootstrapCoordination carries the initialization manager's status,
// read by the behavior process (which may defer non-essential work
// while bootstrap is active).
type BootstrapCoordination struct {
	mu     sync.Mutex
	Status *BootstrapStatus
}

// SetStatus installs the latest bootstrap status.
func (b *BootstrapCoordination) SetStatus(s *BootstrapStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status = s
}

// GetStatus returns the latest bootstrap status, or nil before the
// first bootstrap tick.
func (b *BootstrapCoordination) GetStatus() *BootstrapStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Status
}

// MemoryUtilization describes durable-root memory pressure.
type MemoryUtilization struct {
	Used  int64
	Limit int64
	Pct   float64
}

// MetricsCoordination carries memory utilization, written by the
// memory process and read by the metrics process.
type MetricsCoordination struct {
	mu        sync.Mutex
	MemoryUtil *MemoryUtilization
}

// SetMemoryUtil installs the latest memory utilization reading.
func (m *MetricsCoordination) SetMemoryUtil(u *MemoryUtilization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MemoryUtil = u
}

// GetMemoryUtil returns the latest memory utilization reading, or nil.
func (m *MetricsCoordination) GetMemoryUtil() *MemoryUtilization {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MemoryUtil
}

// HealthMetrics is the shape written by the health process (see
// internal/health) and read by the evaluator and metrics process.
type HealthMetrics struct {
	Score         float64
	State         string
	PerDimension  map[string]float64
	Warnings      []string
	Recovery      bool
}

// HealthMonitoring carries the current health snapshot.
type HealthMonitoring struct {
	mu      sync.Mutex
	Metrics *HealthMetrics
}

// SetMetrics installs the latest health metrics.
func (h *HealthMonitoring) SetMetrics(m *HealthMetrics) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Metrics = m
}

// GetMetrics returns the latest health metrics, or nil.
func (h *HealthMonitoring) GetMetrics() *HealthMetrics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Metrics
}

// RegisterStandard installs fresh instances of all six standard
// protocols into r. kernel.New calls it once per Kernel, when the
// Kernel is constructed.
func RegisterStandard(r *Registry) {
	r.Register(NameStateCoordination, &StateCoordination{})
	r.Register(NameRoleManagement, &RoleManagement{Counts: map[string]uint32{}})
	r.Register(NameBehaviorCoordination, &BehaviorCoordination{})
	r.Register(NameBootstrapCoordination, &BootstrapCoordination{})
	r.Register(NameMetricsCoordination, &MetricsCoordination{})
	r.Register(NameHealthMonitoring, &HealthMonitoring{})
}
