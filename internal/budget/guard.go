// Package budget implements the CPU budget guard for OCTOREFLEX's
// successor kernel.
//
// Unlike the teacher's token_bucket.go — which refilled a fixed
// capacity on a wall-clock timer consumed by concurrent containment
// actions — this guard has no internal state to refill: the host
// resets cpu.used() to (approximately) zero at the start of every tick
// itself, so "capacity" is simply cpu.limit and "consumed so far" is
// always read directly off the host's CPU meter (spec §4.1). The guard
// is therefore a set of pure, synchronous checks rather than a
// concurrently-drained counter.
//
// Invariants (carried from the teacher's token_bucket.go docstring):
//   - All checks are pure functions of (used, limit, bucket) — no
//     shared mutable state, no goroutines.
//   - Nothing here blocks; a caller that is denied budget must itself
//     decide to skip, defer, or warn.
package budget

import "github.com/screepskernel/kernel/internal/hostctx"

// DefaultEmergencyThreshold is the fraction of cpu.limit above which
// the scheduler refuses to run any process this tick (spec §4.1).
const DefaultEmergencyThreshold = 0.90

// Guard evaluates CPU budget questions against a host-supplied CPU
// meter. All methods are safe to call from a single-threaded tick loop;
// no locking is performed (none is needed — spec §5).
type Guard struct {
	// EmergencyThreshold is the fraction of cpu.limit above which the
	// scheduler skips all processes for the tick. Default 0.90.
	EmergencyThreshold float64
}

// NewGuard returns a Guard with the default emergency threshold.
func NewGuard() *Guard {
	return &Guard{EmergencyThreshold: DefaultEmergencyThreshold}
}

// IsEmergency reports whether cpu.used() has already crossed the
// emergency threshold on entry to the tick (spec §4.1 step 2).
func (g *Guard) IsEmergency(cpu hostctx.CPU) bool {
	threshold := g.threshold()
	if cpu.Limit() <= 0 {
		return false
	}
	return cpu.Used() > threshold*cpu.Limit()
}

// WouldExceed reports whether running a unit of work estimated to cost
// estimate CPU would cross cpu.limit (spec §4.1 "per-process guard").
// A zero or negative estimate never exceeds.
func (g *Guard) WouldExceed(cpu hostctx.CPU, estimate float64) bool {
	if estimate <= 0 {
		return false
	}
	return cpu.Used()+estimate > cpu.Limit()
}

// WithinStepBudget reports whether a single task step's measured CPU
// cost stayed within its per-task cpuBudget (spec §4.3, Runner.step).
// A non-positive cpuBudget means "unbounded".
func WithinStepBudget(stepCost, cpuBudget float64) bool {
	if cpuBudget <= 0 {
		return true
	}
	return stepCost <= cpuBudget
}

// BucketSufficient reports whether the host's CPU bucket (accumulated
// unused credit) is at or above minBucketLevel (spec §4.5). The
// initialization manager performs its own equivalent bucket check and
// does not call this function.
func BucketSufficient(cpu hostctx.CPU, minBucketLevel int64) bool {
	return cpu.Bucket() >= minBucketLevel
}

func (g *Guard) threshold() float64 {
	if g.EmergencyThreshold <= 0 {
		return DefaultEmergencyThreshold
	}
	return g.EmergencyThreshold
}
