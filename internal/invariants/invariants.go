// Package invariants runs non-fatal runtime checks over the kernel's
// ambient assumptions, generalizing the teacher's constitutional
// violation-detection pattern (bounded inputs, non-monotonic time,
// determinism) down to the specific host-contract assumptions this
// kernel depends on: CPU.used() must not decrease within a tick, and the
// tick counter must strictly increase between Loop invocations. Unlike
// the teacher's constitutional layer, a violation here never aborts or
// escalates — it is detected, recorded as a warning, and the tick
// proceeds (spec §7: "BudgetExceeded — advisory... never raised to the
// host" generalizes to every check in this package).
package invariants

import (
	"fmt"
	"math"
)

// Violation is one detected deviation from an assumed host contract.
type Violation struct {
	Kind    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Monitor tracks state across ticks needed to detect monotonicity
// violations. Zero value is ready to use.
type Monitor struct {
	haveLastTick bool
	lastTick     uint64

	haveLastCPU bool
	lastCPUUsed float64
}

// CheckTick validates that tick strictly increases from the previous
// call, returning a Violation if not (first call never violates).
func (m *Monitor) CheckTick(tick uint64) *Violation {
	defer func() {
		m.haveLastTick = true
		m.lastTick = tick
	}()
	if m.haveLastTick && tick <= m.lastTick {
		return &Violation{
			Kind:    "non_monotonic_tick",
			Message: fmt.Sprintf("tick %d did not strictly increase from previous tick %d", tick, m.lastTick),
		}
	}
	return nil
}

// CheckCPUWithinTick validates that cpuUsed has not decreased since the
// last call within the same tick (spec §9: "cpu.used() is assumed
// monotonically non-decreasing within a tick"). Call ResetTick at the
// start of each tick before using this.
func (m *Monitor) CheckCPUWithinTick(cpuUsed float64) *Violation {
	defer func() {
		m.haveLastCPU = true
		m.lastCPUUsed = cpuUsed
	}()
	if m.haveLastCPU && cpuUsed < m.lastCPUUsed {
		return &Violation{
			Kind:    "non_monotonic_cpu",
			Message: fmt.Sprintf("cpu.used() decreased from %.4f to %.4f within one tick", m.lastCPUUsed, cpuUsed),
		}
	}
	return nil
}

// ResetTick clears the within-tick CPU baseline; call once per tick
// before the first CheckCPUWithinTick call.
func (m *Monitor) ResetTick() {
	m.haveLastCPU = false
}

// CheckBounded validates that value lies within [min, max], returning a
// Violation naming field otherwise, for bounding values such as
// weights, thresholds and smoothing factors the way the teacher bounds
// escalation parameters. No kernel component calls it.
func CheckBounded(field string, value, min, max float64) *Violation {
	if value < min || value > max {
		return &Violation{
			Kind:    "unbounded_parameter",
			Message: fmt.Sprintf("%s = %.4f outside allowed range [%.4f, %.4f]", field, value, min, max),
		}
	}
	return nil
}

// CheckFinite validates that value is neither NaN nor +/-Inf.
func CheckFinite(field string, value float64) *Violation {
	if math.IsNaN(value) {
		return &Violation{Kind: "nan_detected", Message: field + " is NaN"}
	}
	if math.IsInf(value, 0) {
		return &Violation{Kind: "inf_detected", Message: field + " is infinite"}
	}
	return nil
}
