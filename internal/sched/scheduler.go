package sched

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/screepskernel/kernel/internal/budget"
	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/hostctx"
	"github.com/screepskernel/kernel/internal/kernelerr"
	"github.com/screepskernel/kernel/internal/protocol"
)

// Context is passed by reference to every process entry (spec §3,
// "TickContext ... passed by reference to every process").
type Context struct {
	hostctx.Context
	Protocols *protocol.Registry
}

// RunResult is what one call to Scheduler.Run produces: the summaries
// reported by processes that ran, and advisory warnings (including
// BudgetExceeded and ProcessFault records) destined for
// snapshot.warnings.
type RunResult struct {
	Summaries []*Summary
	Warnings  []string
	Faults    []*kernelerr.ProcessFault
	Skipped   bool // true if the emergency threshold aborted the whole tick
}

// Scheduler runs every registered process exactly once per tick, in
// ascending (priority, registration order), under the CPU protections
// described in spec §4.1.
type Scheduler struct {
	Registry *Registry
	Guard    *budget.Guard
	Log      *zap.Logger
}

// NewScheduler returns a Scheduler with a fresh registry and the
// default emergency threshold.
func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Registry: NewRegistry(),
		Guard:    budget.NewGuard(),
		Log:      log,
	}
}

// Run executes the scheduling algorithm of spec §4.1 steps 2 and 6:
// the emergency-threshold check, then each descriptor in priority
// order, skipping any process whose invocation would exceed budget and
// recovering from any process that panics or errors.
//
// Step 1 (ensure DurableRoot reserved fields), step 3 (respawn check),
// steps 4-5 (prune stale memory / build role counts), and step 7
// (snapshot + evaluator) are the responsibility of the caller
// (kernel.Loop) — they compose this method with durable, respawn, and
// metrics, matching the seven-stage pipeline in spec §2.
func (s *Scheduler) Run(ctx Context) RunResult {
	result := RunResult{}

	if s.Guard.IsEmergency(ctx.CPU) {
		result.Skipped = true
		result.Warnings = append(result.Warnings,
			"Emergency CPU threshold exceeded: skipping all processes this tick")
		return result
	}

	for _, d := range s.Registry.Ordered() {
		atLimit := ctx.CPU.Limit() > 0 && ctx.CPU.Used() >= ctx.CPU.Limit()
		if atLimit || s.Guard.WouldExceed(ctx.CPU, estimateCost(d)) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"BudgetExceeded: skipping process %q (would exceed cpu.limit)", d.Name))
			continue
		}

		summary, fault := s.invoke(d, ctx)
		if fault != nil {
			result.Faults = append(result.Faults, fault)
			result.Warnings = append(result.Warnings, fault.Error())
			continue
		}
		if summary != nil {
			result.Summaries = append(result.Summaries, summary)
		}
	}

	return result
}

// invoke calls d.Entry, converting a panic or a returned error into a
// ProcessFault instead of propagating it (spec §4.1 "Contract": "run
// never panics; uncaught process errors are caught and logged").
func (s *Scheduler) invoke(d *ProcessDescriptor, ctx Context) (summary *Summary, fault *kernelerr.ProcessFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &kernelerr.ProcessFault{Name: d.Name, Kind: "panic", Message: fmt.Sprint(r)}
			s.Log.Error("process panicked", zap.String("process", d.Name), zap.Any("recovered", r))
		}
	}()

	out, err := d.Entry(ctx)
	if err != nil {
		return nil, &kernelerr.ProcessFault{Name: d.Name, Kind: "error", Message: err.Error()}
	}
	return out, nil
}

// estimateCost is the per-process CPU estimate used for the
// per-process guard (spec §4.1: "if invoking the next process would
// exceed the budget, skip it"). This kernel has no historical
// per-process cost model (the teacher's token_bucket.go cost table was
// domain-specific to containment actions); estimate is conservatively
// zero, meaning the per-process guard only ever fires once cpu.used()
// has already reached cpu.limit. Components with real per-process cost
// data should wrap Scheduler and supply a non-zero estimate via a
// custom Entry.
func estimateCost(d *ProcessDescriptor) float64 {
	return 0
}

// EnsureReserved is a convenience re-export so callers composing the
// pipeline don't need a second import just for step 1.
func EnsureReserved(root durable.Root) {
	durable.EnsureReserved(root)
}
