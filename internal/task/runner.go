package task

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/screepskernel/kernel/internal/budget"
	"github.com/screepskernel/kernel/internal/hostctx"
	"github.com/screepskernel/kernel/internal/kernelerr"
)

// RunnerOptions bounds one Runner's secondary CPU budget and per-tick
// task quota (spec §4.3: "run(): drive tasks ... stopping when either
// (a) the tick CPU budget is exhausted, (b) no runnable task remains,
// or (c) a per-tick task quota is hit").
type RunnerOptions struct {
	// CPUBudget is the absolute CPU units (same unit as hostctx.CPU)
	// this Runner may consume in one Run call, measured from cpu.Used()
	// at Run's entry.
	CPUBudget float64

	// MaxTasksPerTick bounds the number of step() calls in one Run
	// call. Zero means unbounded (condition (c) never fires).
	MaxTasksPerTick int
}

// DefaultRunnerOptions mirrors the spec's "secondary CPU budget"
// framing: a conservative slice of the overall per-tick budget.
func DefaultRunnerOptions() RunnerOptions {
	return RunnerOptions{CPUBudget: 10, MaxTasksPerTick: 200}
}

// RunSummary reports what happened during one Run call.
type RunSummary struct {
	Stepped   []string
	Completed []string
	Failed    []string
	Cancelled []string
	Warnings  []string
}

// Runner owns an unbounded set of Tasks and advances them one step per
// tick (spec §4.3).
type Runner struct {
	Options      RunnerOptions
	Log          *zap.Logger
	tasks        map[string]*Task
	nextSeq      int64
	bodyFactories map[string]func() Body
}

// NewRunner returns an empty Runner.
func NewRunner(log *zap.Logger, opts RunnerOptions) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Options:       opts,
		Log:           log,
		tasks:         make(map[string]*Task),
		bodyFactories: make(map[string]func() Body),
	}
}

// RegisterFactory associates a body key with a constructor on this
// runner. Create takes its body directly and does not consult these
// factories; Restore uses the factory map passed to it, not this one.
func (r *Runner) RegisterFactory(key string, factory func() Body) {
	r.bodyFactories[key] = factory
}

// Create starts a new task. Fails with kernelerr.ErrDuplicateTaskID if
// id already exists and is not terminal (spec §4.3 "Contract").
func (r *Runner) Create(id string, bodyKey string, body Body, tick uint64, opts Options) (*Task, error) {
	if existing, ok := r.tasks[id]; ok && !existing.Status.IsTerminal() {
		return nil, &kernelerr.ErrDuplicateTaskID{ID: id}
	}

	seq := r.nextSeq
	r.nextSeq++

	t := newTask(id, bodyKey, newGenerator(body), tick, opts, seq)
	r.tasks[id] = t
	return t, nil
}

// Get returns the task registered under id, or nil.
func (r *Runner) Get(id string) *Task {
	return r.tasks[id]
}

// Cancel cancels the task registered under id, if present and
// non-terminal.
func (r *Runner) Cancel(id string, reason string) {
	if t, ok := r.tasks[id]; ok {
		t.Cancel(reason)
	}
}

// Run drives tasks in descending (Priority, then ascending insertion
// order) per spec §5, advancing one step each, until a stop condition
// from spec §4.3 is reached.
func (r *Runner) Run(cpu hostctx.CPU) RunSummary {
	summary := RunSummary{}
	usedAtStart := cpu.Used()
	steps := 0

	for _, t := range r.runnableOrdered() {
		if r.Options.MaxTasksPerTick > 0 && steps >= r.Options.MaxTasksPerTick {
			break
		}
		if r.Options.CPUBudget > 0 && cpu.Used()-usedAtStart >= r.Options.CPUBudget {
			summary.Warnings = append(summary.Warnings, "task runner CPU budget exhausted for this tick")
			break
		}

		r.step(t, cpu, &summary)
		steps++
	}

	return summary
}

// runnableOrdered returns every non-terminal task sorted by
// (Priority desc, seq asc).
func (r *Runner) runnableOrdered() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.Status.IsTerminal() {
			out = append(out, t)
		}
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && taskLess(out[j], out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

func taskLess(a, b *Task) bool {
	if a.Options.Priority != b.Options.Priority {
		return a.Options.Priority > b.Options.Priority // descending
	}
	return a.seq < b.seq
}

// step invokes one task's body once (spec §4.3 Runner.step).
func (r *Runner) step(t *Task, cpu hostctx.CPU, summary *RunSummary) {
	t.Status = StatusRunning

	start := cpu.Used()
	wallStart := time.Now()
	out := t.gen.step()
	cost := cpu.Used() - start
	elapsed := time.Since(wallStart)

	t.TicksExecuted++
	summary.Stepped = append(summary.Stepped, t.ID)

	if !budget.WithinStepBudget(cost, t.Options.CPUBudget) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf(
			"task %q exceeded its per-step cpu_budget (%.3f > %.3f, wall %s)",
			t.ID, cost, t.Options.CPUBudget, elapsed))
	}

	if out.yielded {
		r.enforceMaxTicks(t, summary)
		return
	}

	if out.err != nil {
		t.Status = StatusFailed
		t.Error = out.err.Error()
		summary.Failed = append(summary.Failed, t.ID)
		r.Log.Warn("task failed", zap.String("task", t.ID), zap.Error(out.err))
		return
	}

	t.Status = StatusCompleted
	t.Result = out.result
	summary.Completed = append(summary.Completed, t.ID)
}

// enforceMaxTicks cancels a task whose ticks_executed has reached
// max_ticks (spec §4.3: "cancel with reason 'max ticks exceeded'").
func (r *Runner) enforceMaxTicks(t *Task, summary *RunSummary) {
	if t.Options.MaxTicks == 0 || t.TicksExecuted < t.Options.MaxTicks {
		return
	}
	t.Cancel("max ticks exceeded")
	summary.Cancelled = append(summary.Cancelled, t.ID)
}

// Cleanup removes every terminal task whose cleanup deadline (tick
// completed + cleanup_after_ticks) has passed, per spec §3 and §8
// invariant 4. Terminal tasks whose TickCompleted has not been stamped
// yet are kept (Runner itself does not know "now"; kernel.Loop stamps
// TickCompleted when a task first reaches a terminal state — see
// Runner.MarkCompletedTick).
func (r *Runner) Cleanup(now uint64) {
	for id, t := range r.tasks {
		if !t.Status.IsTerminal() || t.TickCompleted == nil {
			continue
		}
		deadline := *t.TickCompleted + t.Options.CleanupAfterTicks
		if now >= deadline {
			delete(r.tasks, id)
		}
	}
}

// MarkCompletedTick stamps TickCompleted on every terminal task that
// doesn't have one yet, using now as the completion tick. Call once per
// tick, after Run, before Cleanup.
func (r *Runner) MarkCompletedTick(now uint64) {
	for _, t := range r.tasks {
		if t.Status.IsTerminal() && t.TickCompleted == nil {
			tc := now
			t.TickCompleted = &tc
		}
	}
}

// All returns every task currently known to the runner (running and
// terminal, pre-cleanup).
func (r *Runner) All() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}
