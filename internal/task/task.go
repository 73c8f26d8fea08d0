// Package task implements the kernel's Task Runner (spec §4.3):
// cooperative generators advanced one step per tick under a CPU budget,
// with durable state sufficient for resumption across ticks but not
// across global resets (spec §8 invariant 8).
package task

import "github.com/screepskernel/kernel/internal/kernelerr"

// Status is one of the five task lifecycle states (spec §3). Terminal
// states are sticky: Completed, Failed, and Cancelled never transition
// further (spec §8 invariant 3).
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether s cannot transition further.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Options configures one task's scheduling and lifecycle.
type Options struct {
	// MaxTicks bounds ticks_executed; crossing it cancels the task with
	// reason "max ticks exceeded" (spec §4.3). Zero means unbounded.
	MaxTicks uint64

	// CPUBudget is the per-step CPU ceiling (spec §4.3, Runner.step).
	// Zero means unbounded.
	CPUBudget float64

	// Priority orders tasks within one Runner.Run call: higher values
	// run first (spec §5: "priority desc, insertion_order asc").
	Priority int

	// CleanupAfterTicks is how many ticks after reaching a terminal
	// state the task is removed from the runner and from
	// DurableRoot.tasks (spec §3, §8 invariant 4). Zero means "this
	// tick".
	CleanupAfterTicks uint64
}

// Task is one long-lived cooperative computation (spec §3).
type Task struct {
	ID            string
	Status        Status
	TickCreated   uint64
	TicksExecuted uint64
	TickCompleted *uint64
	Result        any
	Error         string
	Options       Options

	body string // factory key used to recreate the generator on Restore
	gen  *generator
	seq  int64 // insertion order, secondary sort key
}

// newTask constructs a freshly-created, not-yet-stepped task in
// StatusPending — the runner transitions it to Running on its first
// step, matching the "pending -> running" edge in spec §8 invariant 3.
func newTask(id string, bodyKey string, gen *generator, tickCreated uint64, opts Options, seq int64) *Task {
	return &Task{
		ID:          id,
		Status:      StatusPending,
		TickCreated: tickCreated,
		Options:     opts,
		body:        bodyKey,
		gen:         gen,
		seq:         seq,
	}
}

// Cancel transitions the task to Cancelled immediately and discards its
// generator (spec §5: "Tasks expose cancel(reason) which transitions
// to cancelled immediately"). A no-op on an already-terminal task.
func (t *Task) Cancel(reason string) {
	if t.Status.IsTerminal() {
		return
	}
	t.Status = StatusCancelled
	t.Error = reason
	if t.gen != nil {
		t.gen.discard()
	}
}

// asFault builds a TaskFault for logging when a task body raises.
func (t *Task) asFault() *kernelerr.TaskFault {
	return &kernelerr.TaskFault{ID: t.ID, Message: t.Error}
}
