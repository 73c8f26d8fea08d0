// Package kernelerr defines the kernel's error taxonomy (spec §7).
//
// Operational errors (ProcessFault, TaskFault, BudgetExceeded, StateLost)
// are always caught at a kernel boundary and surfaced as warnings; they
// are never allowed to reach the host. Programmer-error variants
// (DuplicateName, DuplicateTaskId, UnknownProtocol, InvalidHostContext)
// are returned synchronously to the call site that triggered them, and
// the scheduler still catches them at the process boundary (spec §7,
// "Propagation policy").
package kernelerr

import "fmt"

// ErrInvalidHostContext is returned when a required host field is
// missing. Fatal for the tick: no processes run and no performance
// snapshot is written for that tick.
type ErrInvalidHostContext struct {
	Field string
}

func (e *ErrInvalidHostContext) Error() string {
	return fmt.Sprintf("kernel: invalid host context: missing required field %q", e.Field)
}

// ErrDuplicateName is returned by a registry when a descriptor name
// collides with an existing registration and the new descriptor is not
// marked singleton.
type ErrDuplicateName struct {
	Name string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("kernel: duplicate process name %q", e.Name)
}

// ErrDuplicateTaskID is returned by the task runner when creating a
// task whose id already exists in a non-terminal state.
type ErrDuplicateTaskID struct {
	ID string
}

func (e *ErrDuplicateTaskID) Error() string {
	return fmt.Sprintf("kernel: duplicate task id %q", e.ID)
}

// ErrUnknownProtocol is returned by the protocol registry when looking
// up a name that was never registered.
type ErrUnknownProtocol struct {
	Name string
}

func (e *ErrUnknownProtocol) Error() string {
	return fmt.Sprintf("kernel: unknown protocol %q", e.Name)
}

// ProcessFault describes a process that raised during its entry call.
// Logged by the scheduler; other processes still run (spec §4.1).
type ProcessFault struct {
	Name    string
	Kind    string
	Message string
}

func (e *ProcessFault) Error() string {
	return fmt.Sprintf("process fault in %q (%s): %s", e.Name, e.Kind, e.Message)
}

// TaskFault describes a task body that raised. The task becomes
// failed; the runner continues (spec §4.3).
type TaskFault struct {
	ID      string
	Message string
}

func (e *TaskFault) Error() string {
	return fmt.Sprintf("task fault in %q: %s", e.ID, e.Message)
}

// StateLost is recorded as a task's error after a global reset for
// tasks that were running when the in-memory generator was lost
// (spec §4.3, §8 invariant 8).
const StateLost = "state lost due to global reset"

// BudgetExceeded is advisory: recorded in snapshot.warnings, never
// raised to the host (spec §7).
type BudgetExceeded struct {
	Scope   string // "emergency", "process", "task-step"
	Detail  string
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("budget exceeded (%s): %s", e.Scope, e.Detail)
}
