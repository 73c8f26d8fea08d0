// Package control exposes an in-process operator surface over the task
// runner: status, cancel, and priority pin/unpin. It generalizes the
// teacher's Unix-domain-socket operator protocol (reset/pin/unpin/status/
// list commands over PIDs) down to direct Go method calls over task ids —
// the kernel runs embedded in the host process, so there is no separate
// operator process to reach it from, and no transport is needed.
package control

import (
	"sort"
	"sync"

	"github.com/screepskernel/kernel/internal/kernelerr"
	"github.com/screepskernel/kernel/internal/task"
)

// TaskStatus is a snapshot of one task's observable state, the in-process
// analogue of the teacher's PIDStatus.
type TaskStatus struct {
	ID            string      `json:"id"`
	Status        task.Status `json:"status"`
	TicksExecuted uint64      `json:"ticks_executed"`
	Priority      int         `json:"priority"`
	Pinned        bool        `json:"pinned"`
	Result        any         `json:"result,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Surface wraps a *task.Runner with pin bookkeeping and read/control
// operations suitable for an embedding host's debug console or admin
// command, mirroring the teacher's reset/pin/unpin/status/list command
// set minus the socket transport and PID addressing.
type Surface struct {
	mu     sync.Mutex
	runner *task.Runner
	pins   map[string]int // task id -> pinned priority
}

// NewSurface wraps runner.
func NewSurface(runner *task.Runner) *Surface {
	return &Surface{runner: runner, pins: make(map[string]int)}
}

// Status returns the status of one task, or ok=false if unknown.
func (s *Surface) Status(id string) (TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.runner.Get(id)
	if t == nil {
		return TaskStatus{}, false
	}
	_, pinned := s.pins[id]
	return TaskStatus{
		ID:            t.ID,
		Status:        t.Status,
		TicksExecuted: t.TicksExecuted,
		Priority:      t.Options.Priority,
		Pinned:        pinned,
		Result:        t.Result,
		Error:         t.Error,
	}, true
}

// Cancel cancels the named task with reason, the equivalent of the
// teacher's "reset" command generalized to task cancellation (there is
// no "resume to NORMAL" analogue for a terminal-state task model).
func (s *Surface) Cancel(id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.runner.Get(id)
	if t == nil {
		return &kernelerr.TaskFault{ID: id, Message: "unknown task"}
	}
	t.Cancel(reason)
	delete(s.pins, id)
	return nil
}

// Pin fixes a task's effective scheduling priority until Unpin is
// called, the task-runner analogue of the teacher's state pin (prevents
// automatic adjustment until released).
func (s *Surface) Pin(id string, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.runner.Get(id)
	if t == nil {
		return &kernelerr.TaskFault{ID: id, Message: "unknown task"}
	}
	t.Options.Priority = priority
	s.pins[id] = priority
	return nil
}

// Unpin removes a pin on id, if any.
func (s *Surface) Unpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pins, id)
}

// IsPinned reports whether id currently carries a pin.
func (s *Surface) IsPinned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pins[id]
	return ok
}

// List returns every known task's status, sorted by id for stable
// output, the equivalent of the teacher's "list" command.
func (s *Surface) List() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.runner.All()
	out := make([]TaskStatus, 0, len(all))
	for _, t := range all {
		_, pinned := s.pins[t.ID]
		out = append(out, TaskStatus{
			ID:            t.ID,
			Status:        t.Status,
			TicksExecuted: t.TicksExecuted,
			Priority:      t.Options.Priority,
			Pinned:        pinned,
			Result:        t.Result,
			Error:         t.Error,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
