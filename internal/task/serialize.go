package task

import (
	"go.uber.org/zap"

	"github.com/screepskernel/kernel/internal/kernelerr"
)

// Serialized is the wire shape written into DurableRoot.tasks and read
// back by Restore (spec §4.3 "Persistence" / "Restore").
type Serialized struct {
	ID            string `json:"id"`
	Status        Status `json:"status"`
	BodyKey       string `json:"body_key"`
	TickCreated   uint64 `json:"tick_created"`
	TickCompleted *uint64 `json:"tick_completed,omitempty"`
	TicksExecuted uint64 `json:"ticks_executed"`
	Result        any    `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`
	Priority      int    `json:"priority"`
	MaxTicks      uint64 `json:"max_ticks"`
	CPUBudget     float64 `json:"cpu_budget"`
	CleanupAfterTicks uint64 `json:"cleanup_after_ticks"`
}

// Serialize converts t into its wire shape. serialize(task) ->
// deserialize -> serialize is a fixed point: every field round-trips
// without churn (spec §8 "Round-trip / idempotence").
func (t *Task) Serialize() Serialized {
	return Serialized{
		ID:                t.ID,
		Status:            t.Status,
		BodyKey:           t.body,
		TickCreated:       t.TickCreated,
		TickCompleted:     t.TickCompleted,
		TicksExecuted:     t.TicksExecuted,
		Result:            t.Result,
		Error:             t.Error,
		Priority:          t.Options.Priority,
		MaxTicks:          t.Options.MaxTicks,
		CPUBudget:         t.Options.CPUBudget,
		CleanupAfterTicks: t.Options.CleanupAfterTicks,
	}
}

// PersistAll writes every non-cleaned task into a map keyed by id,
// suitable for assignment to durable.Root.Tasks() (spec §4.3
// "Persistence": "serialize every non-cleaned task's {...} into
// DurableRoot.tasks").
func (r *Runner) PersistAll() map[string]Serialized {
	out := make(map[string]Serialized, len(r.tasks))
	for id, t := range r.tasks {
		out[id] = t.Serialize()
	}
	return out
}

// Restore rebuilds the runner's task set from previously serialized
// state and a set of body factories keyed by BodyKey (spec §4.3
// "Restore"). Any task whose serialized status was Running is
// reclassified Failed with error kernelerr.StateLost — its generator
// instance is unrecoverable across a global reset and is never invoked
// (spec §8 invariant 8). Tasks with a persisted terminal status retain
// their status and result/error unchanged. A pending task gets a fresh
// generator from the factory registered under its BodyKey; a pending
// task with no such factory is also marked Failed with StateLost.
func Restore(serialized map[string]Serialized, bodyFactories map[string]func() Body) *Runner {
	r := &Runner{
		tasks:         make(map[string]*Task, len(serialized)),
		bodyFactories: bodyFactories,
		Options:       DefaultRunnerOptions(),
	}

	seq := int64(0)
	for id, s := range serialized {
		t := &Task{
			ID:            s.ID,
			Status:        s.Status,
			TickCreated:   s.TickCreated,
			TickCompleted: s.TickCompleted,
			TicksExecuted: s.TicksExecuted,
			Result:        s.Result,
			Error:         s.Error,
			Options: Options{
				Priority:          s.Priority,
				MaxTicks:          s.MaxTicks,
				CPUBudget:         s.CPUBudget,
				CleanupAfterTicks: s.CleanupAfterTicks,
			},
			body: s.BodyKey,
			seq:  seq,
		}
		seq++

		if t.Status == StatusRunning {
			t.Status = StatusFailed
			t.Error = kernelerr.StateLost
			// gen is intentionally left nil: the generator is gone, and
			// this task must never be stepped again (it is terminal).
		} else if !t.Status.IsTerminal() {
			if f, ok := bodyFactories[s.BodyKey]; ok {
				t.gen = newGenerator(f())
			} else {
				t.Status = StatusFailed
				t.Error = kernelerr.StateLost
			}
		}

		r.tasks[id] = t
	}

	r.Log = zap.NewNop()
	return r
}
