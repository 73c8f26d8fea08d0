// Package bootstrap implements the phased initialization manager (spec
// §4.5): on a fresh global it spreads expensive one-off setup across
// multiple ticks so the CPU bucket is not drained in a single tick.
package bootstrap

import (
	"sort"

	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/hostctx"
)

// Phase is one unit of one-off initialization work.
type Phase struct {
	Name        string
	Priority    int
	CPUEstimate float64
	Execute     func(ctx hostctx.Context, root durable.Root) error
}

// Options bounds how aggressively the Manager spends budget on phases.
type Options struct {
	// SafetyMargin is the fraction of cpu.limit phases may push used() up
	// to (spec: "cpu.used() + phase.cpu_estimate <= cpu.limit *
	// safety_margin").
	SafetyMargin float64

	// MinBucketLevel is the minimum cpu.bucket required to start another
	// phase this tick.
	MinBucketLevel int64

	// MaxInitTicks caps how many ticks initialization may span; once
	// reached, remaining phases are force-run regardless of budget.
	MaxInitTicks int
}

// DefaultOptions mirrors the spec's described defaults: conservative
// budget spending, uncapped bucket floor disabled, generous tick cap.
func DefaultOptions() Options {
	return Options{SafetyMargin: 0.5, MinBucketLevel: 0, MaxInitTicks: 20}
}

// Result is returned by Tick.
type Result struct {
	Complete bool
	Ran      []string
	Skipped  []string
	Errors   []error
}

// Manager drives one run of phased initialization across ticks.
type Manager struct {
	Options Options

	phases      []Phase
	cursor      int
	ticksUsed   int
	forcedFrom  int // ticksUsed value at which remaining phases force-run
}

// NewManager sorts phases by ascending priority (spec: "sorted by
// priority ascending") and returns a fresh Manager.
func NewManager(phases []Phase, opts Options) *Manager {
	sorted := append([]Phase(nil), phases...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Manager{Options: opts, phases: sorted}
}

// Complete reports whether every phase has already run.
func (m *Manager) Complete() bool {
	return m.cursor >= len(m.phases)
}

// Tick runs as many remaining phases as the budget allows this tick (spec
// §4.5 contract): "run phases in order while cpu.used()+phase.cpu_estimate
// <= cpu.limit*safety_margin and cpu.bucket >= min_bucket_level"; once
// max_init_ticks is reached, remaining phases force-run regardless of
// budget.
func (m *Manager) Tick(ctx hostctx.Context, root durable.Root) Result {
	res := Result{}
	m.ticksUsed++
	forced := m.Options.MaxInitTicks > 0 && m.ticksUsed > m.Options.MaxInitTicks

	for m.cursor < len(m.phases) {
		phase := m.phases[m.cursor]

		if !forced {
			budgetOK := ctx.CPU.Used()+phase.CPUEstimate <= ctx.CPU.Limit()*m.Options.SafetyMargin
			bucketOK := ctx.CPU.Bucket() >= m.Options.MinBucketLevel
			if !budgetOK || !bucketOK {
				res.Skipped = append(res.Skipped, phase.Name)
				break
			}
		}

		if err := phase.Execute(ctx, root); err != nil {
			res.Errors = append(res.Errors, err)
		}
		res.Ran = append(res.Ran, phase.Name)
		m.cursor++
	}

	res.Complete = m.Complete()
	return res
}

// Status mirrors the bootstrap-coordination protocol object's shape (spec
// §4.2 table: "status: {active, phase?, progress?}").
type Status struct {
	Active   bool    `json:"active"`
	Phase    string  `json:"phase,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

// CurrentStatus reports the manager's progress for publication onto the
// bootstrap-coordination protocol object.
func (m *Manager) CurrentStatus() Status {
	if m.Complete() {
		return Status{Active: false, Progress: 1.0}
	}
	var phase string
	if m.cursor < len(m.phases) {
		phase = m.phases[m.cursor].Name
	}
	progress := 0.0
	if len(m.phases) > 0 {
		progress = float64(m.cursor) / float64(len(m.phases))
	}
	return Status{Active: true, Phase: phase, Progress: progress}
}
