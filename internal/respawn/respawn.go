// Package respawn distinguishes a fresh world (no persisted state, no
// live worker spawns) from normal operation and recovery (spec §4.6),
// short-circuiting the tick and flagging state-coordination.needs_respawn
// when a fresh world is detected.
package respawn

import "github.com/screepskernel/kernel/internal/hostctx"

// Detector decides whether the current tick looks like a fresh global.
type Detector struct {
	// MinRoleCount is the number of live objects at or below which the
	// world is considered spawn-less. Zero means "no live objects at all".
	MinRoleCount int
}

// NewDetector returns a Detector with the default "zero live objects"
// threshold.
func NewDetector() *Detector {
	return &Detector{MinRoleCount: 0}
}

// Status is published onto the state-coordination protocol object.
type Status struct {
	NeedsRespawn bool `json:"needs_respawn"`
}

// Detect reports whether ctx looks like a fresh world: no live objects and
// an empty tasks slot (no resumable work persisted from a prior life).
func (d *Detector) Detect(ctx hostctx.Context) Status {
	hasObjects := len(ctx.Objects) > d.MinRoleCount
	hasTasks := len(ctx.Root.Tasks()) > 0
	fresh := !hasObjects && !hasTasks
	return Status{NeedsRespawn: fresh}
}
