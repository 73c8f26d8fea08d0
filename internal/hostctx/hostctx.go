// Package hostctx models the host-provided globals as an injected
// interface, per spec §9: "`Game` globals and ambient host types → an
// injected HostContext trait/interface with the subset of operations the
// kernel needs". Production code receives a real Screeps-style adapter;
// tests supply an in-memory fake (see internal/hostsim).
package hostctx

import "github.com/screepskernel/kernel/internal/durable"

// CPU exposes the host's CPU meter for the current tick. Used returns
// the monotonically non-decreasing (within one tick, per spec §9)
// cumulative CPU used so far this tick.
type CPU interface {
	Used() float64
	Limit() float64
	Bucket() int64
}

// GameObject is the minimal shape of a live, id-keyed game object (a
// worker/creep) the kernel needs in order to prune stale per-worker
// memory (spec §4.1 step 4) and build role counts (step 5).
type GameObject struct {
	ID   string
	Role string
}

// HostContext is the subset of host operations the kernel depends on.
// Required fields absent from a real implementation should surface as
// kernelerr.ErrInvalidHostContext at the call site that discovers them.
type HostContext interface {
	Tick() uint64
	CPU() CPU
	Objects() []GameObject
}

// Context is the immutable per-tick view assembled at kernel entry
// (spec §3, "TickContext"). It is read-only with respect to tick number
// and CPU; DurableRoot access is mutable by design (processes write
// through it).
type Context struct {
	Tick    uint64
	CPU     CPU
	Objects []GameObject
	Root    durable.Root
}

// Build assembles a Context from a HostContext and a durable root.
func Build(host HostContext, root durable.Root) Context {
	return Context{
		Tick:    host.Tick(),
		CPU:     host.CPU(),
		Objects: host.Objects(),
		Root:    root,
	}
}

// ObjectsByID indexes the live object table by id, used by the
// scheduler to prune stale per-worker memory (spec §4.1 step 4).
func (c Context) ObjectsByID() map[string]GameObject {
	m := make(map[string]GameObject, len(c.Objects))
	for _, o := range c.Objects {
		m[o.ID] = o
	}
	return m
}

// RoleCounts builds role -> live-worker-count from the live object
// table (spec §4.1 step 5).
func (c Context) RoleCounts() map[string]uint32 {
	counts := make(map[string]uint32)
	for _, o := range c.Objects {
		counts[o.Role]++
	}
	return counts
}
