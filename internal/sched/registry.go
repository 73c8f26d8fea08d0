// Package sched implements the kernel's Process Scheduler (spec §4.1).
//
// Registration follows the teacher's plugin-registry pattern
// (contrib/scorer.go's RegisterScorer/init()): processes register
// themselves once, either from an init() function or from an explicit
// call during kernel bootstrap; the registry stores them in priority
// order with a stable tie-break on registration sequence.
package sched

import (
	"sync"

	"github.com/screepskernel/kernel/internal/kernelerr"
)

// Entry is a process function invoked once per tick.
type Entry func(ctx Context) (*Summary, error)

// Summary is an optional per-process report accumulated by the
// scheduler and made available to the caller of Run (spec §4.1 step 6,
// "accumulate any summary it reported").
type Summary struct {
	Name string
	Data any
}

// ProcessDescriptor describes one registered, priority-ordered process
// (spec §3). Lower Priority values run earlier; ties are broken by
// registration order (open question in spec §9, resolved in DESIGN.md).
type ProcessDescriptor struct {
	Name      string
	Priority  int32
	Singleton bool
	Entry     Entry

	seq int64 // assigned at Register time; secondary sort key
}

// Registry holds every registered ProcessDescriptor for one global
// lifetime. It is not safe to register concurrently with Run (the host
// guarantees single-threaded entry, per spec §5).
type Registry struct {
	mu      sync.Mutex
	byName  map[string]*ProcessDescriptor
	nextSeq int64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ProcessDescriptor)}
}

// Register installs d. If d.Name collides with an existing
// registration and d.Singleton is false, Register fails with
// kernelerr.ErrDuplicateName. If d.Singleton is true, the new
// descriptor silently replaces any prior registration under the same
// name — this supports code reload (spec §4.1 "Contract").
func (r *Registry) Register(d ProcessDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists && !d.Singleton {
		return &kernelerr.ErrDuplicateName{Name: d.Name}
	}

	d.seq = r.nextSeq
	r.nextSeq++
	r.byName[d.Name] = &d
	return nil
}

// Ordered returns every registered descriptor sorted by (priority asc,
// registration order asc) — the strict ordering guarantee of spec §4.1
// and §5.
func (r *Registry) Ordered() []*ProcessDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*ProcessDescriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	insertionSort(out)
	return out
}

// insertionSort sorts by (Priority asc, seq asc). Insertion sort keeps
// the comparator explicit and dependency-free; registry sizes are small
// (tens of processes), so O(n^2) is not a concern.
func insertionSort(items []*ProcessDescriptor) {
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && less(items[j], items[j-1]) {
			items[j], items[j-1] = items[j-1], items[j]
			j--
		}
	}
}

func less(a, b *ProcessDescriptor) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}
