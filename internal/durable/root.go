// Package durable defines the single serializable value graph that
// survives a global reset — the DurableRoot described in spec §3.
//
// The root is a plain map[string]any: no cycles, no host references,
// safe to round-trip through encoding/json. Six fields are reserved and
// have a single owning component by convention (spec §5, "Shared-resource
// policy"); nothing in this package enforces that convention at runtime,
// matching the teacher's documented-not-enforced ownership model in
// internal/storage/bolt.go's bucket layout.
package durable

// Reserved field names. Ownership (by convention, not enforced):
//
//	stats         -> metrics.Collector
//	profiler      -> profiler adapter (not implemented by this kernel)
//	tasks         -> task.Runner
//	roles         -> role-management protocol snapshot
//	health        -> health.Evaluator
//	process_state -> per-process durable scratch
const (
	FieldStats        = "stats"
	FieldProfiler     = "profiler"
	FieldTasks        = "tasks"
	FieldRoles        = "roles"
	FieldHealth       = "health"
	FieldProcessState = "process_state"
)

// Root is the DurableRoot: a host-owned value graph lent to the kernel
// for the duration of one tick.
type Root map[string]any

// New returns an empty Root with all reserved fields present.
func New() Root {
	r := Root{}
	EnsureReserved(r)
	return r
}

// EnsureReserved repairs any missing reserved field in place. It is
// idempotent: calling it twice in the same tick has identical effect to
// calling it once (spec §8, "Round-trip / idempotence").
func EnsureReserved(r Root) {
	if _, ok := r[FieldStats]; !ok {
		r[FieldStats] = map[string]any{}
	}
	if _, ok := r[FieldProfiler]; !ok {
		r[FieldProfiler] = map[string]any{}
	}
	if _, ok := r[FieldTasks]; !ok {
		r[FieldTasks] = map[string]any{}
	}
	if _, ok := r[FieldRoles]; !ok {
		r[FieldRoles] = map[string]any{}
	}
	if _, ok := r[FieldHealth]; !ok {
		r[FieldHealth] = map[string]any{}
	}
	if _, ok := r[FieldProcessState]; !ok {
		r[FieldProcessState] = map[string]any{}
	}
}

// Stats returns the reserved stats slot, creating it if absent.
// metrics.Collector (internal/metrics) is the sole writer of this field's
// contents; other callers (external probes) may still read or annotate
// it without causing a failure, per spec §7.
func (r Root) Stats() map[string]any {
	return r.mapField(FieldStats)
}

// Tasks returns the reserved tasks slot, creating it if absent.
func (r Root) Tasks() map[string]any {
	return r.mapField(FieldTasks)
}

// Roles returns the reserved roles slot, creating it if absent.
func (r Root) Roles() map[string]any {
	return r.mapField(FieldRoles)
}

// Health returns the reserved health slot, creating it if absent.
func (r Root) Health() map[string]any {
	return r.mapField(FieldHealth)
}

// Profiler returns the reserved profiler slot, creating it if absent.
func (r Root) Profiler() map[string]any {
	return r.mapField(FieldProfiler)
}

// ProcessState returns the reserved process_state slot, creating it if
// absent.
func (r Root) ProcessState() map[string]any {
	return r.mapField(FieldProcessState)
}

func (r Root) mapField(name string) map[string]any {
	v, ok := r[name]
	if !ok {
		m := map[string]any{}
		r[name] = m
		return m
	}
	m, ok := v.(map[string]any)
	if !ok {
		m = map[string]any{}
		r[name] = m
	}
	return m
}
