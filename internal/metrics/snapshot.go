// Package metrics implements the end-of-tick telemetry collector (spec
// §4.1 step 7, §6 "Snapshot shape", §7). Collector.Snapshot is the sole
// writer of DurableRoot.stats, runs on every tick including aborted ones,
// and privately instruments a dedicated prometheus.Registry the way the
// teacher's observability package does — never the global default
// registry, and never exposed over HTTP from inside the kernel (spec's
// external-interfaces section names only loop() as the host-facing
// surface).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/health"
	"github.com/screepskernel/kernel/internal/hostctx"
)

// CPUSnapshot mirrors the tick's CPU meter readings.
type CPUSnapshot struct {
	Used   float64 `json:"used"`
	Limit  float64 `json:"limit"`
	Bucket int64   `json:"bucket"`
}

// RoomSnapshot is the per-room telemetry slice (spec §6 snapshot shape).
type RoomSnapshot struct {
	EnergyAvailable         float64  `json:"energyAvailable"`
	EnergyCapacityAvailable float64  `json:"energyCapacityAvailable"`
	ControllerLevel         *int     `json:"controllerLevel,omitempty"`
}

// SpawnSnapshot carries queued spawn orders (spec §6: "spawn?: {orders}").
type SpawnSnapshot struct {
	Orders int `json:"orders"`
}

// PerformanceSnapshot is the value written into DurableRoot.stats every
// tick, always produced even on abort (spec §3 data model,
// §6 "Snapshot shape").
type PerformanceSnapshot struct {
	Time         uint64                   `json:"time"`
	CPU          CPUSnapshot              `json:"cpu"`
	Creeps       map[string]any           `json:"creeps"`
	Rooms        map[string]RoomSnapshot  `json:"rooms,omitempty"`
	RoomCount    int                      `json:"roomCount"`
	Structures   map[string]any           `json:"structures,omitempty"`
	ActiveSpawns int                      `json:"activeSpawns,omitempty"`
	Spawn        *SpawnSnapshot           `json:"spawn,omitempty"`
	Health       *health.Snapshot         `json:"health,omitempty"`
	Warnings     []string                 `json:"warnings"`
}

// Collector assembles and writes PerformanceSnapshot, and privately
// mirrors selected fields onto a dedicated Prometheus registry for a host
// process that wants to scrape in-process gauges without the kernel
// itself binding a port.
type Collector struct {
	registry *prometheus.Registry

	cpuUsed      prometheus.Gauge
	cpuBucket    prometheus.Gauge
	creepCount   prometheus.Gauge
	roomCount    prometheus.Gauge
	healthScore  prometheus.Gauge
	warningTotal prometheus.Counter
}

// NewCollector registers a fresh set of gauges/counters on a private
// registry (never prometheus.DefaultRegisterer, matching the teacher's
// "dedicated registry... to avoid collisions" convention).
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		cpuUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel", Subsystem: "cpu", Name: "used",
			Help: "CPU units used so far this tick.",
		}),
		cpuBucket: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel", Subsystem: "cpu", Name: "bucket",
			Help: "Current CPU bucket level.",
		}),
		creepCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel", Subsystem: "fleet", Name: "creep_count",
			Help: "Live worker count this tick.",
		}),
		roomCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel", Subsystem: "fleet", Name: "room_count",
			Help: "Distinct rooms observed this tick.",
		}),
		healthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel", Subsystem: "health", Name: "score",
			Help: "Composite health score for the most recent tick.",
		}),
		warningTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kernel", Subsystem: "tick", Name: "warnings_total",
			Help: "Cumulative count of warnings emitted across all ticks.",
		}),
	}
	reg.MustRegister(c.cpuUsed, c.cpuBucket, c.creepCount, c.roomCount, c.healthScore, c.warningTotal)
	return c
}

// Registry exposes the private Prometheus registry for an embedding host
// that wants to scrape it through its own HTTP surface.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Snapshot builds a PerformanceSnapshot from ctx and the accumulated
// warnings, writes it into root.Stats() (the sole writer of this field,
// spec §5 "Shared-resource policy"), mirrors selected fields onto the
// private registry, and returns the snapshot for the caller's own use
// (e.g. logging).
func (c *Collector) Snapshot(ctx hostctx.Context, roleCounts map[string]uint32, h *health.Snapshot, warnings []string) PerformanceSnapshot {
	snap := PerformanceSnapshot{
		Time: ctx.Tick,
		CPU: CPUSnapshot{
			Used:   ctx.CPU.Used(),
			Limit:  ctx.CPU.Limit(),
			Bucket: ctx.CPU.Bucket(),
		},
		Creeps:    map[string]any{"count": len(ctx.Objects), "byRole": roleCounts},
		RoomCount: countRooms(ctx),
		Health:    h,
		Warnings:  warnings,
	}

	c.cpuUsed.Set(snap.CPU.Used)
	c.cpuBucket.Set(float64(snap.CPU.Bucket))
	c.creepCount.Set(float64(len(ctx.Objects)))
	c.roomCount.Set(float64(snap.RoomCount))
	if h != nil {
		c.healthScore.Set(h.Score)
	}
	for range warnings {
		c.warningTotal.Inc()
	}

	writeStats(ctx.Root, snap)
	return snap
}

// countRooms is a placeholder derivation until room-level objects are
// modeled; GameObject currently carries no room field, so a tick with
// any live objects reports a single implicit room and a tick with none
// reports zero. Kept as its own function so a future
// room-aware GameObject only changes this one site.
func countRooms(ctx hostctx.Context) int {
	if len(ctx.Objects) == 0 {
		return 0
	}
	return 1
}

// writeStats marshals snap's essential fields into root.Stats() as a
// plain value graph (no struct pointers), matching DurableRoot's
// "opaque serializable map" constraint (spec §3).
func writeStats(root durable.Root, snap PerformanceSnapshot) {
	stats := root.Stats()
	stats["time"] = snap.Time
	stats["cpu"] = map[string]any{
		"used": snap.CPU.Used, "limit": snap.CPU.Limit, "bucket": snap.CPU.Bucket,
	}
	stats["creeps"] = snap.Creeps
	stats["roomCount"] = snap.RoomCount
	stats["warnings"] = snap.Warnings
	if snap.Health != nil {
		stats["health"] = map[string]any{
			"score":        snap.Health.Score,
			"state":        snap.Health.State,
			"perDimension": snap.Health.PerDimension,
			"warnings":     snap.Health.Warnings,
			"recovery":     snap.Health.Recovery,
		}
	}
}
