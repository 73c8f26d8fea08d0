// Package main — cmd/octoreflex-sim/main.go
//
// Kernel fleet simulator.
//
// Purpose: drive the kernel's Loop across many simulated ticks against a
// synthetic, randomly jittered fleet (CPU usage and live worker count),
// without a real Screeps-style host, to sanity-check that health stays
// mostly Healthy/Stressed under normal load and that the emergency
// threshold actually engages once CPU pressure gets sustained.
//
// Output: per-tick CSV to stdout (tick, cpu_used, cpu_limit, creeps,
// health_score, health_state). Summary to stderr: fraction of ticks
// spent in each health state.
//
// Usage:
//
//	octoreflex-sim [flags]
//	octoreflex-sim -ticks 5000 -cpu-limit 100 -jitter 0.3 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/screepskernel/kernel"
	"github.com/screepskernel/kernel/internal/config"
	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/health"
	"github.com/screepskernel/kernel/internal/hostctx"
	"github.com/screepskernel/kernel/internal/hostsim"
	"github.com/screepskernel/kernel/internal/klog"
)

func main() {
	ticks := flag.Int("ticks", 5000, "Number of simulated ticks")
	cpuLimit := flag.Float64("cpu-limit", 100, "Simulated cpu.limit()")
	jitter := flag.Float64("jitter", 0.3, "CPU-usage jitter amplitude, fraction of cpu-limit")
	creepCount := flag.Int("creeps", 10, "Baseline live worker count")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	if *jitter < 0 {
		fmt.Fprintln(os.Stderr, "ERROR: jitter must be >= 0")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	cfg := config.Defaults()
	k := kernel.New(cfg, klog.Noop(), nil)
	durableRoot := durable.New()

	w := csv.NewWriter(os.Stdout)
	_ = w.Write([]string{"tick", "cpu_used", "cpu_limit", "creeps", "health_score", "health_state"})

	stateCounts := map[health.State]int{}

	for i := 1; i <= *ticks; i++ {
		used := math.Abs(rng.NormFloat64()) * (*jitter) * (*cpuLimit)
		objects := make([]hostctx.GameObject, *creepCount)
		for j := range objects {
			role := "harvester"
			if j%3 == 0 {
				role = "builder"
			}
			objects[j] = hostctx.GameObject{ID: fmt.Sprintf("creep-%d", j), Role: role}
		}

		host := &hostsim.FakeHost{
			TickValue:    uint64(i),
			CPUValue:     &hostsim.FakeCPU{UsedValue: used, LimitValue: *cpuLimit, BucketValue: 1000},
			ObjectsValue: objects,
		}

		result := k.Loop(host, durableRoot)
		var score float64
		var state health.State = health.StateHealthy
		if result.Snapshot.Health != nil {
			score = result.Snapshot.Health.Score
			state = result.Snapshot.Health.State
		}
		stateCounts[state]++

		_ = w.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(used, 'f', 4, 64),
			strconv.FormatFloat(*cpuLimit, 'f', 4, 64),
			strconv.Itoa(*creepCount),
			strconv.FormatFloat(score, 'f', 4, 64),
			string(state),
		})
	}
	w.Flush()

	fmt.Fprintf(os.Stderr, "\n=== HEALTH STATE DISTRIBUTION (%d ticks) ===\n", *ticks)
	for _, s := range []health.State{health.StateHealthy, health.StateStressed, health.StateDegraded, health.StateCritical} {
		pct := 100 * float64(stateCounts[s]) / float64(*ticks)
		fmt.Fprintf(os.Stderr, "%-10s %6d (%.1f%%)\n", s, stateCounts[s], pct)
	}
}
