// Package kernel is the host entry point (spec §6: "a single exported
// callable loop(); invoked per tick by the host. It must catch and log
// every error and never propagate; the host provides no retry").
//
// Loop composes every component package into the seven-stage pipeline
// described in spec §2 and §4.1's algorithm: tick context assembly,
// respawn detection, phased bootstrap, process scheduling, task
// execution, health evaluation, and the metrics snapshot that is always
// produced even when earlier stages abort.
package kernel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/screepskernel/kernel/internal/bootstrap"
	"github.com/screepskernel/kernel/internal/config"
	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/health"
	"github.com/screepskernel/kernel/internal/hostctx"
	"github.com/screepskernel/kernel/internal/invariants"
	"github.com/screepskernel/kernel/internal/kernelerr"
	"github.com/screepskernel/kernel/internal/klog"
	"github.com/screepskernel/kernel/internal/metrics"
	"github.com/screepskernel/kernel/internal/protocol"
	"github.com/screepskernel/kernel/internal/respawn"
	"github.com/screepskernel/kernel/internal/sched"
	"github.com/screepskernel/kernel/internal/task"
)

// Kernel owns every global-lifetime singleton: the process and protocol
// registries, the task runner, and the components that read Config.
// Exactly one Kernel exists per global (spec §3: "ProtocolObjects and
// ProcessDescriptors are owned by the kernel's global registry").
type Kernel struct {
	Config config.Config
	Log    *zap.Logger

	Scheduler *sched.Scheduler
	Protocols *protocol.Registry
	Tasks     *task.Runner

	respawn   *respawn.Detector
	bootstrap *bootstrap.Manager
	health    *health.Evaluator
	trend     *metrics.TrendDetector
	stats     *metrics.Collector
	monitor   invariants.Monitor

	bootstrapPhases []bootstrap.Phase
}

// New builds a Kernel from cfg. log may be nil (a no-op logger is used).
// bootstrapPhases may be nil/empty, in which case no bootstrap manager
// is built and Loop goes straight to normal scheduling from the first
// tick.
func New(cfg config.Config, log *zap.Logger, bootstrapPhases []bootstrap.Phase) *Kernel {
	if log == nil {
		log = klog.Noop()
	}

	protocols := protocol.NewRegistry()
	protocol.RegisterStandard(protocols)

	k := &Kernel{
		Config:    cfg,
		Log:       log,
		Scheduler: sched.NewScheduler(log),
		Protocols: protocols,
		Tasks: task.NewRunner(log, task.RunnerOptions{
			CPUBudget:       cfg.Task.CPUBudget,
			MaxTasksPerTick: cfg.Task.MaxTasksPerTick,
		}),
		respawn: respawn.NewDetector(),
		health: health.NewEvaluator(cfg.Health.Alpha, health.Weights{
			CPUPressure:   cfg.Health.WeightCPUPressure,
			TaskFailure:   cfg.Health.WeightTaskFailure,
			ProcessFault:  cfg.Health.WeightProcessFault,
			RoleImbalance: cfg.Health.WeightRoleImbalance,
		}, health.Thresholds{
			Stressed: cfg.Health.ThresholdStressed,
			Degraded: cfg.Health.ThresholdDegraded,
			Critical: cfg.Health.ThresholdCritical,
		}),
		trend:           metrics.NewTrendDetector(cfg.Metrics.TrendThreshold),
		stats:           metrics.NewCollector(),
		bootstrapPhases: bootstrapPhases,
	}
	k.Scheduler.Guard.EmergencyThreshold = cfg.Scheduler.EmergencyThreshold
	if len(bootstrapPhases) > 0 {
		k.bootstrap = bootstrap.NewManager(bootstrapPhases, bootstrap.Options{
			SafetyMargin:   cfg.Bootstrap.SafetyMargin,
			MinBucketLevel: cfg.Bootstrap.MinBucketLevel,
			MaxInitTicks:   cfg.Bootstrap.MaxInitTicks,
		})
	}
	return k
}

// Result is what one Loop call produces, useful for host-side logging
// and tests; the host itself need not inspect it (Loop never returns an
// error to propagate, per spec §6).
type Result struct {
	Snapshot metrics.PerformanceSnapshot
	Warnings []string
}

// Loop runs exactly one tick (spec §4.1 "Algorithm (one tick)"). root is
// the host's persisted Memory-equivalent, lent to the kernel for the
// duration of this call (spec §3: DurableRoot "survives a global reset;
// everything else does not"). Loop never panics and never returns an
// error — every internal failure is caught, logged, and folded into the
// snapshot's warnings, matching spec §7's "host-facing loop() never
// throws".
func (k *Kernel) Loop(host hostctx.HostContext, root durable.Root) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			k.Log.Error("kernel.Loop recovered a panic", zap.Any("recovered", r))
			result.Warnings = append(result.Warnings, fmt.Sprintf("kernel panic recovered: %v", r))
		}
	}()

	if err := k.validHost(host, root); err != nil {
		k.Log.Error("invalid host context", zap.Error(err))
		// Spec §7: InvalidHostContext is fatal for the tick (no
		// processes run, no snapshot — there is no safe CPU meter to
		// read). The host sees only the warning.
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}

	durable.EnsureReserved(root)
	k.monitor.ResetTick()

	ctx := hostctx.Build(host, root)
	if v := k.monitor.CheckTick(ctx.Tick); v != nil {
		result.Warnings = append(result.Warnings, v.String())
	}
	if v := k.monitor.CheckCPUWithinTick(ctx.CPU.Used()); v != nil {
		result.Warnings = append(result.Warnings, v.String())
	}

	stateCoord, _ := protocol.Lookup[*protocol.StateCoordination](k.Protocols, protocol.NameStateCoordination)

	respawnStatus := k.respawn.Detect(ctx)
	if stateCoord != nil {
		stateCoord.SetNeedsRespawn(respawnStatus.NeedsRespawn)
	}
	if respawnStatus.NeedsRespawn {
		result.Warnings = append(result.Warnings, "fresh world detected: needs_respawn=true, tick short-circuited")
		result.Snapshot = k.stats.Snapshot(ctx, map[string]uint32{}, nil, result.Warnings)
		return result
	}

	if k.bootstrap != nil && !k.bootstrap.Complete() {
		bres := k.bootstrap.Tick(ctx, root)
		result.Warnings = append(result.Warnings, bres.Skipped...)
		for _, e := range bres.Errors {
			result.Warnings = append(result.Warnings, e.Error())
		}
		if bc, _ := protocol.Lookup[*protocol.BootstrapCoordination](k.Protocols, protocol.NameBootstrapCoordination); bc != nil {
			s := k.bootstrap.CurrentStatus()
			bc.SetStatus(&protocol.BootstrapStatus{Active: s.Active, Phase: s.Phase, Progress: s.Progress})
		}
		if !bres.Complete {
			result.Snapshot = k.stats.Snapshot(ctx, ctx.RoleCounts(), nil, result.Warnings)
			return result
		}
	}

	k.pruneStaleMemory(ctx)

	roleCounts := ctx.RoleCounts()
	if roleMgmt, _ := protocol.Lookup[*protocol.RoleManagement](k.Protocols, protocol.NameRoleManagement); roleMgmt != nil {
		roleMgmt.SetCounts(roleCounts)
	}

	schedCtx := sched.Context{Context: ctx, Protocols: k.Protocols}
	runResult := k.Scheduler.Run(schedCtx)
	result.Warnings = append(result.Warnings, runResult.Warnings...)

	var taskSummary task.RunSummary
	if !runResult.Skipped {
		taskSummary = k.Tasks.Run(ctx.CPU)
		k.Tasks.MarkCompletedTick(ctx.Tick)
		k.Tasks.Cleanup(ctx.Tick)
		result.Warnings = append(result.Warnings, taskSummary.Warnings...)
		persistTasks(root, k.Tasks)
	}
	if v := k.monitor.CheckCPUWithinTick(ctx.CPU.Used()); v != nil {
		result.Warnings = append(result.Warnings, v.String())
	}

	healthSnap := k.health.Evaluate(health.Inputs{
		CPUPressure:   cpuPressure(ctx.CPU),
		TaskFailure:   taskFailureRate(taskSummary),
		ProcessFault:  processFaultRate(runResult),
		RoleImbalance: health.NormalizedRoleImbalance(toEventCounts(roleCounts)),
	})
	if hm, _ := protocol.Lookup[*protocol.HealthMonitoring](k.Protocols, protocol.NameHealthMonitoring); hm != nil {
		hm.SetMetrics(&protocol.HealthMetrics{
			Score: healthSnap.Score, State: string(healthSnap.State),
			PerDimension: healthSnap.PerDimension, Warnings: healthSnap.Warnings, Recovery: healthSnap.Recovery,
		})
	}
	result.Warnings = append(result.Warnings, healthSnap.Warnings...)

	if flag := k.trend.Observe("cpu_used", ctx.CPU.Used()); flag != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("performance trend: %s z=%.2f", flag.Metric, flag.ZScore))
	}

	if stateCoord != nil {
		stateCoord.ClearFlags()
	}

	result.Snapshot = k.stats.Snapshot(ctx, roleCounts, &healthSnap, result.Warnings)
	return result
}

// validHost checks required host fields are present (spec §6: "the
// kernel validates presence of required fields and fails fast with
// InvalidHostContext if any required field is missing").
func (k *Kernel) validHost(host hostctx.HostContext, root durable.Root) error {
	if host == nil {
		return &kernelerr.ErrInvalidHostContext{Field: "host"}
	}
	if root == nil {
		return &kernelerr.ErrInvalidHostContext{Field: "root"}
	}
	if cpu := host.CPU(); cpu == nil {
		return &kernelerr.ErrInvalidHostContext{Field: "cpu"}
	}
	return nil
}

// pruneStaleMemory removes per-worker durable scratch for ids no longer
// present in the live object table (spec §4.1 step 4).
func (k *Kernel) pruneStaleMemory(ctx hostctx.Context) {
	live := ctx.ObjectsByID()
	scratch := ctx.Root.ProcessState()
	for id := range scratch {
		if _, ok := live[id]; !ok {
			delete(scratch, id)
		}
	}
}

func persistTasks(root durable.Root, runner *task.Runner) {
	tasks := root.Tasks()
	for k := range tasks {
		delete(tasks, k)
	}
	for id, s := range runner.PersistAll() {
		tasks[id] = s
	}
}

func cpuPressure(cpu hostctx.CPU) float64 {
	if cpu.Limit() <= 0 {
		return 0
	}
	p := cpu.Used() / cpu.Limit()
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func taskFailureRate(s task.RunSummary) float64 {
	total := len(s.Completed) + len(s.Failed) + len(s.Cancelled)
	if total == 0 {
		return 0
	}
	return float64(len(s.Failed)+len(s.Cancelled)) / float64(total)
}

func processFaultRate(r sched.RunResult) float64 {
	total := len(r.Summaries) + len(r.Faults)
	if total == 0 {
		return 0
	}
	return float64(len(r.Faults)) / float64(total)
}

func toEventCounts(roleCounts map[string]uint32) health.EventCounts {
	out := make(health.EventCounts, 0, len(roleCounts))
	for _, c := range roleCounts {
		out = append(out, uint64(c))
	}
	return out
}
