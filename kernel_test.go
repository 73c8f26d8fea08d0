package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screepskernel/kernel/internal/bootstrap"
	"github.com/screepskernel/kernel/internal/config"
	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/hostctx"
	"github.com/screepskernel/kernel/internal/hostsim"
	"github.com/screepskernel/kernel/internal/sched"
	"github.com/screepskernel/kernel/internal/task"
)

func newHost(tick uint64, used, limit float64, objects []hostctx.GameObject) *hostsim.FakeHost {
	return &hostsim.FakeHost{
		TickValue:    tick,
		CPUValue:     &hostsim.FakeCPU{UsedValue: used, LimitValue: limit, BucketValue: 1000},
		ObjectsValue: objects,
	}
}

func TestLoopProducesSnapshotOnNormalTick(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	root := durable.New()
	objects := []hostctx.GameObject{{ID: "c1", Role: "harvester"}}

	result := k.Loop(newHost(1, 5, 100, objects), root)

	assert.Equal(t, uint64(1), result.Snapshot.Time)
	require.NotNil(t, result.Snapshot.Health)
	assert.Equal(t, "healthy", string(result.Snapshot.Health.State))
}

func TestLoopInvalidHostReturnsWarningOnly(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	result := k.Loop(nil, durable.New())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, uint64(0), result.Snapshot.Time)
}

func TestLoopNeverPanicsOnMalformedRoot(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	badRoot := durable.Root{durable.FieldStats: "not a map"}

	assert.NotPanics(t, func() {
		k.Loop(newHost(1, 1, 100, nil), badRoot)
	})
}

func TestLoopSkipsProcessesAtEmergencyThreshold(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	ran := false
	require.NoError(t, k.Scheduler.Registry.Register(sched.ProcessDescriptor{
		Name:  "watcher",
		Entry: func(ctx sched.Context) (*sched.Summary, error) { ran = true; return nil, nil },
	}))

	root := durable.New()
	objects := []hostctx.GameObject{{ID: "c1", Role: "harvester"}}
	result := k.Loop(newHost(1, 95, 100, objects), root)

	assert.False(t, ran)
	assert.Contains(t, joinWarnings(result.Warnings), "Emergency")
}

func TestLoopDetectsFreshWorldAndShortCircuits(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	root := durable.New()

	result := k.Loop(newHost(1, 1, 100, nil), root)

	assert.Contains(t, joinWarnings(result.Warnings), "fresh world detected")
	assert.Empty(t, result.Snapshot.Creeps["byRole"])
}

func TestLoopRunsBootstrapPhasesBeforeRegularProcessing(t *testing.T) {
	var ran []string
	phases := []bootstrap.Phase{
		{Name: "init-a", Priority: 1, Execute: func(ctx hostctx.Context, root durable.Root) error {
			ran = append(ran, "init-a")
			return nil
		}},
	}
	k := New(config.Defaults(), nil, phases)
	root := durable.New()
	objects := []hostctx.GameObject{{ID: "c1", Role: "harvester"}}

	result := k.Loop(newHost(1, 1, 100, objects), root)

	assert.Equal(t, []string{"init-a"}, ran)
	assert.True(t, k.bootstrap.Complete())
	require.NotNil(t, result.Snapshot.Health)
}

func TestLoopPersistsTasksAcrossTicks(t *testing.T) {
	k := New(config.Defaults(), nil, nil)
	_, err := k.Tasks.Create("job1", "k", func(yield func()) (any, error) {
		yield()
		return "done", nil
	}, 0, task.Options{})
	require.NoError(t, err)
	root := durable.New()
	objects := []hostctx.GameObject{{ID: "c1", Role: "harvester"}}
	k.Loop(newHost(1, 1, 100, objects), root)

	tasks := root.Tasks()
	assert.Contains(t, tasks, "job1")
}

func joinWarnings(ws []string) string {
	out := ""
	for _, w := range ws {
		out += w + "\n"
	}
	return out
}
