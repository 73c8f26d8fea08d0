package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screepskernel/kernel/internal/kernelerr"
)

func TestSerializeRoundTripsFields(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, err := r.Create("t1", "my-body", func(yield func()) (any, error) { yield(); return nil, nil }, 5, Options{
		Priority: 3, MaxTicks: 10, CPUBudget: 2.5, CleanupAfterTicks: 1,
	})
	require.NoError(t, err)
	r.Run(&fakeCPU{limit: 100})

	s := r.Get("t1").Serialize()
	assert.Equal(t, "t1", s.ID)
	assert.Equal(t, "my-body", s.BodyKey)
	assert.Equal(t, uint64(5), s.TickCreated)
	assert.Equal(t, 3, s.Priority)
	assert.Equal(t, uint64(10), s.MaxTicks)
	assert.Equal(t, 2.5, s.CPUBudget)
	assert.Equal(t, uint64(1), s.CleanupAfterTicks)
}

func TestPersistAllIncludesEveryTask(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{})
	_, _ = r.Create("b", "k", func(yield func()) (any, error) { yield(); return nil, nil }, 0, Options{})

	persisted := r.PersistAll()
	assert.Len(t, persisted, 2)
	assert.Contains(t, persisted, "a")
	assert.Contains(t, persisted, "b")
}

func TestRestorePreservesTerminalTasks(t *testing.T) {
	serialized := map[string]Serialized{
		"done": {ID: "done", Status: StatusCompleted, BodyKey: "k", Result: "value"},
	}
	r := Restore(serialized, map[string]func() Body{})

	task := r.Get("done")
	require.NotNil(t, task)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, "value", task.Result)
}

func TestRestoreReclassifiesRunningAsFailed(t *testing.T) {
	serialized := map[string]Serialized{
		"stuck": {ID: "stuck", Status: StatusRunning, BodyKey: "k"},
	}
	r := Restore(serialized, map[string]func() Body{})

	task := r.Get("stuck")
	require.NotNil(t, task)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, kernelerr.StateLost, task.Error)
}

func TestRestoredRunningTaskIsNeverStepped(t *testing.T) {
	serialized := map[string]Serialized{
		"stuck": {ID: "stuck", Status: StatusRunning, BodyKey: "k"},
	}
	r := Restore(serialized, map[string]func() Body{})

	summary := r.Run(&fakeCPU{limit: 100})
	assert.Empty(t, summary.Stepped)
}
