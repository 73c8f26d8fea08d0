package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screepskernel/kernel/internal/hostctx"
)

type fakeCPU struct {
	used, limit float64
	bucket      int64
}

func (c fakeCPU) Used() float64  { return c.used }
func (c fakeCPU) Limit() float64 { return c.limit }
func (c fakeCPU) Bucket() int64  { return c.bucket }

var _ hostctx.CPU = fakeCPU{}

func TestCreateRejectsDuplicateNonTerminalID(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, err := r.Create("t1", "k", func(yield func()) (any, error) { yield(); return nil, nil }, 0, Options{})
	require.NoError(t, err)

	_, err = r.Create("t1", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{})
	assert.Error(t, err)
}

func TestCreateAllowsReuseAfterTerminal(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, err := r.Create("t1", "k", func(yield func()) (any, error) { return "done", nil }, 0, Options{})
	require.NoError(t, err)
	r.Run(&fakeCPU{limit: 100})

	_, err = r.Create("t1", "k", func(yield func()) (any, error) { return "done2", nil }, 0, Options{})
	assert.NoError(t, err)
}

func TestRunStepsAndCompletesImmediateTask(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, err := r.Create("t1", "k", func(yield func()) (any, error) { return "result", nil }, 0, Options{})
	require.NoError(t, err)

	cpu := &fakeCPU{limit: 100}
	summary := r.Run(cpu)

	assert.Contains(t, summary.Completed, "t1")
	assert.Equal(t, "result", r.Get("t1").Result)
}

func TestRunOrdersByPriorityDescending(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	var order []string
	mk := func(id string) Body {
		return func(yield func()) (any, error) { order = append(order, id); return nil, nil }
	}
	_, _ = r.Create("low", "k", mk("low"), 0, Options{Priority: 1})
	_, _ = r.Create("high", "k", mk("high"), 0, Options{Priority: 9})

	r.Run(&fakeCPU{limit: 100})
	assert.Equal(t, []string{"high", "low"}, order)
}

func TestRunRespectsMaxTasksPerTick(t *testing.T) {
	r := NewRunner(nil, RunnerOptions{MaxTasksPerTick: 1})
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{})
	_, _ = r.Create("b", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{})

	summary := r.Run(&fakeCPU{limit: 100})
	assert.Len(t, summary.Stepped, 1)
}

func TestRunStopsWhenCPUBudgetExhausted(t *testing.T) {
	cpu := &fakeCPU{limit: 100}
	r := NewRunner(nil, RunnerOptions{CPUBudget: 5})
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { cpu.used += 10; return nil, nil }, 0, Options{})
	_, _ = r.Create("b", "k", func(yield func()) (any, error) { cpu.used += 10; return nil, nil }, 0, Options{})

	summary := r.Run(cpu)
	assert.Len(t, summary.Stepped, 1)
	assert.NotEmpty(t, summary.Warnings)
}

func TestRunRecordsFailedTask(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	boom := errors.New("boom")
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { return nil, boom }, 0, Options{})

	summary := r.Run(&fakeCPU{limit: 100})
	assert.Contains(t, summary.Failed, "a")
	assert.Equal(t, StatusFailed, r.Get("a").Status)
}

func TestRunEnforcesMaxTicks(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, _ = r.Create("a", "k", func(yield func()) (any, error) {
		for {
			yield()
		}
	}, 0, Options{MaxTicks: 2})

	cpu := &fakeCPU{limit: 100}
	r.Run(cpu)
	summary := r.Run(cpu)
	assert.Contains(t, summary.Cancelled, "a")
	assert.Equal(t, StatusCancelled, r.Get("a").Status)
}

func TestCancelTransitionsTask(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { yield(); return nil, nil }, 0, Options{})
	r.Run(&fakeCPU{limit: 100})

	r.Cancel("a", "stop it")
	task := r.Get("a")
	assert.Equal(t, StatusCancelled, task.Status)
	assert.Equal(t, "stop it", task.Error)
}

func TestMarkCompletedTickAndCleanup(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{CleanupAfterTicks: 2})
	r.Run(&fakeCPU{limit: 100})

	r.MarkCompletedTick(10)
	require.NotNil(t, r.Get("a").TickCompleted)
	assert.Equal(t, uint64(10), *r.Get("a").TickCompleted)

	r.Cleanup(11)
	assert.NotNil(t, r.Get("a"))

	r.Cleanup(12)
	assert.Nil(t, r.Get("a"))
}

func TestAllReturnsEveryTask(t *testing.T) {
	r := NewRunner(nil, DefaultRunnerOptions())
	_, _ = r.Create("a", "k", func(yield func()) (any, error) { yield(); return nil, nil }, 0, Options{})
	_, _ = r.Create("b", "k", func(yield func()) (any, error) { return nil, nil }, 0, Options{})

	assert.Len(t, r.All(), 2)
}
