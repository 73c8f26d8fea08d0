package hostsim

import "github.com/screepskernel/kernel/internal/hostctx"

// FakeCPU is an in-memory hostctx.CPU implementation for tests. Used
// directly (not through a mock framework) mirroring the teacher's
// preference for small hand-written fakes over generated mocks.
type FakeCPU struct {
	UsedValue   float64
	LimitValue  float64
	BucketValue int64
}

func (c *FakeCPU) Used() float64  { return c.UsedValue }
func (c *FakeCPU) Limit() float64 { return c.LimitValue }
func (c *FakeCPU) Bucket() int64  { return c.BucketValue }

// FakeHost is an in-memory hostctx.HostContext implementation for tests.
type FakeHost struct {
	TickValue    uint64
	CPUValue     *FakeCPU
	ObjectsValue []hostctx.GameObject
}

func (h *FakeHost) Tick() uint64 { return h.TickValue }

func (h *FakeHost) CPU() hostctx.CPU {
	if h.CPUValue == nil {
		return &FakeCPU{}
	}
	return h.CPUValue
}

func (h *FakeHost) Objects() []hostctx.GameObject { return h.ObjectsValue }
