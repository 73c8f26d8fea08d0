package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCPU struct {
	used, limit float64
	bucket      int64
}

func (c fakeCPU) Used() float64  { return c.used }
func (c fakeCPU) Limit() float64 { return c.limit }
func (c fakeCPU) Bucket() int64  { return c.bucket }

func TestNewGuardDefaultThreshold(t *testing.T) {
	g := NewGuard()
	assert.Equal(t, DefaultEmergencyThreshold, g.EmergencyThreshold)
}

func TestIsEmergency(t *testing.T) {
	g := NewGuard()
	assert.False(t, g.IsEmergency(fakeCPU{used: 50, limit: 100}))
	assert.True(t, g.IsEmergency(fakeCPU{used: 95, limit: 100}))
}

func TestIsEmergencyZeroLimitNeverEmergency(t *testing.T) {
	g := NewGuard()
	assert.False(t, g.IsEmergency(fakeCPU{used: 10, limit: 0}))
}

func TestIsEmergencyFallsBackToDefaultWhenUnset(t *testing.T) {
	g := &Guard{}
	assert.False(t, g.IsEmergency(fakeCPU{used: 80, limit: 100}))
	assert.True(t, g.IsEmergency(fakeCPU{used: 95, limit: 100}))
}

func TestWouldExceed(t *testing.T) {
	g := NewGuard()
	assert.False(t, g.WouldExceed(fakeCPU{used: 90, limit: 100}, 5))
	assert.True(t, g.WouldExceed(fakeCPU{used: 90, limit: 100}, 20))
	assert.False(t, g.WouldExceed(fakeCPU{used: 90, limit: 100}, 0))
	assert.False(t, g.WouldExceed(fakeCPU{used: 90, limit: 100}, -5))
}

func TestWithinStepBudget(t *testing.T) {
	assert.True(t, WithinStepBudget(5, 10))
	assert.False(t, WithinStepBudget(15, 10))
	assert.True(t, WithinStepBudget(1000, 0))
}

func TestBucketSufficient(t *testing.T) {
	assert.True(t, BucketSufficient(fakeCPU{bucket: 100}, 50))
	assert.False(t, BucketSufficient(fakeCPU{bucket: 10}, 50))
	assert.True(t, BucketSufficient(fakeCPU{bucket: 0}, 0))
}
