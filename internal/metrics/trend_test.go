package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarianceTrackerWelford(t *testing.T) {
	var v VarianceTracker
	assert.Equal(t, 0.0, v.Variance())

	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		v.Observe(x)
	}
	assert.InDelta(t, 5.0, v.mean, 1e-9)
	assert.InDelta(t, 4.5714, v.Variance(), 1e-3)
}

func TestVarianceTrackerZScoreNeedsTwoSamples(t *testing.T) {
	var v VarianceTracker
	assert.Equal(t, 0.0, v.ZScore(100))
	v.Observe(1)
	assert.Equal(t, 0.0, v.ZScore(100))
}

func TestVarianceTrackerZScoreZeroStdDev(t *testing.T) {
	var v VarianceTracker
	v.Observe(3)
	v.Observe(3)
	assert.Equal(t, 0.0, v.ZScore(3))
}

func TestTrendDetectorFlagsDeviation(t *testing.T) {
	d := NewTrendDetector(2.0)
	for i := 0; i < 10; i++ {
		v := 9.0
		if i%2 == 1 {
			v = 11
		}
		flag := d.Observe("cpu_used", v)
		assert.Nil(t, flag)
	}
	flag := d.Observe("cpu_used", 1000)
	assert.NotNil(t, flag)
	assert.Equal(t, "cpu_used", flag.Metric)
}

func TestTrendDetectorTracksMetricsIndependently(t *testing.T) {
	d := NewTrendDetector(2.0)
	for i := 0; i < 10; i++ {
		d.Observe("a", 10)
	}
	flag := d.Observe("b", 10000)
	assert.Nil(t, flag)
}
