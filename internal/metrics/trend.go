// trend.go generalizes the teacher's Mahalanobis-distance anomaly
// scorer (internal/anomaly/mahalanobis.go) into a lightweight
// performance-trend flag over per-tick metrics: rather than a full n×n
// covariance matrix (appropriate for correlated security telemetry
// features), this tracks only a running mean and variance per metric
// (the diagonal of that matrix), since per-tick CPU/room/creep counters
// have no meaningful cross-feature correlation to exploit and a full
// covariance inverse would be pure overhead here. See DESIGN.md for the
// justification of dropping the off-diagonal terms.
package metrics

import "math"

// VarianceTracker maintains a running mean and variance for one scalar
// metric using Welford's online algorithm.
type VarianceTracker struct {
	count    int
	mean     float64
	m2       float64
}

// Observe folds x into the running mean/variance.
func (v *VarianceTracker) Observe(x float64) {
	v.count++
	delta := x - v.mean
	v.mean += delta / float64(v.count)
	delta2 := x - v.mean
	v.m2 += delta * delta2
}

// Variance returns the current sample variance, or 0 with fewer than 2
// observations.
func (v *VarianceTracker) Variance() float64 {
	if v.count < 2 {
		return 0
	}
	return v.m2 / float64(v.count-1)
}

// StdDev returns sqrt(Variance()).
func (v *VarianceTracker) StdDev() float64 {
	return math.Sqrt(v.Variance())
}

// ZScore returns (x - mean) / stddev for the tracker's current baseline,
// the diagonal-only analogue of one term of (x-mu)^T Sigma^-1 (x-mu).
// Returns 0 if fewer than 2 samples have been observed or stddev is 0
// (no baseline to compare against, matching the teacher's "absent
// baseline returns score 0.0" fallback).
func (v *VarianceTracker) ZScore(x float64) float64 {
	sd := v.StdDev()
	if v.count < 2 || sd == 0 {
		return 0
	}
	return (x - v.mean) / sd
}

// TrendFlag is one metric's deviation from its running baseline.
type TrendFlag struct {
	Metric string  `json:"metric"`
	ZScore float64 `json:"z_score"`
}

// TrendDetector tracks several named metrics and flags any whose most
// recent observation deviates more than Threshold standard deviations
// from its running mean — the sum-of-independent-z-scores stand-in for
// the teacher's (x-mu)^T Sigma^-1 (x-mu) Mahalanobis distance, valid when
// features are assumed uncorrelated.
type TrendDetector struct {
	Threshold float64
	trackers  map[string]*VarianceTracker
}

// NewTrendDetector returns a detector flagging deviations beyond
// threshold standard deviations (the teacher's default entropy weight
// 0.3 has no analogue here since there is only one entropy-like signal,
// health.NormalizedRoleImbalance, already folded into health.Evaluator).
func NewTrendDetector(threshold float64) *TrendDetector {
	return &TrendDetector{Threshold: threshold, trackers: make(map[string]*VarianceTracker)}
}

// Observe folds one named metric's value into its tracker and returns a
// TrendFlag if the deviation exceeds Threshold, or nil otherwise.
func (d *TrendDetector) Observe(metric string, value float64) *TrendFlag {
	t, ok := d.trackers[metric]
	if !ok {
		t = &VarianceTracker{}
		d.trackers[metric] = t
	}
	z := t.ZScore(value)
	t.Observe(value)
	if math.Abs(z) > d.Threshold {
		return &TrendFlag{Metric: metric, ZScore: z}
	}
	return nil
}
