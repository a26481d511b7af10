package backpressure

import (
	"math"
	"sync"
	"time"
)

// defaultGain is the controller's default responsiveness to latency error,
// alpha in the update law below.
const defaultGain = 0.2

// AdaptiveBackpressure is a target-latency rate controller: it tracks an
// allowed throughput rate (items/sec) that rises when observed processing
// latency runs under target and falls when it runs over, via
//
//	error = target - observed
//	rate <- clamp(rate * (1 + gain*error/target), minRate, maxRate)
type AdaptiveBackpressure struct {
	mu            sync.Mutex
	rate          float64
	targetLatency time.Duration
	minRate       float64
	maxRate       float64
	gain          float64
}

// NewAdaptiveBackpressure builds a controller starting at initialRate
// items/sec, targeting targetLatency, clamped to [minRate, maxRate], using
// the default gain of 0.2.
func NewAdaptiveBackpressure(initialRate, minRate, maxRate float64, targetLatency time.Duration) *AdaptiveBackpressure {
	return NewAdaptiveBackpressureWithGain(initialRate, minRate, maxRate, targetLatency, defaultGain)
}

// NewAdaptiveBackpressureWithGain is NewAdaptiveBackpressure with an
// explicit gain (alpha), which must be in [0, 1].
func NewAdaptiveBackpressureWithGain(initialRate, minRate, maxRate float64, targetLatency time.Duration, gain float64) *AdaptiveBackpressure {
	return &AdaptiveBackpressure{
		rate:          initialRate,
		targetLatency: targetLatency,
		minRate:       minRate,
		maxRate:       maxRate,
		gain:          gain,
	}
}

// Update folds an observed processing latency into the controller's rate
// estimate and returns the resulting rate.
func (a *AdaptiveBackpressure) Update(observed time.Duration) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	target := float64(a.targetLatency)
	next := a.rate
	if target > 0 {
		errv := target - float64(observed)
		next = a.rate * (1 + a.gain*errv/target)
	}
	if next < a.minRate {
		next = a.minRate
	}
	if next > a.maxRate {
		next = a.maxRate
	}
	a.rate = next
	return a.rate
}

// Rate reports the controller's current allowed rate, in items/sec.
func (a *AdaptiveBackpressure) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

// ShouldThrottle reports whether currentThroughput exceeds the controller's
// current allowed rate.
func (a *AdaptiveBackpressure) ShouldThrottle(currentThroughput float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return currentThroughput > a.rate
}

// DelayMs reports the inter-item delay, in milliseconds, implied by the
// controller's current rate.
func (a *AdaptiveBackpressure) DelayMs() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rate <= 0 {
		return math.MaxInt64
	}
	return int64(1000 / a.rate)
}
