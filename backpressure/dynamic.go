package backpressure

import (
	"context"
	"time"
)

// Metrics is the snapshot of pipeline health DynamicBackpressure.Admit
// decides against.
type Metrics struct {
	QueueSize      int
	ProcessingRate float64
	InputRate      float64
	LatencyMs      float64
	MemoryUsage    float64
}

// DynamicBackpressure composes a CreditController, a WindowedRateLimiter
// and an AdaptiveBackpressure controller into one composite admission
// policy over a stream of Metrics snapshots: an item is rejected once
// queue_size reaches MaxQueue, once latency exceeds twice the target, or
// once the adaptive controller says the input rate is outrunning what it
// will currently allow. Every Admit call, accepted or rejected, feeds its
// LatencyMs back into the adaptive controller first, so the throttle
// decision always reflects the freshest latency sample.
type DynamicBackpressure struct {
	Credits  *CreditController
	Limiter  *WindowedRateLimiter
	Adaptive *AdaptiveBackpressure

	MaxQueue      int
	TargetLatency time.Duration
}

// NewDynamicBackpressure wires up a composite admission policy.
func NewDynamicBackpressure(maxQueue int, targetLatency time.Duration, initialRate, minRate, maxRate float64, initialCredits int64, rateLimit int, rateWindow time.Duration) *DynamicBackpressure {
	return &DynamicBackpressure{
		Credits:       NewCreditController(initialCredits),
		Limiter:       NewWindowedRateLimiter(rateLimit, rateWindow),
		Adaptive:      NewAdaptiveBackpressure(initialRate, minRate, maxRate, targetLatency),
		MaxQueue:      maxQueue,
		TargetLatency: targetLatency,
	}
}

// Admit reports whether an item may be admitted given the current pipeline
// metrics, consuming one credit if so.
func (d *DynamicBackpressure) Admit(m Metrics) bool {
	d.Adaptive.Update(time.Duration(m.LatencyMs * float64(time.Millisecond)))

	if m.QueueSize >= d.MaxQueue {
		return false
	}
	if m.LatencyMs > 2*float64(d.TargetLatency.Milliseconds()) {
		return false
	}
	if d.Adaptive.ShouldThrottle(m.InputRate) {
		return false
	}
	if !d.Limiter.Allow() {
		return false
	}
	return d.Credits.TryConsume(1)
}

// Complete reports the processing latency of an admitted item, folding it
// into the adaptive controller and replenishing credits in proportion to
// the rate it now allows.
func (d *DynamicBackpressure) Complete(latency time.Duration) {
	rate := d.Adaptive.Update(latency)
	grant := int64(rate)
	if grant < 1 {
		grant = 1
	}
	d.Credits.Replenish(grant)
}

// AwaitAdmit blocks until an item may be admitted by the rate limiter and
// credit pool or ctx is done. It does not evaluate the Metrics-based
// composite rule, since that requires a live latency/queue sample that a
// blocking waiter doesn't have.
func (d *DynamicBackpressure) AwaitAdmit(ctx context.Context) error {
	for {
		if d.Limiter.Allow() {
			return d.Credits.Await(ctx, 1)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}
