package backpressure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreditControllerTryConsume(t *testing.T) {
	c := NewCreditController(3)
	require.True(t, c.TryConsume(2))
	require.Equal(t, int64(1), c.Available())
	require.False(t, c.TryConsume(2))
	c.Replenish(5)
	require.Equal(t, int64(6), c.Available())
	require.True(t, c.TryConsume(6))
}

func TestCreditControllerReset(t *testing.T) {
	c := NewCreditController(3)
	require.True(t, c.TryConsume(2))
	require.Equal(t, int64(1), c.Available())
	c.Reset()
	require.Equal(t, int64(3), c.Available())
}

func TestCreditControllerReplenishSaturatesAtMax(t *testing.T) {
	c := NewCreditControllerWithMax(0, 5)
	c.Replenish(100)
	require.Equal(t, int64(5), c.Available())
}

func TestCreditControllerAwaitUnblocksOnReplenish(t *testing.T) {
	c := NewCreditController(0)
	done := make(chan error, 1)
	go func() {
		done <- c.Await(context.Background(), 1)
	}()

	select {
	case <-done:
		t.Fatal("Await returned before credits were replenished")
	case <-time.After(20 * time.Millisecond):
	}

	c.Replenish(1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Await did not unblock after Replenish")
	}
}

func TestCreditControllerAwaitRespectsContext(t *testing.T) {
	c := NewCreditController(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Await(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMultiStreamCreditManagerIsolatesStreams(t *testing.T) {
	m := NewMultiStreamCreditManager(2)
	a := m.For("a")
	b := m.For("b")
	require.True(t, a.TryConsume(2))
	require.False(t, a.TryConsume(1))
	require.True(t, b.TryConsume(2))
	require.Same(t, a, m.For("a"))
	require.ElementsMatch(t, []string{"a", "b"}, m.Streams())
	require.Equal(t, int64(0), m.TotalAvailable())

	b.Replenish(1)
	require.Equal(t, int64(1), m.TotalAvailable())

	m.Remove("a")
	require.ElementsMatch(t, []string{"b"}, m.Streams())
}

func TestAdaptiveBackpressureRaisesRateWhenFast(t *testing.T) {
	a := NewAdaptiveBackpressure(10, 1, 100, 100*time.Millisecond)
	rate := a.Update(10 * time.Millisecond)
	require.Greater(t, rate, 10.0)
	require.LessOrEqual(t, rate, 100.0)
}

func TestAdaptiveBackpressureLowersRateWhenSlow(t *testing.T) {
	a := NewAdaptiveBackpressure(50, 1, 100, 10*time.Millisecond)
	rate := a.Update(100 * time.Millisecond)
	require.Less(t, rate, 50.0)
	require.GreaterOrEqual(t, rate, 1.0)
}

func TestAdaptiveBackpressureClampsToMinAndMax(t *testing.T) {
	a := NewAdaptiveBackpressureWithGain(10, 5, 20, 10*time.Millisecond, 1.0)
	rate := a.Update(10 * time.Second)
	require.Equal(t, 5.0, rate)

	a2 := NewAdaptiveBackpressureWithGain(10, 5, 20, 10*time.Millisecond, 1.0)
	rate2 := a2.Update(0)
	require.Equal(t, 20.0, rate2)
}

func TestAdaptiveBackpressureShouldThrottleAndDelay(t *testing.T) {
	a := NewAdaptiveBackpressure(10, 1, 100, 100*time.Millisecond)
	require.False(t, a.ShouldThrottle(5))
	require.True(t, a.ShouldThrottle(15))
	require.Equal(t, int64(100), a.DelayMs())
}

func TestWindowedRateLimiterEnforcesLimit(t *testing.T) {
	r := NewWindowedRateLimiter(2, time.Hour)
	require.True(t, r.Allow())
	require.True(t, r.Allow())
	require.False(t, r.Allow())
}

func TestWindowedRateLimiterSlidesWindow(t *testing.T) {
	base := time.Now()
	cur := base
	r := NewWindowedRateLimiter(1, time.Second)
	r.now = func() time.Time { return cur }

	require.True(t, r.Allow())
	require.False(t, r.Allow())

	cur = base.Add(2 * time.Second)
	require.True(t, r.Allow())
}

func TestWindowedRateLimiterCurrentRateAndAvailableSlots(t *testing.T) {
	base := time.Now()
	cur := base
	r := NewWindowedRateLimiter(4, time.Second)
	r.now = func() time.Time { return cur }

	require.Equal(t, 4, r.AvailableSlots())
	require.True(t, r.Allow())
	require.True(t, r.Allow())
	require.Equal(t, 2, r.AvailableSlots())
	require.Equal(t, 2.0, r.CurrentRate(cur))

	cur = base.Add(2 * time.Second)
	require.Equal(t, 4, r.AvailableSlots())
	require.Equal(t, 0.0, r.CurrentRate(cur))
}

func TestDynamicBackpressureAdmitAndComplete(t *testing.T) {
	d := NewDynamicBackpressure(5, 20*time.Millisecond, 10, 1, 100, 1, 10, time.Hour)
	require.True(t, d.Admit(Metrics{QueueSize: 0, InputRate: 1, LatencyMs: 5}))
	require.False(t, d.Admit(Metrics{QueueSize: 0, InputRate: 1, LatencyMs: 5}))

	d.Complete(5 * time.Millisecond)
	require.Greater(t, d.Credits.Available(), int64(0))
}

func TestDynamicBackpressureRejectsOnQueueSize(t *testing.T) {
	d := NewDynamicBackpressure(5, 20*time.Millisecond, 10, 1, 100, 100, 100, time.Hour)
	require.False(t, d.Admit(Metrics{QueueSize: 5, InputRate: 1, LatencyMs: 5}))
}

func TestDynamicBackpressureRejectsOnExcessiveLatency(t *testing.T) {
	d := NewDynamicBackpressure(5, 20*time.Millisecond, 10, 1, 100, 100, 100, time.Hour)
	require.False(t, d.Admit(Metrics{QueueSize: 0, InputRate: 1, LatencyMs: 50}))
}

func TestDynamicBackpressureRejectsWhenAdaptiveThrottles(t *testing.T) {
	d := NewDynamicBackpressure(5, 20*time.Millisecond, 10, 1, 100, 100, 100, time.Hour)
	require.False(t, d.Admit(Metrics{QueueSize: 0, InputRate: 1000, LatencyMs: 5}))
}
