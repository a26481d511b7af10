// Package window implements Nagare's windowed aggregator: a fixed-size
// sliding window over a numeric stream that reports sum, mean, min and max
// after every push in O(1) amortized time, regardless of window size.
package window

import (
	"context"

	"github.com/Aid-On/nagare"
)

// Aggregate is the window's statistics snapshot after the most recent push.
type Aggregate struct {
	Count int
	Sum   float64
	Mean  float64
	Min   float64
	Max   float64
}

type entry struct {
	seq int64
	val float64
}

// Aggregator maintains a fixed-size sliding window using a circular
// buffer, an incrementally updated running sum, and two monotonic deques
// (one for the window's running max, one for its running min), so Push
// never has to rescan the window.
type Aggregator struct {
	size int
	buf  []float64
	n    int
	pos  int
	sum  float64
	seq  int64

	maxDq []entry
	minDq []entry
}

// NewAggregator builds an Aggregator over the last size values pushed to
// it. size must be positive.
func NewAggregator(size int) *Aggregator {
	return &Aggregator{size: size, buf: make([]float64, size)}
}

// Push admits v into the window, evicting the oldest value once the window
// is full, and returns the window's updated statistics.
func (a *Aggregator) Push(v float64) Aggregate {
	evictSeq := a.seq - int64(a.size)

	if a.n == a.size {
		a.sum -= a.buf[a.pos]
	} else {
		a.n++
	}
	a.buf[a.pos] = v
	a.pos = (a.pos + 1) % a.size
	a.sum += v

	for len(a.maxDq) > 0 && a.maxDq[len(a.maxDq)-1].val <= v {
		a.maxDq = a.maxDq[:len(a.maxDq)-1]
	}
	a.maxDq = append(a.maxDq, entry{seq: a.seq, val: v})
	for len(a.maxDq) > 0 && a.maxDq[0].seq <= evictSeq {
		a.maxDq = a.maxDq[1:]
	}

	for len(a.minDq) > 0 && a.minDq[len(a.minDq)-1].val >= v {
		a.minDq = a.minDq[:len(a.minDq)-1]
	}
	a.minDq = append(a.minDq, entry{seq: a.seq, val: v})
	for len(a.minDq) > 0 && a.minDq[0].seq <= evictSeq {
		a.minDq = a.minDq[1:]
	}

	a.seq++

	mean := 0.0
	if a.n > 0 {
		mean = a.sum / float64(a.n)
	}
	return Aggregate{Count: a.n, Sum: a.sum, Mean: mean, Max: a.maxDq[0].val, Min: a.minDq[0].val}
}

// aggregateStream drives an Aggregator over a Stream[T], extracting a
// float64 from each item with extract.
type aggregateStream[T any] struct {
	upstream nagare.Stream[T]
	extract  func(T) float64
	agg      *Aggregator
}

// WindowedAggregate emits the running Aggregate over the last size items of
// s, converted to float64 by extract. It emits nothing until the window has
// filled (the first size-1 items are consumed silently), so draining it
// yields max(0, |s|-size+1) aggregates.
func WindowedAggregate[T any](s nagare.Stream[T], size int, extract func(T) float64) nagare.Stream[Aggregate] {
	return &aggregateStream[T]{upstream: s, extract: extract, agg: NewAggregator(size)}
}

func (a *aggregateStream[T]) Next(ctx context.Context) (Aggregate, error) {
	for {
		v, err := a.upstream.Next(ctx)
		if err != nil {
			return Aggregate{}, err
		}
		agg := a.agg.Push(a.extract(v))
		if agg.Count == a.agg.size {
			return agg, nil
		}
	}
}

func (a *aggregateStream[T]) Close() { a.upstream.Close() }
