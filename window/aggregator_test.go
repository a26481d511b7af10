package window

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aid-On/nagare"
)

func TestAggregatorWithinWindowCapacity(t *testing.T) {
	agg := NewAggregator(5)
	var last Aggregate
	for _, v := range []float64{1, 2, 3} {
		last = agg.Push(v)
	}
	require.Equal(t, 3, last.Count)
	require.Equal(t, 6.0, last.Sum)
	require.InDelta(t, 2.0, last.Mean, 1e-9)
	require.Equal(t, 1.0, last.Min)
	require.Equal(t, 3.0, last.Max)
}

func TestAggregatorEvictsOldestOnceFull(t *testing.T) {
	agg := NewAggregator(3)
	var last Aggregate
	for _, v := range []float64{1, 2, 3, 10} {
		last = agg.Push(v)
	}
	// Window now holds {2, 3, 10}: 1 has been evicted.
	require.Equal(t, 3, last.Count)
	require.Equal(t, 15.0, last.Sum)
	require.Equal(t, 2.0, last.Min)
	require.Equal(t, 10.0, last.Max)
}

func TestAggregatorMinMaxAfterEvictingExtremum(t *testing.T) {
	agg := NewAggregator(2)
	agg.Push(5)
	agg.Push(1)
	last := agg.Push(2)
	// Window now holds {1, 2}: the evicted 5 must not linger as max.
	require.Equal(t, 2.0, last.Max)
	require.Equal(t, 1.0, last.Min)
}

func TestWindowedAggregateSuppressesOutputUntilWindowFull(t *testing.T) {
	ctx := context.Background()
	// from([1,2,3,4,5]).windowedAggregate(3, mean) -> [2,3,4]
	s := WindowedAggregate(nagare.Of(1.0, 2.0, 3.0, 4.0, 5.0), 3, func(v float64) float64 { return v })

	var means []float64
	for {
		v, err := s.Next(ctx)
		if err == nagare.End {
			break
		}
		require.NoError(t, err)
		means = append(means, v.Mean)
	}
	// max(0, |X|-W+1) == max(0, 5-3+1) == 3 outputs.
	require.Equal(t, []float64{2, 3, 4}, means)
}

func TestWindowedAggregateOverStream(t *testing.T) {
	ctx := context.Background()
	s := WindowedAggregate(nagare.Of(1.0, 2.0, 3.0, 4.0), 2, func(v float64) float64 { return v })

	var got []Aggregate
	for {
		v, err := s.Next(ctx)
		if err == nagare.End {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 3)
	last := got[2]
	require.Equal(t, 2, last.Count)
	require.Equal(t, 7.0, last.Sum)
	require.Equal(t, 3.0, last.Min)
	require.Equal(t, 4.0, last.Max)
}
