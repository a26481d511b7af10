package nagare

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aid-On/nagare/config"
)

func TestMapFilterToArray(t *testing.T) {
	s := Filter(Map(Of(1, 2, 3, 4, 5), func(n int) int { return n * 2 }), func(n int) bool { return n > 4 })
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{6, 8, 10}, out)
}

func TestMapFilterAgreesWithAndWithoutFusion(t *testing.T) {
	build := func() Stream[int] {
		return Filter(Map(FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8}), func(n int) int { return n + 1 }), func(n int) bool { return n%2 == 0 })
	}

	config.Set(config.Config{FusionEnabled: true, UnrollThreshold: 1_000_000})
	fused, err := ToArray(context.Background(), build())
	require.NoError(t, err)

	config.Set(config.Config{FusionEnabled: false})
	defer config.Reset()
	unfused, err := ToArray(context.Background(), build())
	require.NoError(t, err)

	require.Equal(t, unfused, fused)
}

func TestScanRunningSum(t *testing.T) {
	s := Scan(Of(1, 2, 3, 4), 0, func(acc, n int) int { return acc + n })
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 6, 10}, out)
}

func TestTakeStopsUpstream(t *testing.T) {
	s := Take(Of(1, 2, 3, 4, 5), 3)
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, out)
}

func TestSkipThenTake(t *testing.T) {
	s := Take(Skip(Range(0, 100, 1), 10), 5)
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{10, 11, 12, 13, 14}, out)
}

func TestPairwise(t *testing.T) {
	out, err := ToArray(context.Background(), Pairwise(Of(1, 2, 3, 4)))
	require.NoError(t, err)
	require.Equal(t, []Pair[int, int]{{1, 2}, {2, 3}, {3, 4}}, out)
}

func TestDistinctUntilChanged(t *testing.T) {
	out, err := ToArray(context.Background(), DistinctUntilChanged(Of(1, 1, 2, 2, 2, 3, 1)))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 1}, out)
}

func TestStartWith(t *testing.T) {
	out, err := ToArray(context.Background(), StartWith(Of(3, 4), 1, 2))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, out)
}

func TestRescueRecoversFault(t *testing.T) {
	boom := errors.New("boom")
	s := Rescue(MapAsync(Of(1, 2, 3), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	}), func(err error) (int, bool) {
		return -1, true
	})
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{10, -1, 30}, out)
}

func TestDefaultPolicyDropsFault(t *testing.T) {
	boom := errors.New("boom")
	s := MapAsync(Of(1, 2, 3), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})
	out, err := ToArray(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int{10, 30}, out)
}

func TestTerminateOnErrorModeStopsStream(t *testing.T) {
	boom := errors.New("boom")
	s := TerminateOnErrorMode(MapAsync(Of(1, 2, 3), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	}))
	out, err := ToArray(context.Background(), s)
	require.Error(t, err)
	var term *TerminatedError
	require.ErrorAs(t, err, &term)
	require.Equal(t, []int{10}, out)
}

func TestFirstLastCountReduce(t *testing.T) {
	ctx := context.Background()

	first, err := First(ctx, Of(5, 6, 7))
	require.NoError(t, err)
	require.Equal(t, 5, first)

	last, err := Last(ctx, Of(5, 6, 7))
	require.NoError(t, err)
	require.Equal(t, 7, last)

	count, err := Count(ctx, Of(5, 6, 7))
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	sum, err := Reduce(ctx, Of(1, 2, 3, 4), 0, func(acc, n int) int { return acc + n })
	require.NoError(t, err)
	require.Equal(t, 10, sum)
}

func TestFirstOnEmptyStream(t *testing.T) {
	_, err := First(context.Background(), Empty[int]())
	require.Error(t, err)
	require.True(t, IsKind(err, SourceFault))
}

func TestAllSome(t *testing.T) {
	ctx := context.Background()

	all, err := All(ctx, Of(2, 4, 6), func(n int) bool { return n%2 == 0 })
	require.NoError(t, err)
	require.True(t, all)

	some, err := Some(ctx, Of(1, 3, 5, 6), func(n int) bool { return n%2 == 0 })
	require.NoError(t, err)
	require.True(t, some)
}

func TestToReadableStream(t *testing.T) {
	ctx := context.Background()
	ch := ToReadableStream(ctx, Of(1, 2, 3))
	var got []int
	for r := range ch {
		require.NoError(t, r.Err)
		got = append(got, r.Value)
	}
	require.Equal(t, []int{1, 2, 3}, got)
}
