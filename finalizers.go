package nagare

import (
	"context"
	"errors"
)

// pull reads the next item from s, applying the default Drop policy to any
// bare OperatorFault that reaches this point. A Rescue or
// TerminateOnErrorMode wrapper earlier in the chain resolves faults itself
// and never lets an OperatorFault escape unhandled, so this loop only ever
// fires for chains with no explicit policy (spec.md 7: "Drop is default").
// A CancelRequested error is reported as End, so a canceled ctx completes
// the stream instead of failing it.
func pull[T any](ctx context.Context, s Stream[T]) (T, error) {
	for {
		v, err := s.Next(ctx)
		if err == nil || err == End {
			return v, err
		}
		if IsKind(err, CancelRequested) {
			return v, End
		}
		if IsKind(err, OperatorFault) {
			continue
		}
		return v, err
	}
}

// tryFused attempts the array-kernel fast path (spec.md 4.2 dispatch steps
// 1-3): fusion must be enabled, the chain must flatten (no Rescue/Terminate
// policy node anywhere in it), the root must be a dense array, and nothing
// in the chain may be async. handled is false whenever any precondition
// fails, signaling the caller to fall back to collectGeneric.
func tryFused[T any](ctx context.Context, s Stream[T]) (out []T, handled bool, err error) {
	cfg := currentExecConfig()
	if !cfg.fusionEnabled {
		return nil, false, nil
	}
	pl, ok := flatten[T](s)
	if !ok || !pl.isArray || pl.anyAsync {
		return nil, false, nil
	}
	res, ferr := runArrayKernel[T](ctx, pl, DropPolicy[T](), cfg.unrollThreshold)
	return res, true, ferr
}

func collectGeneric[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	out := []T{}
	for {
		v, err := pull[T](ctx, s)
		if err == End {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// ToArray drains s to completion and returns every emitted item, in order.
// It transparently uses the array kernel (Variant C) when the chain is
// fuseable; otherwise it drives s via Stream.Next, which is always correct.
func ToArray[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	if out, handled, err := tryFused[T](ctx, s); handled {
		return out, err
	}
	return collectGeneric[T](ctx, s)
}

// First returns s's first item, or a SourceFault if s is empty.
func First[T any](ctx context.Context, s Stream[T]) (T, error) {
	v, err := pull[T](ctx, s)
	if err == End {
		var zero T
		return zero, NewError(SourceFault, errors.New("nagare: First on empty stream"))
	}
	return v, err
}

// Last drains s and returns its final item, or a SourceFault if s is empty.
func Last[T any](ctx context.Context, s Stream[T]) (T, error) {
	var zero T
	var last T
	have := false
	for {
		v, err := pull[T](ctx, s)
		if err == End {
			if !have {
				return zero, NewError(SourceFault, errors.New("nagare: Last on empty stream"))
			}
			return last, nil
		}
		if err != nil {
			return zero, err
		}
		last = v
		have = true
	}
}

// Count drains s and returns the number of items emitted.
func Count[T any](ctx context.Context, s Stream[T]) (int64, error) {
	var n int64
	for {
		_, err := pull[T](ctx, s)
		if err == End {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// All reports whether pred holds for every item of s, short-circuiting (and
// closing s) on the first failure.
func All[T any](ctx context.Context, s Stream[T], pred func(T) bool) (bool, error) {
	for {
		v, err := pull[T](ctx, s)
		if err == End {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !pred(v) {
			s.Close()
			return false, nil
		}
	}
}

// Some reports whether pred holds for at least one item of s,
// short-circuiting (and closing s) on the first match.
func Some[T any](ctx context.Context, s Stream[T], pred func(T) bool) (bool, error) {
	for {
		v, err := pull[T](ctx, s)
		if err == End {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if pred(v) {
			s.Close()
			return true, nil
		}
	}
}

// Reduce folds fn over every item of s, starting from seed.
func Reduce[T, Acc any](ctx context.Context, s Stream[T], seed Acc, fn func(Acc, T) Acc) (Acc, error) {
	acc := seed
	for {
		v, err := pull[T](ctx, s)
		if err == End {
			return acc, nil
		}
		if err != nil {
			return acc, err
		}
		acc = fn(acc, v)
	}
}

// Result pairs a value with a terminal error for channel-based consumption.
type Result[T any] struct {
	Value T
	Err   error
}

// ToReadableStream drains s on a background goroutine, sending each item on
// the returned channel, which is closed once s is exhausted, a fault
// occurs, or ctx is done. The final send is the triggering error, if any.
func ToReadableStream[T any](ctx context.Context, s Stream[T]) <-chan Result[T] {
	out := make(chan Result[T])
	go func() {
		defer close(out)
		defer s.Close()
		for {
			v, err := pull[T](ctx, s)
			if err == End {
				return
			}
			if err != nil {
				select {
				case out <- Result[T]{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- Result[T]{Value: v}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
