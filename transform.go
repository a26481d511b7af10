package nagare

import "context"

// Type-changing operators cannot be Stream methods (Go forbids generic
// methods), so each is a free function wrapping an upstream Stream[T] in a
// new Stream[R]. Map and Scan tag themselves via nagareOp/nagareUpstream so
// the fusion compiler can recognize and flatten them (Pairwise does not,
// see pairwiseStream); per spec.md 9 (open
// question on rescue propagation), a Rescue/TerminateOnErrorMode attached
// before a type-changing operator does NOT apply to faults raised inside
// it — recovery must be attached at or above the operator that can fault,
// since its handler's return type has to match the operator's own output
// type.

// mapStream applies fn (or fnAsync) to every upstream item.
type mapStream[T, R any] struct {
	upstream Stream[T]
	op       *mapOp[T, R]
}

// Map transforms each item of s with fn.
func Map[T, R any](s Stream[T], fn func(T) R) Stream[R] {
	return &mapStream[T, R]{upstream: s, op: &mapOp[T, R]{fn: fn}}
}

// MapAsync transforms each item of s with fn, which may fail; a failure is
// raised as an OperatorFault, recoverable via Rescue chained immediately
// after this call.
func MapAsync[T, R any](s Stream[T], fn func(context.Context, T) (R, error)) Stream[R] {
	return &mapStream[T, R]{upstream: s, op: &mapOp[T, R]{fnAsync: fn}}
}

func (m *mapStream[T, R]) Next(ctx context.Context) (R, error) {
	var zero R
	v, err := m.upstream.Next(ctx)
	if err != nil {
		return zero, err
	}
	if m.op.fnAsync != nil {
		out, ferr := m.op.fnAsync(ctx, v)
		if ferr != nil {
			return zero, NewError(OperatorFault, ferr)
		}
		return out, nil
	}
	return m.op.fn(v), nil
}

func (m *mapStream[T, R]) Close()              { m.upstream.Close() }
func (m *mapStream[T, R]) nagareOp() compiledOp { return m.op }
func (m *mapStream[T, R]) nagareUpstream() any  { return m.upstream }

// scanStream folds fn (or fnAsync) over upstream items, emitting the
// running accumulator after every item.
type scanStream[T, Acc any] struct {
	upstream Stream[T]
	op       *scanOp[T, Acc]
	acc      Acc
}

// Scan emits the running fold of fn over s, starting from seed.
func Scan[T, Acc any](s Stream[T], seed Acc, fn func(Acc, T) Acc) Stream[Acc] {
	return &scanStream[T, Acc]{upstream: s, op: &scanOp[T, Acc]{seed: seed, fn: fn}, acc: seed}
}

// ScanAsync is Scan with a fallible fold function.
func ScanAsync[T, Acc any](s Stream[T], seed Acc, fn func(context.Context, Acc, T) (Acc, error)) Stream[Acc] {
	return &scanStream[T, Acc]{upstream: s, op: &scanOp[T, Acc]{seed: seed, fnAsync: fn}, acc: seed}
}

func (sc *scanStream[T, Acc]) Next(ctx context.Context) (Acc, error) {
	var zero Acc
	v, err := sc.upstream.Next(ctx)
	if err != nil {
		return zero, err
	}
	if sc.op.fnAsync != nil {
		next, ferr := sc.op.fnAsync(ctx, sc.acc, v)
		if ferr != nil {
			return zero, NewError(OperatorFault, ferr)
		}
		sc.acc = next
		return sc.acc, nil
	}
	sc.acc = sc.op.fn(sc.acc, v)
	return sc.acc, nil
}

func (sc *scanStream[T, Acc]) Close()              { sc.upstream.Close() }
func (sc *scanStream[T, Acc]) nagareOp() compiledOp { return sc.op }
func (sc *scanStream[T, Acc]) nagareUpstream() any  { return sc.upstream }

// pairwiseStream emits the previous/current pair for every item after the
// first. It is a type-changing operator but is not recognized by the
// fusion compiler (no opPairwise kind exists): chains built on top of it
// always run the generic path, correctly, just without the array kernel.
type pairwiseStream[T any] struct {
	upstream Stream[T]
	prev     T
	have     bool
}

// Pairwise emits Pair{prev, cur} for every item after the first.
func Pairwise[T any](s Stream[T]) Stream[Pair[T, T]] {
	return &pairwiseStream[T]{upstream: s}
}

func (p *pairwiseStream[T]) Next(ctx context.Context) (Pair[T, T], error) {
	var zero Pair[T, T]
	for {
		v, err := p.upstream.Next(ctx)
		if err != nil {
			return zero, err
		}
		if !p.have {
			p.prev = v
			p.have = true
			continue
		}
		pair := Pair[T, T]{First: p.prev, Second: v}
		p.prev = v
		return pair, nil
	}
}

func (p *pairwiseStream[T]) Close() { p.upstream.Close() }
