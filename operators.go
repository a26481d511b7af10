package nagare

import "context"

// filterStream keeps only items for which pred (or predAsync) holds.
type filterStream[T any] struct {
	upstream Stream[T]
	op       *filterOp[T]
}

// Filter keeps only items of s for which pred returns true.
func Filter[T any](s Stream[T], pred func(T) bool) Stream[T] {
	return &filterStream[T]{upstream: s, op: &filterOp[T]{pred: pred}}
}

// FilterAsync is Filter with a fallible predicate.
func FilterAsync[T any](s Stream[T], pred func(context.Context, T) (bool, error)) Stream[T] {
	return &filterStream[T]{upstream: s, op: &filterOp[T]{predAsync: pred}}
}

func (f *filterStream[T]) Next(ctx context.Context) (T, error) {
	for {
		v, err := f.upstream.Next(ctx)
		if err != nil {
			return v, err
		}
		if f.op.predAsync != nil {
			ok, ferr := f.op.predAsync(ctx, v)
			if ferr != nil {
				var zero T
				return zero, NewError(OperatorFault, ferr)
			}
			if ok {
				return v, nil
			}
			continue
		}
		if f.op.pred(v) {
			return v, nil
		}
	}
}

func (f *filterStream[T]) Close()              { f.upstream.Close() }
func (f *filterStream[T]) nagareOp() compiledOp { return f.op }
func (f *filterStream[T]) nagareUpstream() any  { return f.upstream }

// takeStream passes through at most n items, then ends the stream, even if
// upstream has more.
type takeStream[T any] struct {
	upstream Stream[T]
	op       *takeOp
	count    int64
	done     bool
}

// Take yields at most the first n items of s.
func Take[T any](s Stream[T], n int64) Stream[T] {
	return &takeStream[T]{upstream: s, op: &takeOp{n: n}}
}

func (t *takeStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if t.done || t.count >= t.op.n {
		t.done = true
		return zero, End
	}
	v, err := t.upstream.Next(ctx)
	if err != nil {
		t.done = true
		return zero, err
	}
	t.count++
	if t.count >= t.op.n {
		t.done = true
	}
	return v, nil
}

func (t *takeStream[T]) Close()              { t.upstream.Close() }
func (t *takeStream[T]) nagareOp() compiledOp { return t.op }
func (t *takeStream[T]) nagareUpstream() any  { return t.upstream }

// skipStream discards the first n items of upstream, then passes the rest
// through unchanged.
type skipStream[T any] struct {
	upstream Stream[T]
	op       *skipOp
	skipped  int64
}

// Skip discards the first n items of s.
func Skip[T any](s Stream[T], n int64) Stream[T] {
	return &skipStream[T]{upstream: s, op: &skipOp{n: n}}
}

func (sk *skipStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for sk.skipped < sk.op.n {
		_, err := sk.upstream.Next(ctx)
		if err != nil {
			return zero, err
		}
		sk.skipped++
	}
	return sk.upstream.Next(ctx)
}

func (sk *skipStream[T]) Close()              { sk.upstream.Close() }
func (sk *skipStream[T]) nagareOp() compiledOp { return sk.op }
func (sk *skipStream[T]) nagareUpstream() any  { return sk.upstream }

// policyStream attaches an ErrorPolicy to every OperatorFault raised by
// upstream. It is produced by Rescue and TerminateOnErrorMode; non-OperatorFault kinds
// (TypeFault, SourceFault, KernelFault) always propagate regardless of
// policy, per spec.md 7.
type policyStream[T any] struct {
	upstream Stream[T]
	policy   ErrorPolicy[T]
}

// Rescue recovers OperatorFault errors raised anywhere upstream using
// handler. If handler reports recovered=false, the faulting item is
// dropped and iteration continues with the next upstream item.
func Rescue[T any](s Stream[T], handler func(err error) (T, bool)) Stream[T] {
	return &policyStream[T]{upstream: s, policy: RescuePolicy(handler)}
}

// TerminateOnErrorMode closes the stream (returning a *TerminatedError) on
// the first OperatorFault raised anywhere upstream.
func TerminateOnErrorMode[T any](s Stream[T]) Stream[T] {
	return &policyStream[T]{upstream: s, policy: TerminatePolicy[T]()}
}

func (p *policyStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		v, err := p.upstream.Next(ctx)
		if err == nil {
			return v, nil
		}
		if err == End {
			return zero, End
		}
		if !IsKind(err, OperatorFault) {
			return zero, err
		}
		switch p.policy.Kind {
		case RescueKind:
			if rv, recovered := p.policy.Handler(err); recovered {
				return rv, nil
			}
			continue
		case Terminate:
			return zero, &TerminatedError{Cause: err}
		default: // Drop, Propagate
			continue
		}
	}
}

func (p *policyStream[T]) Close() { p.upstream.Close() }
func (p *policyStream[T]) nagareUpstream() any { return p.upstream }
func (p *policyStream[T]) nagareBlocksFusion() bool {
	return p.policy.Kind == RescueKind || p.policy.Kind == Terminate
}

// distinctStream drops any item equal to the immediately preceding emitted
// item. Per spec.md 9's open question on equality, Nagare defines "changed"
// as Go's == on a comparable type, not a deep/structural comparison —
// callers needing structural equality should Map to a comparable key first.
type distinctStream[T comparable] struct {
	upstream Stream[T]
	prev     T
	have     bool
}

// DistinctUntilChanged suppresses consecutive duplicate items, using == to
// compare.
func DistinctUntilChanged[T comparable](s Stream[T]) Stream[T] {
	return &distinctStream[T]{upstream: s}
}

func (d *distinctStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		v, err := d.upstream.Next(ctx)
		if err != nil {
			return zero, err
		}
		if d.have && v == d.prev {
			continue
		}
		d.prev = v
		d.have = true
		return v, nil
	}
}

func (d *distinctStream[T]) Close() { d.upstream.Close() }

// startWithStream prepends a fixed set of items before upstream's own.
type startWithStream[T any] struct {
	upstream Stream[T]
	prefix   []T
	i        int
}

// StartWith yields items before any item of s.
func StartWith[T any](s Stream[T], items ...T) Stream[T] {
	return &startWithStream[T]{upstream: s, prefix: items}
}

func (sw *startWithStream[T]) Next(ctx context.Context) (T, error) {
	if sw.i < len(sw.prefix) {
		v := sw.prefix[sw.i]
		sw.i++
		return v, nil
	}
	return sw.upstream.Next(ctx)
}

func (sw *startWithStream[T]) Close() { sw.upstream.Close() }
