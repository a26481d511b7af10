package nagare

import "context"

// runArrayKernel is Variant C: it walks a dense array-like source with a
// tight loop, evaluating the flattened op chain inline per spec.md 4.2.
// It has a scalar form and a 4-lane unrolled form; the unrolled form is
// only used when len >= unrollThreshold and the chain contains no Take
// (Take's global early-break is incompatible with evaluating four lanes
// simultaneously, per spec.md 4.2).
func runArrayKernel[T any](ctx context.Context, pl pipeline, policy ErrorPolicy[T], unrollThreshold int) ([]T, error) {
	hasTake := false
	for _, op := range pl.ops {
		if op.kind() == opTake {
			hasTake = true
			break
		}
	}

	out := make([]T, 0, pl.arrLen)
	states := pl.newStates()

	if !hasTake && pl.arrLen >= unrollThreshold {
		return runArrayKernelUnrolled[T](ctx, pl, states, policy, out)
	}
	return runArrayKernelScalar[T](ctx, pl, states, policy, out)
}

func runArrayKernelScalar[T any](ctx context.Context, pl pipeline, states []opState, policy ErrorPolicy[T], out []T) ([]T, error) {
	for i := 0; i < pl.arrLen; i++ {
		v, emit, stop, term, err := evalOne[T](ctx, states, policy, pl.arrAt(i))
		if err != nil {
			return out, err
		}
		if emit {
			out = append(out, v)
		}
		if term {
			return out, nil
		}
		if stop {
			return out, nil
		}
	}
	return out, nil
}

// runArrayKernelUnrolled processes four items per loop iteration. Because
// Take cannot appear in this path (checked by the caller), no lane can ever
// request the others to stop mid-batch, so the four evaluations are
// independent and can be inlined without cross-lane coordination; results
// are appended in order to preserve per-source ordering.
func runArrayKernelUnrolled[T any](ctx context.Context, pl pipeline, states []opState, policy ErrorPolicy[T], out []T) ([]T, error) {
	n := pl.arrLen
	i := 0
	for ; i+4 <= n; i += 4 {
		for lane := 0; lane < 4; lane++ {
			v, emit, _, term, err := evalOne[T](ctx, states, policy, pl.arrAt(i+lane))
			if err != nil {
				return out, err
			}
			if emit {
				out = append(out, v)
			}
			if term {
				return out, nil
			}
		}
	}
	for ; i < n; i++ {
		v, emit, _, term, err := evalOne[T](ctx, states, policy, pl.arrAt(i))
		if err != nil {
			return out, err
		}
		if emit {
			out = append(out, v)
		}
		if term {
			return out, nil
		}
	}
	return out, nil
}

// evalOne runs one item through states under policy, returning the typed
// output value and whether it should be emitted, whether Take-style stop
// was requested, and whether a Terminate policy fatally ended the stream.
func evalOne[T any](ctx context.Context, states []opState, policy ErrorPolicy[T], in any) (v T, emit bool, stop bool, term bool, err error) {
	out, e, s, fatal := applyPolicyItem[T](ctx, states, policy, in)
	if fatal != nil {
		var zero T
		return zero, false, s, true, fatal
	}
	if !e {
		var zero T
		return zero, false, s, false, nil
	}
	return out.(T), true, s, false, nil
}
