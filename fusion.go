package nagare

import (
	"context"

	"github.com/Aid-On/nagare/config"
)

// pipeline is the flattened (base, ops, policy) triple described in
// spec.md 4.1 ("Chain flattening"). It is built once per finalizer call by
// walking chainLink.nagareUpstream() pointers to the root.
type pipeline struct {
	ops      []compiledOp
	anyAsync bool
	root     any // the non-tagged Stream at the bottom of the chain, as `any`
	arrLen   int
	arrAt    func(int) any
	isArray  bool
}

// chainLink is implemented by every wrapper stream produced by this
// package (operator nodes and policy-only nodes alike), letting flatten
// walk to the root regardless of element type.
type chainLink interface{ nagareUpstream() any }

// opLink additionally tags the node with a recognized, fusable operator.
type opLink interface {
	chainLink
	nagareOp() compiledOp
}

// fusionBlocker marks a policy-only node (produced by Rescue or
// TerminateOnErrorMode) whose policy cannot be represented by the array
// kernel/fused paths. Per spec.md 4.2's dispatch table, Rescue/Terminate
// always run through plain Stream.Next composition (which already
// implements per-item guarding correctly) rather than a specialized fast
// path; Drop/Propagate policy nodes are transparent to fusion.
type fusionBlocker interface {
	chainLink
	nagareBlocksFusion() bool
}

// flatten walks s's chain, collecting recognized ops in outer->inner order
// then reversing to evaluation order, and determining whether anything in
// the chain makes the array-kernel/fused fast paths ineligible. ok is false
// whenever a Rescue/Terminate policy node is present anywhere in the chain;
// callers must then fall back to driving s via Stream.Next, which already
// implements the correct (slower) per-item semantics unconditionally.
func flatten[T any](s Stream[T]) (pl pipeline, ok bool) {
	var chain []compiledOp
	var cur any = s
	for {
		if fb, isBlocker := cur.(fusionBlocker); isBlocker && fb.nagareBlocksFusion() {
			return pipeline{}, false
		}
		if ol, isOp := cur.(opLink); isOp {
			chain = append(chain, ol.nagareOp())
			cur = ol.nagareUpstream()
			continue
		}
		if cl, isLink := cur.(chainLink); isLink {
			cur = cl.nagareUpstream()
			continue
		}
		break
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	anyAsync := false
	for _, op := range chain {
		if op.async() {
			anyAsync = true
		}
	}
	pl = pipeline{ops: chain, anyAsync: anyAsync, root: cur}
	if asn, isArr := cur.(arraySourceNode); isArr {
		pl.isArray = true
		pl.arrLen = asn.nagareArrayLen()
		pl.arrAt = asn.nagareArrayAt
	}
	return pl, true
}

// isStateless reports whether every op in the chain is stateless (pure map
// or filter — no scan/take/skip cursor to preserve), the precondition for
// Variant B's type-probe-then-unchecked-kernel dispatch (spec.md 4.2 step 2
// vs step 3).
func (pl pipeline) isStateless() bool {
	for _, op := range pl.ops {
		switch op.kind() {
		case opScan, opTake, opSkip:
			return false
		}
	}
	return true
}

func (pl pipeline) newStates() []opState {
	states := make([]opState, len(pl.ops))
	for i, op := range pl.ops {
		states[i] = op.newState()
	}
	return states
}

// runItem drives value v through states in order, honoring short-circuit
// (emit=false stops the chain for this item) and stop (the whole pipeline
// must terminate after this item). It is the per-item evaluator of the array
// kernel (Variant C), reached through applyPolicyItem and evalOne; the
// package has no separate Variant A or Variant B evaluator.
func runItem(ctx context.Context, states []opState, v any) (out any, emit bool, stop bool, err error) {
	cur := v
	stopAny := false
	for _, st := range states {
		var e, s bool
		cur, e, s, err = st.step(ctx, cur)
		if s {
			stopAny = true
		}
		if err != nil {
			return nil, false, stopAny, err
		}
		if !e {
			return nil, false, stopAny, nil
		}
	}
	return cur, true, stopAny, nil
}

// applyPolicyItem wraps runItem with an error policy, for the array kernel's
// evalOne. ok reports whether a value should be emitted; term reports whether the
// whole stream must terminate (Terminate policy, or Take exhaustion).
func applyPolicyItem[T any](ctx context.Context, states []opState, policy ErrorPolicy[T], v any) (out any, ok bool, term bool, fatal error) {
	out, emit, stop, err := runItem(ctx, states, v)
	if err == nil {
		return out, emit, stop, nil
	}
	switch policy.Kind {
	case RescueKind:
		if rv, recovered := policy.Handler(err); recovered {
			return rv, true, false, nil
		}
		return nil, false, false, nil
	case Terminate:
		return nil, false, true, err
	default: // Drop, Propagate
		return nil, false, false, nil
	}
}

// execConfig snapshots the process-wide tunables once per finalizer call.
type execConfig struct {
	fusionEnabled   bool
	unrollThreshold int
}

func currentExecConfig() execConfig {
	c := config.Get()
	return execConfig{fusionEnabled: c.FusionEnabled, unrollThreshold: c.UnrollThreshold}
}
