// Package kernel defines the contract for an external numeric kernel (a
// SIMD routine, a GPU-backed batch evaluator, a WASM sandbox). Nagare ships
// no implementation of this contract itself, only the interface, and its
// own array kernel evaluates in-process without calling through it; wiring
// a concrete kernel is left to the caller, so this package deliberately has
// no third-party dependency of its own.
package kernel

import "context"

// Kernel evaluates a named batch numeric operation over a slice of inputs,
// producing a same-length slice of outputs.
type Kernel interface {
	// Name identifies this kernel, for logging and error messages.
	Name() string
	// Supports reports whether this kernel can evaluate op.
	Supports(op string) bool
	// Eval runs op over in. Implementations must return a slice the same
	// length as in, or a non-nil error.
	Eval(ctx context.Context, op string, in []float64) ([]float64, error)
}

// ErrUnsupported is returned by a Kernel's Eval when Supports would have
// reported false for op.
type ErrUnsupported struct {
	Kernel string
	Op     string
}

func (e *ErrUnsupported) Error() string {
	return "nagare/kernel: " + e.Kernel + " does not support operation " + e.Op
}
