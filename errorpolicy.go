package nagare

// PolicyKind enumerates the error-handling strategies a pipeline can apply
// to a per-item operator fault.
type PolicyKind int

const (
	// Drop silently skips the faulting item and continues. Default.
	Drop PolicyKind = iota
	// Propagate behaves like Drop for a single item's fault but is kept
	// distinct so a future transport boundary can tell the two apart; per
	// spec.md 4.1 both Propagate and Drop "emit nothing and continue" at the
	// single-item level.
	Propagate
	// RescueKind recovers a fault via a handler; if the handler returns a
	// value, it is emitted and no further operator in the chain runs on this
	// item. (The Rescue operator in operators.go builds this policy.)
	RescueKind
	// Terminate propagates the error to the consumer and closes the stream.
	Terminate
)

// ErrorPolicy governs how a flattened pipeline reacts to an operator fault
// raised while processing a single item. The zero value is Drop.
type ErrorPolicy[T any] struct {
	Kind    PolicyKind
	Handler func(err error) (T, bool) // RescueKind only: value, recovered?
}

// DropPolicy is the default error policy.
func DropPolicy[T any]() ErrorPolicy[T] { return ErrorPolicy[T]{Kind: Drop} }

// PropagatePolicy drops a faulting item but is distinguishable from Drop.
func PropagatePolicy[T any]() ErrorPolicy[T] { return ErrorPolicy[T]{Kind: Propagate} }

// RescuePolicy recovers faults with handler.
func RescuePolicy[T any](handler func(err error) (T, bool)) ErrorPolicy[T] {
	return ErrorPolicy[T]{Kind: RescueKind, Handler: handler}
}

// TerminatePolicy closes the stream on the first fault.
func TerminatePolicy[T any]() ErrorPolicy[T] { return ErrorPolicy[T]{Kind: Terminate} }
