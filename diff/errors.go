package diff

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a node reference matches neither an
	// id nor a display name in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrAmbiguousReference is returned when a node reference carries
	// neither an id nor a name.
	ErrAmbiguousReference = errors.New("ambiguous node reference: neither id nor name supplied")

	// ErrConnectionNotFound is returned when no connection matches the
	// operation's source/target addressing.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDuplicateNode is returned when addNode would reuse an existing
	// node name.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrInvalidPath is returned when an updateNode dot-path cannot be
	// applied to the node's parameter bag.
	ErrInvalidPath = errors.New("invalid parameter path")

	// ErrInvalidInput is returned when an operation payload is missing
	// required fields or carries values of the wrong shape.
	ErrInvalidInput = errors.New("invalid operation input")
)

// OperationError ties a structured failure to the operation that caused it.
type OperationError struct {
	// Index is the zero-based position of the failed operation in the batch.
	Index int `json:"index"`

	// Kind is the operation type discriminant.
	Kind Kind `json:"kind"`

	// Err is the underlying failure. Usually wraps one of the package
	// sentinel errors.
	Err error `json:"-"`

	// Message is the human-readable failure text, kept alongside Err so the
	// envelope survives JSON round-trips.
	Message string `json:"message"`
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s): %s", e.Index, e.Kind, e.Message)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func newOperationError(index int, kind Kind, err error) *OperationError {
	return &OperationError{
		Index:   index,
		Kind:    kind,
		Err:     err,
		Message: err.Error(),
	}
}
