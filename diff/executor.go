package diff

import (
	"fmt"

	"github.com/smallnest/flowdiff/log"
	"github.com/smallnest/flowdiff/workflow"
)

// Options selects the execution policy for one diff batch.
type Options struct {
	// ContinueOnError switches from atomic (all-or-nothing) to best-effort
	// execution: failed operations are recorded and skipped while the rest
	// of the batch still applies.
	ContinueOnError bool

	// ValidateOnly runs every handler's validation and mutation against the
	// working copy but discards the resulting graph; the envelope reports
	// only whether the batch would have applied.
	ValidateOnly bool

	// Logger receives per-operation audit lines at debug level. Defaults to
	// the package-level logger.
	Logger log.Logger
}

// Result is the envelope produced by one diff execution. It is constructed
// once and never mutated after return.
type Result struct {
	// Success is true when every operation applied (or, in validate-only
	// mode, would have applied).
	Success bool `json:"success"`

	// Workflow is the resulting graph. Nil after an atomic abort and in
	// validate-only mode; in best-effort mode it carries the partially
	// mutated graph even on failure.
	Workflow *workflow.Graph `json:"workflow,omitempty"`

	// Errors lists every validation failure, keyed to the originating
	// operation's index.
	Errors []*OperationError `json:"errors,omitempty"`

	// Applied and Failed list operation indices by outcome. Populated only
	// in best-effort mode.
	Applied []int `json:"applied,omitempty"`
	Failed  []int `json:"failed,omitempty"`

	// OperationsApplied counts the operations whose effects are present in
	// Workflow.
	OperationsApplied int `json:"operationsApplied"`

	// Message is a human-readable summary.
	Message string `json:"message,omitempty"`
}

// Apply executes the ordered operation batch against a working copy of g
// and returns the result envelope. The input graph is never mutated;
// callers decide what to do with the returned one.
//
// Atomic mode (the default): the first handler failure aborts the run, the
// working copy is discarded and the envelope reports zero operations
// applied. Best-effort mode (Options.ContinueOnError): failures are
// recorded per index and the working copy keeps accumulating the successful
// operations' effects. Terminal states are always reported through the
// envelope, never raised as errors across this boundary.
func Apply(g *workflow.Graph, ops []Operation, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	working := g.Clone()
	result := &Result{}

	for i, op := range ops {
		desc, err := apply(working, op)
		if err != nil {
			opErr := toOperationError(i, op, err)
			result.Errors = append(result.Errors, opErr)
			logger.Debug("operation %d (%s) rejected: %v", i, op.Kind(), opErr.Err)

			if !opts.ContinueOnError {
				// Atomic abort: no prefix of applied operations survives,
				// so the count reported is zero regardless of progress.
				result.Success = false
				result.OperationsApplied = 0
				result.Message = fmt.Sprintf("operation %d (%s) failed: %s; no changes applied", i, op.Kind(), opErr.Message)
				return result
			}
			result.Failed = append(result.Failed, i)
			continue
		}

		if note := op.Note(); note != "" {
			logger.Debug("operation %d (%s): %s (%s)", i, op.Kind(), desc, note)
		} else {
			logger.Debug("operation %d (%s): %s", i, op.Kind(), desc)
		}
		result.OperationsApplied++
		if opts.ContinueOnError {
			result.Applied = append(result.Applied, i)
		}
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = fmt.Sprintf("%d operation(s) applied", result.OperationsApplied)
	} else {
		result.Message = fmt.Sprintf("%d operation(s) applied, %d failed", result.OperationsApplied, len(result.Failed))
	}

	if opts.ValidateOnly {
		// The mutated working copy is discarded; only the verdict survives.
		if result.Success {
			result.Message = fmt.Sprintf("%d operation(s) validated", result.OperationsApplied)
		}
		return result
	}

	result.Workflow = working
	return result
}

func toOperationError(index int, op Operation, err error) *OperationError {
	var opErr *OperationError
	if e, ok := err.(*OperationError); ok {
		opErr = e
	} else {
		opErr = newOperationError(index, op.Kind(), err)
	}
	return opErr
}
