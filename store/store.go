package store

import (
	"context"
	"errors"

	"github.com/smallnest/flowdiff/workflow"
)

// ErrWorkflowNotFound is returned by Fetch and Delete when no workflow with
// the given id exists.
var ErrWorkflowNotFound = errors.New("workflow not found")

// WorkflowStore defines the interface for workflow persistence. The diff
// engine itself never touches a store; the service layer fetches before and
// persists after the synchronous diff-application phase.
type WorkflowStore interface {
	// Fetch retrieves a workflow by id.
	Fetch(ctx context.Context, id string) (*workflow.Graph, error)

	// Persist stores the workflow and returns the canonicalized result
	// (assigned id, updated timestamp).
	Persist(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error)

	// Delete removes a workflow.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored workflows.
	List(ctx context.Context) ([]string, error)
}
