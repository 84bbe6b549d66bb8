package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

// MemoryWorkflowStore implements store.WorkflowStore in process memory.
// Workflows are deep-copied on the way in and out so callers never share
// state with the store.
type MemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]*workflow.Graph
}

var _ store.WorkflowStore = (*MemoryWorkflowStore)(nil)

// NewMemoryWorkflowStore creates a new in-memory workflow store.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: make(map[string]*workflow.Graph),
	}
}

// Fetch retrieves a workflow by id.
func (s *MemoryWorkflowStore) Fetch(ctx context.Context, id string) (*workflow.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
	}
	return g.Clone(), nil
}

// Persist stores the workflow, assigning an id if empty and stamping
// UpdatedAt, and returns the canonicalized copy.
func (s *MemoryWorkflowStore) Persist(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := g.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()
	s.workflows[stored.ID] = stored
	return stored.Clone(), nil
}

// Delete removes a workflow.
func (s *MemoryWorkflowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
	}
	delete(s.workflows, id)
	return nil
}

// List returns the ids of all stored workflows.
func (s *MemoryWorkflowStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.workflows))
	for id := range s.workflows {
		ids = append(ids, id)
	}
	return ids, nil
}
