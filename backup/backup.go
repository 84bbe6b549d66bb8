package backup

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/flowdiff/log"
	"github.com/smallnest/flowdiff/workflow"
)

// ErrVersionNotFound is returned when no version with the given id exists.
var ErrVersionNotFound = errors.New("version not found")

// Version is one snapshot of a workflow taken before a mutation.
type Version struct {
	// ID is the unique version identifier.
	ID string `json:"id"`

	// Number increases monotonically per workflow, starting at 1.
	Number int `json:"number"`

	// WorkflowID identifies the snapshotted workflow.
	WorkflowID string `json:"workflowId"`

	// Graph is the deep-copied workflow state at snapshot time.
	Graph *workflow.Graph `json:"graph"`

	// Trigger records what caused the snapshot, e.g. "applyDiff".
	Trigger string `json:"trigger"`

	// Operations is the size of the diff batch about to be applied.
	Operations int `json:"operations"`

	// CreatedAt is the snapshot timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// VersionStore defines the interface for version history persistence.
type VersionStore interface {
	// Append stores a new version.
	Append(ctx context.Context, v *Version) error

	// ListByWorkflow returns a workflow's versions ordered by number.
	ListByWorkflow(ctx context.Context, workflowID string) ([]*Version, error)

	// Delete removes a version.
	Delete(ctx context.Context, versionID string) error
}

// MemoryVersionStore implements VersionStore in process memory.
type MemoryVersionStore struct {
	mu       sync.RWMutex
	versions map[string]*Version
}

var _ VersionStore = (*MemoryVersionStore)(nil)

// NewMemoryVersionStore creates a new in-memory version store.
func NewMemoryVersionStore() *MemoryVersionStore {
	return &MemoryVersionStore{
		versions: make(map[string]*Version),
	}
}

// Append stores a new version.
func (s *MemoryVersionStore) Append(ctx context.Context, v *Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.ID] = v
	return nil
}

// ListByWorkflow returns a workflow's versions ordered by number.
func (s *MemoryVersionStore) ListByWorkflow(ctx context.Context, workflowID string) ([]*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var versions []*Version
	for _, v := range s.versions {
		if v.WorkflowID == workflowID {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Number < versions[j].Number })
	return versions, nil
}

// Delete removes a version.
func (s *MemoryVersionStore) Delete(ctx context.Context, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.versions[versionID]; !ok {
		return ErrVersionNotFound
	}
	delete(s.versions, versionID)
	return nil
}

// Snapshot is the report returned after taking a backup.
type Snapshot struct {
	// VersionID is the id of the version just taken.
	VersionID string `json:"versionId"`

	// VersionNumber is its per-workflow sequence number.
	VersionNumber int `json:"versionNumber"`

	// Pruned counts the old versions removed to honor MaxVersions.
	Pruned int `json:"pruned"`
}

// Service takes pre-mutation snapshots of workflows and prunes history.
type Service struct {
	store       VersionStore
	maxVersions int
	logger      log.Logger
}

// Options configures the backup service.
type Options struct {
	// Store is the version history backend. Defaults to an in-memory store.
	Store VersionStore

	// MaxVersions caps the retained history per workflow; older versions
	// are pruned after each snapshot. Zero means unlimited.
	MaxVersions int

	// Logger receives prune reports. Defaults to the package-level logger.
	Logger log.Logger
}

// NewService creates a backup service.
func NewService(opts Options) *Service {
	s := &Service{
		store:       opts.Store,
		maxVersions: opts.MaxVersions,
		logger:      opts.Logger,
	}
	if s.store == nil {
		s.store = NewMemoryVersionStore()
	}
	if s.logger == nil {
		s.logger = log.GetDefaultLogger()
	}
	return s
}

// Snapshot stores a deep copy of the workflow as a new version and prunes
// history beyond the configured cap.
func (s *Service) Snapshot(ctx context.Context, workflowID string, g *workflow.Graph, trigger string, operations int) (*Snapshot, error) {
	existing, err := s.store.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	number := 1
	if len(existing) > 0 {
		number = existing[len(existing)-1].Number + 1
	}

	v := &Version{
		ID:         uuid.NewString(),
		Number:     number,
		WorkflowID: workflowID,
		Graph:      g.Clone(),
		Trigger:    trigger,
		Operations: operations,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Append(ctx, v); err != nil {
		return nil, err
	}

	pruned := 0
	if s.maxVersions > 0 {
		total := len(existing) + 1
		for i := 0; total-i > s.maxVersions && i < len(existing); i++ {
			if err := s.store.Delete(ctx, existing[i].ID); err != nil {
				s.logger.Warn("failed to prune version %s of workflow %s: %v", existing[i].ID, workflowID, err)
				continue
			}
			pruned++
		}
		if pruned > 0 {
			s.logger.Debug("pruned %d version(s) of workflow %s", pruned, workflowID)
		}
	}

	return &Snapshot{
		VersionID:     v.ID,
		VersionNumber: v.Number,
		Pruned:        pruned,
	}, nil
}
