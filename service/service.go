package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallnest/flowdiff/backup"
	"github.com/smallnest/flowdiff/diff"
	"github.com/smallnest/flowdiff/log"
	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/validate"
	"github.com/smallnest/flowdiff/workflow"
)

var (
	// ErrRemoteStore wraps workflow store failures surfaced to the caller.
	ErrRemoteStore = errors.New("workflow store error")

	// ErrStructuralValidation marks a committed diff whose resulting graph
	// failed whole-graph validation; persistence was blocked.
	ErrStructuralValidation = errors.New("structural validation failed")
)

// Config wires the collaborators around the diff engine. Behavior toggles
// such as the validation-skip override are explicit configuration rather
// than process environment lookups.
type Config struct {
	// Store is the workflow persistence backend. Required.
	Store store.WorkflowStore

	// Backup takes pre-mutation snapshots. Optional; nil disables backups.
	Backup *backup.Service

	// SkipValidation is the operator override that lets a structurally
	// invalid graph persist anyway.
	SkipValidation bool

	// Logger defaults to the package-level logger.
	Logger log.Logger
}

// Request is one diff-application request against a stored workflow.
type Request struct {
	// WorkflowID identifies the workflow to edit.
	WorkflowID string `json:"workflowId"`

	// Operations is the ordered diff batch.
	Operations []diff.Operation `json:"operations"`

	// ValidateOnly checks the batch without persisting anything.
	ValidateOnly bool `json:"validateOnly,omitempty"`

	// ContinueOnError selects best-effort instead of atomic execution.
	ContinueOnError bool `json:"continueOnError,omitempty"`

	// SkipBackup suppresses the pre-mutation snapshot for this request.
	SkipBackup bool `json:"skipBackup,omitempty"`
}

// Response is the tool-facing envelope for one request.
type Response struct {
	Success           bool                   `json:"success"`
	Message           string                 `json:"message,omitempty"`
	Workflow          *workflow.Graph        `json:"workflow,omitempty"`
	Errors            []*diff.OperationError `json:"errors,omitempty"`
	Applied           []int                  `json:"applied,omitempty"`
	Failed            []int                  `json:"failed,omitempty"`
	OperationsApplied int                    `json:"operationsApplied"`

	// ValidationErrors and Guidance are set when the post-diff structural
	// validation failed.
	ValidationErrors []string            `json:"validationErrors,omitempty"`
	Guidance         []validate.Guidance `json:"guidance,omitempty"`

	// BackupVersionID records the snapshot taken before mutation, if any.
	BackupVersionID string `json:"backupVersionId,omitempty"`
}

// Service composes the diff engine with its collaborators: workflow store,
// backup service and structural validator.
type Service struct {
	cfg    Config
	logger log.Logger
}

// New creates a diff-application service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("service: Config.Store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Service{cfg: cfg, logger: logger}, nil
}

// ApplyDiff fetches the workflow, snapshots it, runs the diff batch,
// validates the resulting structure and persists it. The returned error is
// non-nil only for collaborator failures (fetch/persist); every
// diff-or-validation outcome is reported through the Response.
func (s *Service) ApplyDiff(ctx context.Context, req Request) (*Response, error) {
	graph, err := s.cfg.Store.Fetch(ctx, req.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %q: %v", ErrRemoteStore, req.WorkflowID, err)
	}
	s.logger.Debug("fetched workflow %q (%d nodes, %d connections)",
		req.WorkflowID, len(graph.Nodes), graph.Connections.Count())

	resp := &Response{}

	// Snapshot before mutation. Failure is logged and execution proceeds.
	if s.cfg.Backup != nil && !req.SkipBackup && !req.ValidateOnly {
		snap, err := s.cfg.Backup.Snapshot(ctx, req.WorkflowID, graph, "applyDiff", len(req.Operations))
		if err != nil {
			s.logger.Warn("backup of workflow %q failed, continuing: %v", req.WorkflowID, err)
		} else {
			resp.BackupVersionID = snap.VersionID
			s.logger.Debug("backed up workflow %q as version %d", req.WorkflowID, snap.VersionNumber)
		}
	}

	result := diff.Apply(graph, req.Operations, diff.Options{
		ContinueOnError: req.ContinueOnError,
		ValidateOnly:    req.ValidateOnly,
		Logger:          s.logger,
	})
	resp.Success = result.Success
	resp.Message = result.Message
	resp.Errors = result.Errors
	resp.Applied = result.Applied
	resp.Failed = result.Failed
	resp.OperationsApplied = result.OperationsApplied

	if req.ValidateOnly {
		return resp, nil
	}
	if result.Workflow == nil || result.OperationsApplied == 0 && !result.Success {
		// Atomic abort: nothing to validate or persist.
		return resp, nil
	}

	validationErrs := validate.Graph(result.Workflow)
	if len(validationErrs) > 0 {
		resp.ValidationErrors = validationErrs
		resp.Guidance = validate.Classify(validationErrs)
		if !s.cfg.SkipValidation {
			resp.Success = false
			resp.Message = fmt.Sprintf("%s; %s: %d error(s), persistence blocked",
				result.Message, ErrStructuralValidation, len(validationErrs))
			resp.Workflow = result.Workflow
			return resp, nil
		}
		s.logger.Warn("persisting workflow %q despite %d structural error(s) (validation skipped)",
			req.WorkflowID, len(validationErrs))
	}

	persisted, err := s.cfg.Store.Persist(ctx, result.Workflow)
	if err != nil {
		return nil, fmt.Errorf("%w: persist %q: %v", ErrRemoteStore, req.WorkflowID, err)
	}
	resp.Workflow = persisted
	s.logger.Info("applied %d operation(s) to workflow %q", result.OperationsApplied, req.WorkflowID)
	return resp, nil
}
