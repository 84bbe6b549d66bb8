package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/backup"
	"github.com/smallnest/flowdiff/diff"
	"github.com/smallnest/flowdiff/store/memory"
	"github.com/smallnest/flowdiff/workflow"
)

func seedWorkflow(t *testing.T, s *memory.MemoryWorkflowStore) string {
	t.Helper()

	g := workflow.New("seed")
	g.Nodes["node-1"] = &workflow.Node{ID: "node-1", Name: "Webhook", Type: "n8n-nodes-base.webhook"}
	g.Nodes["node-2"] = &workflow.Node{ID: "node-2", Name: "Slack", Type: "n8n-nodes-base.slack"}
	g.Connections.Add("node-1", "main", 0, workflow.Connection{Node: "node-2", Input: "main"})

	persisted, err := s.Persist(context.Background(), g)
	require.NoError(t, err)
	return persisted.ID
}

func TestApplyDiffPersists(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	svc, err := New(Config{Store: ws, Backup: backup.NewService(backup.Options{})})
	require.NoError(t, err)

	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID: id,
		Operations: []diff.Operation{
			&diff.UpdateName{Name: "renamed"},
			&diff.DisableNode{NodeID: "node-2"},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.OperationsApplied)
	assert.NotEmpty(t, resp.BackupVersionID)

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	assert.True(t, stored.Nodes["node-2"].Disabled)
}

func TestApplyDiffAtomicFailureDoesNotPersist(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	svc, err := New(Config{Store: ws})
	require.NoError(t, err)

	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID: id,
		Operations: []diff.Operation{
			&diff.UpdateName{Name: "renamed"},
			&diff.RemoveNode{NodeID: "ghost"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Zero(t, resp.OperationsApplied)
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], diff.ErrNodeNotFound)

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "seed", stored.Name)
}

func TestApplyDiffValidateOnly(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	bk := backup.NewService(backup.Options{})
	svc, err := New(Config{Store: ws, Backup: bk})
	require.NoError(t, err)

	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID:   id,
		ValidateOnly: true,
		Operations: []diff.Operation{
			&diff.UpdateName{Name: "renamed"},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Workflow)
	// Validate-only takes no backup and persists nothing.
	assert.Empty(t, resp.BackupVersionID)

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "seed", stored.Name)
}

func TestApplyDiffStructuralValidationBlocksPersist(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	svc, err := New(Config{Store: ws})
	require.NoError(t, err)

	// Replacing connections with a dangling target passes the diff phase
	// but must be caught by whole-graph validation.
	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID: id,
		Operations: []diff.Operation{
			&diff.ReplaceConnections{Connections: workflow.ConnectionMap{
				"node-1": {"main": {{{Node: "ghost", Input: "main"}}}},
			}},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotEmpty(t, resp.ValidationErrors)
	require.NotEmpty(t, resp.Guidance)
	assert.Contains(t, resp.Message, "persistence blocked")

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Connections.Count())
	assert.NotNil(t, stored.Connections["node-1"])
}

func TestApplyDiffSkipValidationOverride(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	svc, err := New(Config{Store: ws, SkipValidation: true})
	require.NoError(t, err)

	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID: id,
		Operations: []diff.Operation{
			&diff.ReplaceConnections{Connections: workflow.ConnectionMap{
				"node-1": {"main": {{{Node: "ghost", Input: "main"}}}},
			}},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ValidationErrors)

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	found := stored.Connections.Find("node-1", "main", -1, func(c workflow.Connection) bool {
		return c.Node == "ghost"
	})
	assert.NotNil(t, found)
}

func TestApplyDiffBestEffortPersistsPartial(t *testing.T) {
	ws := memory.NewMemoryWorkflowStore()
	id := seedWorkflow(t, ws)

	svc, err := New(Config{Store: ws})
	require.NoError(t, err)

	resp, err := svc.ApplyDiff(context.Background(), Request{
		WorkflowID:      id,
		ContinueOnError: true,
		Operations: []diff.Operation{
			&diff.UpdateNode{NodeID: "node-1", Updates: map[string]any{"parameters.url": "https://a"}},
			&diff.RemoveNode{NodeID: "ghost"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, []int{0}, resp.Applied)
	assert.Equal(t, []int{1}, resp.Failed)

	stored, err := ws.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://a", stored.Nodes["node-1"].Parameters["url"])
}

func TestApplyDiffUnknownWorkflow(t *testing.T) {
	svc, err := New(Config{Store: memory.NewMemoryWorkflowStore()})
	require.NoError(t, err)

	_, err = svc.ApplyDiff(context.Background(), Request{WorkflowID: "nope"})
	assert.ErrorIs(t, err, ErrRemoteStore)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrRemoteStore))
}
