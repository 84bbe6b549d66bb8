package backup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/workflow"
)

func TestSnapshotNumbersVersions(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()

	g := workflow.New("demo")
	g.ID = "wf-1"

	first, err := svc.Snapshot(ctx, "wf-1", g, "applyDiff", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, first.VersionID)
	assert.Equal(t, 1, first.VersionNumber)
	assert.Zero(t, first.Pruned)

	second, err := svc.Snapshot(ctx, "wf-1", g, "applyDiff", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.VersionNumber)
	assert.NotEqual(t, first.VersionID, second.VersionID)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	vs := NewMemoryVersionStore()
	svc := NewService(Options{Store: vs})
	ctx := context.Background()

	g := workflow.New("demo")
	g.ID = "wf-1"
	g.Nodes["a"] = &workflow.Node{ID: "a", Name: "A", Type: "t"}

	_, err := svc.Snapshot(ctx, "wf-1", g, "applyDiff", 0)
	require.NoError(t, err)

	g.Nodes["a"].Name = "mutated"

	versions, err := vs.ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "A", versions[0].Graph.Nodes["a"].Name)
	assert.Equal(t, "applyDiff", versions[0].Trigger)
}

func TestSnapshotPrunesHistory(t *testing.T) {
	vs := NewMemoryVersionStore()
	svc := NewService(Options{Store: vs, MaxVersions: 2})
	ctx := context.Background()

	g := workflow.New("demo")
	g.ID = "wf-1"

	for i := 0; i < 3; i++ {
		_, err := svc.Snapshot(ctx, "wf-1", g, "applyDiff", i)
		require.NoError(t, err)
	}

	versions, err := vs.ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	// The oldest version was pruned; numbering keeps increasing.
	assert.Equal(t, 2, versions[0].Number)
	assert.Equal(t, 3, versions[1].Number)
}

func TestSnapshotSeparatesWorkflows(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()

	g := workflow.New("demo")

	a, err := svc.Snapshot(ctx, "wf-a", g, "applyDiff", 0)
	require.NoError(t, err)
	b, err := svc.Snapshot(ctx, "wf-b", g, "applyDiff", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, a.VersionNumber)
	assert.Equal(t, 1, b.VersionNumber)
}
