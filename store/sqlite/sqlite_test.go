package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

func newTestStore(t *testing.T) *SqliteWorkflowStore {
	t.Helper()
	s, err := NewSqliteWorkflowStore(SqliteOptions{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteWorkflowStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := workflow.New("demo")
	g.Nodes["a"] = &workflow.Node{ID: "a", Name: "A", Type: "n8n-nodes-base.webhook"}
	g.Settings = map[string]any{"timezone": "UTC"}
	g.Tags = []string{"prod"}

	persisted, err := s.Persist(ctx, g)
	require.NoError(t, err)
	require.NotEmpty(t, persisted.ID)

	fetched, err := s.Fetch(ctx, persisted.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", fetched.Name)
	assert.Equal(t, "UTC", fetched.Settings["timezone"])
	assert.Equal(t, []string{"prod"}, fetched.Tags)

	// Upsert on the same id.
	fetched.Name = "renamed"
	_, err = s.Persist(ctx, fetched)
	require.NoError(t, err)

	again, err := s.Fetch(ctx, persisted.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Name)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{persisted.ID}, ids)

	require.NoError(t, s.Delete(ctx, persisted.ID))
	_, err = s.Fetch(ctx, persisted.ID)
	assert.ErrorIs(t, err, store.ErrWorkflowNotFound)
}

func TestSqliteWorkflowStoreFetchMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrWorkflowNotFound)
}
