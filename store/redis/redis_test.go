package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

func TestRedisWorkflowStore(t *testing.T) {
	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisWorkflowStore(RedisOptions{
		Addr: mr.Addr(),
	})

	ctx := context.Background()

	g := workflow.New("demo")
	g.ID = "wf-1"
	g.Nodes["a"] = &workflow.Node{ID: "a", Name: "A", Type: "n8n-nodes-base.webhook"}
	g.Connections.Add("a", "main", 0, workflow.Connection{Node: "a", Input: "main"})

	// Test Persist
	persisted, err := s.Persist(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", persisted.ID)
	assert.False(t, persisted.UpdatedAt.IsZero())

	// Test Fetch
	fetched, err := s.Fetch(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "demo", fetched.Name)
	assert.Equal(t, 1, fetched.Connections.Count())

	// Test List
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-1"}, ids)

	// Test Delete
	require.NoError(t, s.Delete(ctx, "wf-1"))
	_, err = s.Fetch(ctx, "wf-1")
	assert.ErrorIs(t, err, store.ErrWorkflowNotFound)

	ids, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisWorkflowStoreDeleteMissing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisWorkflowStore(RedisOptions{Addr: mr.Addr()})

	err = s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrWorkflowNotFound)
}
