package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalOperations(t *testing.T) {
	payload := `[
		{"type": "addNode", "name": "Webhook", "nodeType": "n8n-nodes-base.webhook", "position": [100, 200], "description": "entry point"},
		{"type": "addConnection", "source": "Webhook", "target": {"id": "node-2"}, "branch": "false"},
		{"type": "cleanStaleConnections", "dryRun": true}
	]`

	ops, err := UnmarshalOperations([]byte(payload))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	add, ok := ops[0].(*AddNode)
	require.True(t, ok)
	assert.Equal(t, "Webhook", add.Name)
	assert.Equal(t, "n8n-nodes-base.webhook", add.Type)
	assert.Equal(t, [2]float64{100, 200}, add.Position)
	assert.Equal(t, "entry point", add.Note())

	conn, ok := ops[1].(*AddConnection)
	require.True(t, ok)
	// Bare string references populate both id and name.
	assert.Equal(t, NodeRef{ID: "Webhook", Name: "Webhook"}, conn.Source)
	assert.Equal(t, NodeRef{ID: "node-2"}, conn.Target)
	assert.Equal(t, "false", conn.Branch)

	clean, ok := ops[2].(*CleanStaleConnections)
	require.True(t, ok)
	assert.True(t, clean.DryRun)
}

func TestUnmarshalOperationUnknownType(t *testing.T) {
	_, err := UnmarshalOperation([]byte(`{"type": "teleportNode"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnmarshalOperationsBadElement(t *testing.T) {
	_, err := UnmarshalOperations([]byte(`[{"type": "addNode"}, {"type": ""}]`))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "operation 1")
}

func TestMarshalOperationRoundTrip(t *testing.T) {
	idx := 1
	op := &RemoveConnection{
		Source:       Ref("A"),
		Target:       Ref("B"),
		SourceIndex:  &idx,
		IgnoreErrors: true,
	}

	data, err := MarshalOperation(op)
	require.NoError(t, err)

	decoded, err := UnmarshalOperation(data)
	require.NoError(t, err)

	got, ok := decoded.(*RemoveConnection)
	require.True(t, ok)
	assert.Equal(t, op.Source, got.Source)
	assert.Equal(t, op.Target, got.Target)
	require.NotNil(t, got.SourceIndex)
	assert.Equal(t, 1, *got.SourceIndex)
	assert.True(t, got.IgnoreErrors)
}
