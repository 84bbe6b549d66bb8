package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/workflow"
)

func testGraph() *workflow.Graph {
	g := workflow.New("test")
	g.Nodes["node-1"] = &workflow.Node{ID: "node-1", Name: "Webhook", Type: "n8n-nodes-base.webhook"}
	g.Nodes["node-2"] = &workflow.Node{ID: "node-2", Name: "Slack", Type: "n8n-nodes-base.slack"}
	return g
}

func TestResolveNodeByID(t *testing.T) {
	g := testGraph()

	n, err := ResolveNode(g, NodeRef{ID: "node-1"})
	require.NoError(t, err)
	assert.Equal(t, "Webhook", n.Name)
}

func TestResolveNodeByName(t *testing.T) {
	g := testGraph()

	n, err := ResolveNode(g, NodeRef{Name: "Slack"})
	require.NoError(t, err)
	assert.Equal(t, "node-2", n.ID)
}

func TestResolveNodeBareStringFallsBackToName(t *testing.T) {
	g := testGraph()

	// A bare reference populates both fields; "Webhook" is not an id, so
	// resolution falls through to the name match.
	n, err := ResolveNode(g, Ref("Webhook"))
	require.NoError(t, err)
	assert.Equal(t, "node-1", n.ID)
}

func TestResolveNodeIDSuppliedAsName(t *testing.T) {
	g := testGraph()

	// An id field holding a display name still resolves (duck-typed lookup).
	n, err := ResolveNode(g, NodeRef{ID: "Slack"})
	require.NoError(t, err)
	assert.Equal(t, "node-2", n.ID)
}

func TestResolveNodeNotFound(t *testing.T) {
	g := testGraph()

	_, err := ResolveNode(g, Ref("does-not-exist"))
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestResolveNodeAmbiguous(t *testing.T) {
	g := testGraph()

	_, err := ResolveNode(g, NodeRef{})
	assert.ErrorIs(t, err, ErrAmbiguousReference)
}

func TestResolvePortIndexDefaultsToZero(t *testing.T) {
	node := &workflow.Node{Type: "n8n-nodes-base.noOp"}

	idx, err := ResolvePortIndex(node, "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestResolvePortIndexBranch(t *testing.T) {
	node := &workflow.Node{Type: "n8n-nodes-base.if"}

	idx, err := ResolvePortIndex(node, "true", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = ResolvePortIndex(node, "false", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestResolvePortIndexInvalidBranch(t *testing.T) {
	node := &workflow.Node{Type: "n8n-nodes-base.if"}

	_, err := ResolvePortIndex(node, "maybe", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolvePortIndexCasePassthrough(t *testing.T) {
	node := &workflow.Node{Type: "n8n-nodes-base.switch"}
	caseIndex := 3

	idx, err := ResolvePortIndex(node, "", &caseIndex, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestResolvePortIndexExplicitWins(t *testing.T) {
	node := &workflow.Node{Type: "n8n-nodes-base.if"}
	explicit := 5
	caseIndex := 2

	// Explicit index beats both smart parameters.
	idx, err := ResolvePortIndex(node, "false", &caseIndex, &explicit)
	require.NoError(t, err)
	assert.Equal(t, 5, idx)
}
