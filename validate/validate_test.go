package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/flowdiff/workflow"
)

func validGraph() *workflow.Graph {
	g := workflow.New("valid")
	g.Nodes["a"] = &workflow.Node{ID: "a", Name: "A", Type: "n8n-nodes-base.webhook"}
	g.Nodes["b"] = &workflow.Node{ID: "b", Name: "B", Type: "n8n-nodes-base.noOp"}
	g.Connections.Add("a", "main", 0, workflow.Connection{Node: "b", Input: "main"})
	return g
}

func TestGraphValid(t *testing.T) {
	assert.Empty(t, Graph(validGraph()))
}

func TestGraphDanglingEndpoints(t *testing.T) {
	g := validGraph()
	g.Connections.Add("a", "main", 0, workflow.Connection{Node: "ghost", Input: "main"})
	g.Connections.Add("gone", "main", 0, workflow.Connection{Node: "b", Input: "main"})

	errs := Graph(g)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0]+errs[1], `source "gone"`)
	assert.Contains(t, errs[0]+errs[1], `target "ghost"`)
}

func TestGraphMissingTypeAndDuplicateName(t *testing.T) {
	g := validGraph()
	g.Nodes["c"] = &workflow.Node{ID: "c", Name: "A"}

	errs := Graph(g)
	require.Len(t, errs, 2)
	joined := errs[0] + errs[1]
	assert.Contains(t, joined, "has no type")
	assert.Contains(t, joined, "duplicate node name")
}

func TestGraphBranchOverflow(t *testing.T) {
	g := validGraph()
	g.Nodes["if"] = &workflow.Node{ID: "if", Name: "IF", Type: "n8n-nodes-base.if"}
	g.Connections.Add("if", "main", 2, workflow.Connection{Node: "b", Input: "main"})

	errs := Graph(g)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "branch output 2")
}

func TestGraphNegativeInputIndex(t *testing.T) {
	g := validGraph()
	g.Connections.Add("a", "main", 0, workflow.Connection{Node: "b", Input: "main", Index: -1})

	errs := Graph(g)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "negative input index")
}

func TestClassifyCategories(t *testing.T) {
	guidance := Classify([]string{
		`connection target "ghost" does not exist (from a[main:0])`,
		`node "X" has no type`,
		`branch output 2 on node "IF" exceeds the true/false outputs`,
		`duplicate node name "A" used by 2 nodes`,
	})
	require.Len(t, guidance, 4)
	assert.Equal(t, CategoryConnection, guidance[0].Category)
	assert.Equal(t, CategoryMissingMetadata, guidance[1].Category)
	assert.Equal(t, CategoryBranchMismatch, guidance[2].Category)
	assert.Equal(t, CategoryOperatorStructure, guidance[3].Category)

	for _, g := range guidance {
		assert.NotEmpty(t, g.Hint)
	}
}
