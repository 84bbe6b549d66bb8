package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/smallnest/flowdiff/workflow"
)

// handlerFunc validates one operation against the current graph state and,
// if valid, mutates the graph. It returns a human-readable description of
// the change for audit logging. A handler either fully applies or fully
// rejects its operation; partial mutation on failure is never observable.
type handlerFunc func(g *workflow.Graph, op Operation) (string, error)

// handlers maps each operation kind to its handler. Closed set: extend it
// together with the Operation variants in operation.go.
var handlers = map[Kind]handlerFunc{
	KindAddNode:               applyAddNode,
	KindRemoveNode:            applyRemoveNode,
	KindUpdateNode:            applyUpdateNode,
	KindMoveNode:              applyMoveNode,
	KindEnableNode:            applyEnableNode,
	KindDisableNode:           applyDisableNode,
	KindAddConnection:         applyAddConnection,
	KindRemoveConnection:      applyRemoveConnection,
	KindRewireConnection:      applyRewireConnection,
	KindUpdateSettings:        applyUpdateSettings,
	KindUpdateName:            applyUpdateName,
	KindAddTag:                applyAddTag,
	KindRemoveTag:             applyRemoveTag,
	KindCleanStaleConnections: applyCleanStaleConnections,
	KindReplaceConnections:    applyReplaceConnections,
}

// apply is the single operation-application primitive shared by every
// execution policy.
func apply(g *workflow.Graph, op Operation) (string, error) {
	h, ok := handlers[op.Kind()]
	if !ok {
		return "", fmt.Errorf("%w: no handler for operation type %q", ErrInvalidInput, op.Kind())
	}
	return h(g, op)
}

func applyAddNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*AddNode)
	if op.Name == "" {
		return "", fmt.Errorf("%w: addNode requires a name", ErrInvalidInput)
	}
	if op.Type == "" {
		return "", fmt.Errorf("%w: addNode requires a type", ErrInvalidInput)
	}
	if g.NodeByName(op.Name) != nil {
		return "", fmt.Errorf("%w: name %q already in use", ErrDuplicateNode, op.Name)
	}
	id := op.NodeID
	if id == "" {
		id = uuid.NewString()
	} else if g.NodeByID(id) != nil {
		return "", fmt.Errorf("%w: id %q already in use", ErrDuplicateNode, id)
	}
	g.Nodes[id] = &workflow.Node{
		ID:         id,
		Name:       op.Name,
		Type:       op.Type,
		Position:   op.Position,
		Parameters: op.Parameters,
	}
	return fmt.Sprintf("added node %q (%s)", op.Name, id), nil
}

func applyRemoveNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*RemoveNode)
	node, err := ResolveNode(g, NodeRef{ID: op.NodeID, Name: op.NodeName})
	if err != nil {
		return "", err
	}
	delete(g.Nodes, node.ID)
	removed := g.Connections.RemoveNode(node.ID)
	return fmt.Sprintf("removed node %q and %d connection(s)", node.Name, len(removed)), nil
}

func applyUpdateNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*UpdateNode)
	node, err := ResolveNode(g, NodeRef{ID: op.NodeID, Name: op.NodeName})
	if err != nil {
		return "", err
	}

	// Stage the merge on a copy of the bag so a bad path mid-batch leaves
	// the node untouched. Paths are applied in sorted order so that
	// overlapping updates resolve deterministically.
	staged := node.Clone()
	paths := make([]string, 0, len(op.Updates))
	for path := range op.Updates {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := staged.SetParameter(path, op.Updates[path]); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
	}
	node.Parameters = staged.Parameters
	return fmt.Sprintf("updated %d parameter(s) on node %q", len(paths), node.Name), nil
}

func applyMoveNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*MoveNode)
	node, err := ResolveNode(g, NodeRef{ID: op.NodeID, Name: op.NodeName})
	if err != nil {
		return "", err
	}
	node.Position = op.Position
	return fmt.Sprintf("moved node %q to [%g, %g]", node.Name, op.Position[0], op.Position[1]), nil
}

func applyEnableNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*EnableNode)
	node, err := ResolveNode(g, NodeRef{ID: op.NodeID, Name: op.NodeName})
	if err != nil {
		return "", err
	}
	node.Disabled = false
	return fmt.Sprintf("enabled node %q", node.Name), nil
}

func applyDisableNode(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*DisableNode)
	node, err := ResolveNode(g, NodeRef{ID: op.NodeID, Name: op.NodeName})
	if err != nil {
		return "", err
	}
	node.Disabled = true
	return fmt.Sprintf("disabled node %q", node.Name), nil
}

func applyAddConnection(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*AddConnection)
	source, err := ResolveNode(g, op.Source)
	if err != nil {
		return "", err
	}
	target, err := ResolveNode(g, op.Target)
	if err != nil {
		return "", err
	}

	sourceIndex, err := ResolvePortIndex(source, op.Branch, op.Case, op.SourceIndex)
	if err != nil {
		return "", err
	}
	targetIndex := 0
	if op.TargetIndex != nil {
		targetIndex = *op.TargetIndex
	}
	if sourceIndex < 0 || targetIndex < 0 {
		return "", fmt.Errorf("%w: connection indices must not be negative", ErrInvalidInput)
	}

	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = workflow.DefaultPort
	}
	targetInput := op.TargetInput
	if targetInput == "" {
		targetInput = workflow.DefaultPort
	}

	g.Connections.Add(source.ID, sourceOutput, sourceIndex, workflow.Connection{
		Node:  target.ID,
		Input: targetInput,
		Index: targetIndex,
	})
	return fmt.Sprintf("connected %q[%s:%d] -> %q[%s:%d]",
		source.Name, sourceOutput, sourceIndex, target.Name, targetInput, targetIndex), nil
}

func applyRemoveConnection(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*RemoveConnection)
	source, err := ResolveNode(g, op.Source)
	if err != nil {
		if op.IgnoreErrors {
			return fmt.Sprintf("no connection removed (%v, ignored)", err), nil
		}
		return "", err
	}
	target, err := ResolveNode(g, op.Target)
	if err != nil {
		if op.IgnoreErrors {
			return fmt.Sprintf("no connection removed (%v, ignored)", err), nil
		}
		return "", err
	}

	sourceIndex, err := matchIndex(source, op.Branch, op.Case, op.SourceIndex)
	if err != nil {
		return "", err
	}
	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = workflow.DefaultPort
	}

	removed := g.Connections.Remove(source.ID, sourceOutput, sourceIndex, func(c workflow.Connection) bool {
		if c.Node != target.ID {
			return false
		}
		if op.TargetInput != "" && c.Input != op.TargetInput {
			return false
		}
		if op.TargetIndex != nil && c.Index != *op.TargetIndex {
			return false
		}
		return true
	})
	if !removed {
		if op.IgnoreErrors {
			return "no matching connection (ignored)", nil
		}
		return "", fmt.Errorf("%w: %q -> %q", ErrConnectionNotFound, source.Name, target.Name)
	}
	return fmt.Sprintf("removed connection %q -> %q", source.Name, target.Name), nil
}

func applyRewireConnection(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*RewireConnection)
	source, err := ResolveNode(g, op.Source)
	if err != nil {
		return "", err
	}
	to, err := ResolveNode(g, op.To)
	if err != nil {
		return "", err
	}
	// An unresolvable "from" node means the required source -> from
	// connection cannot exist.
	from, err := ResolveNode(g, op.From)
	if err != nil {
		return "", fmt.Errorf("%w: %q -> %q", ErrConnectionNotFound, op.Source, op.From)
	}

	sourceIndex, err := matchIndex(source, op.Branch, op.Case, op.SourceIndex)
	if err != nil {
		return "", err
	}
	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = workflow.DefaultPort
	}

	conn := g.Connections.Find(source.ID, sourceOutput, sourceIndex, func(c workflow.Connection) bool {
		return c.Node == from.ID
	})
	if conn == nil {
		return "", fmt.Errorf("%w: %q -> %q", ErrConnectionNotFound, source.Name, from.Name)
	}
	conn.Node = to.ID
	return fmt.Sprintf("rewired %q -> %q to %q -> %q", source.Name, from.Name, source.Name, to.Name), nil
}

func applyUpdateSettings(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*UpdateSettings)
	g.MergeSettings(op.Settings)
	return fmt.Sprintf("merged %d setting(s)", len(op.Settings)), nil
}

func applyUpdateName(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*UpdateName)
	if op.Name == "" {
		return "", fmt.Errorf("%w: updateName requires a non-empty name", ErrInvalidInput)
	}
	g.Name = op.Name
	return fmt.Sprintf("renamed workflow to %q", op.Name), nil
}

func applyAddTag(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*AddTag)
	if op.Tag == "" {
		return "", fmt.Errorf("%w: addTag requires a non-empty tag", ErrInvalidInput)
	}
	g.AddTag(op.Tag)
	return fmt.Sprintf("added tag %q", op.Tag), nil
}

func applyRemoveTag(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*RemoveTag)
	if op.Tag == "" {
		return "", fmt.Errorf("%w: removeTag requires a non-empty tag", ErrInvalidInput)
	}
	g.RemoveTag(op.Tag)
	return fmt.Sprintf("removed tag %q", op.Tag), nil
}

func applyCleanStaleConnections(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*CleanStaleConnections)
	var stale []workflow.Edge
	if op.DryRun {
		stale = g.Connections.Stale(g.Nodes)
	} else {
		stale = g.Connections.RemoveStale(g.Nodes)
	}
	if len(stale) == 0 {
		return "no stale connections", nil
	}
	pairs := make([]string, len(stale))
	for i, e := range stale {
		pairs[i] = fmt.Sprintf("%s->%s", e.From, e.To)
	}
	verb := "removed"
	if op.DryRun {
		verb = "would remove"
	}
	return fmt.Sprintf("%s %d stale connection(s): %s", verb, len(stale), strings.Join(pairs, ", ")), nil
}

func applyReplaceConnections(g *workflow.Graph, operation Operation) (string, error) {
	op := operation.(*ReplaceConnections)
	if op.Connections == nil {
		return "", fmt.Errorf("%w: replaceConnections requires a connections object", ErrInvalidInput)
	}
	// Node existence inside the supplied structure is deliberately not
	// checked here; that is the structural validator's job.
	g.Connections = op.Connections.Clone()
	return fmt.Sprintf("replaced connection structure (%d connection(s))", g.Connections.Count()), nil
}

// matchIndex resolves the source output index used to match an existing
// connection. Unlike creation, matching with no explicit index and no smart
// parameter searches every slot (-1) so that an unaddressed remove/rewire
// finds the connection wherever it lives.
func matchIndex(node *workflow.Node, branch string, caseIndex *int, explicit *int) (int, error) {
	if explicit == nil && branch == "" && caseIndex == nil {
		return -1, nil
	}
	idx, err := ResolvePortIndex(node, branch, caseIndex, explicit)
	if err != nil {
		return 0, err
	}
	// A caller-supplied negative index would otherwise collide with the
	// internal match-any sentinel above.
	if idx < 0 {
		return 0, fmt.Errorf("%w: source index must not be negative", ErrInvalidInput)
	}
	return idx, nil
}
