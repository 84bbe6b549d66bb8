package diff

import (
	"fmt"
	"strings"

	"github.com/smallnest/flowdiff/workflow"
)

// ResolveNode resolves a node reference against the graph. Lookup order:
// id match on ref.ID, exact name match on ref.Name, then exact name match
// on ref.ID (covers bare strings supplied as id-or-name). An empty ref
// fails with ErrAmbiguousReference; no match fails with ErrNodeNotFound.
func ResolveNode(g *workflow.Graph, ref NodeRef) (*workflow.Node, error) {
	if ref.IsZero() {
		return nil, ErrAmbiguousReference
	}
	if ref.ID != "" {
		if n := g.NodeByID(ref.ID); n != nil {
			return n, nil
		}
	}
	if ref.Name != "" {
		if n := g.NodeByName(ref.Name); n != nil {
			return n, nil
		}
	}
	if ref.ID != "" && ref.ID != ref.Name {
		if n := g.NodeByName(ref.ID); n != nil {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, ref)
}

// ResolvePortIndex resolves a source output index for a connection
// operation. Precedence: explicit index > smart parameter > 0.
//
// Smart mapping follows the boolean-branch port convention: branch "true"
// resolves to output 0 and branch "false" to output 1; a case value passes
// through directly for multi-output selector nodes. Smart parameters on a
// single-output node type are not an error; the resolved index is only
// bounds-checked by the connection handlers.
func ResolvePortIndex(node *workflow.Node, branch string, caseIndex *int, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if branch != "" {
		switch strings.ToLower(branch) {
		case "true":
			return 0, nil
		case "false":
			return 1, nil
		default:
			return 0, fmt.Errorf("%w: branch must be \"true\" or \"false\", got %q", ErrInvalidInput, branch)
		}
	}
	if caseIndex != nil {
		return *caseIndex, nil
	}
	return 0, nil
}
