package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smallnest/flowdiff/workflow"
)

// Graph runs the whole-graph structural checks and returns one message per
// defect found, in a stable order. An empty result means the graph is
// structurally sound.
//
// Checks: every connection endpoint must reference an existing node; port
// indices must not be negative; node types must be set; boolean-branch
// nodes must not wire outputs beyond their two branches; duplicate display
// names are reported since operations resolve nodes by name.
func Graph(g *workflow.Graph) []string {
	var errs []string

	byName := make(map[string][]string)
	for id, node := range g.Nodes {
		if node.Type == "" {
			errs = append(errs, fmt.Sprintf("node %q has no type", node.Name))
		}
		byName[node.Name] = append(byName[node.Name], id)
	}
	for name, ids := range byName {
		if len(ids) > 1 {
			errs = append(errs, fmt.Sprintf("duplicate node name %q used by %d nodes", name, len(ids)))
		}
	}

	for source, outputs := range g.Connections {
		sourceNode, sourceOK := g.Nodes[source]
		if !sourceOK {
			errs = append(errs, fmt.Sprintf("connection source %q does not exist", source))
		}
		for output, slots := range outputs {
			for i, slot := range slots {
				if sourceOK && isBranchType(sourceNode.Type) && i > 1 {
					errs = append(errs, fmt.Sprintf("branch output %d on node %q exceeds the true/false outputs", i, sourceNode.Name))
				}
				for _, conn := range slot {
					if conn.Index < 0 {
						errs = append(errs, fmt.Sprintf("connection %s[%s:%d] -> %s has negative input index", source, output, i, conn.Node))
					}
					if _, ok := g.Nodes[conn.Node]; !ok {
						errs = append(errs, fmt.Sprintf("connection target %q does not exist (from %s[%s:%d])", conn.Node, source, output, i))
					}
				}
			}
		}
	}

	sort.Strings(errs)
	return errs
}

// isBranchType reports whether the node type follows the two-output
// boolean-branch convention.
func isBranchType(nodeType string) bool {
	t := strings.ToLower(nodeType)
	return strings.HasSuffix(t, ".if") || strings.HasSuffix(t, ".filter")
}
