// Package diff implements the workflow diff-application engine: an
// interpreter over an ordered batch of structural edit operations applied
// to a workflow graph.
//
// # Operations
//
// Operation is a closed tagged union of 15 instruction kinds covering node
// edits (addNode, removeNode, updateNode, moveNode, enableNode,
// disableNode), connection edits (addConnection, removeConnection,
// rewireConnection, cleanStaleConnections, replaceConnections) and
// workflow-level edits (updateSettings, updateName, addTag, removeTag).
// Each kind has one handler that validates its preconditions against the
// current graph state and mutates the working copy; a handler either fully
// applies or fully rejects its operation.
//
// Operations referencing nodes accept either a node id or a display name;
// ResolveNode tries the id first and falls back to an exact name match.
// Connection operations additionally accept the smart parameters "branch"
// and "case", which resolve to concrete source output indices
// (branch "true" -> 0, branch "false" -> 1, case N -> N) unless an explicit
// index is supplied; explicit indices always win.
//
// # Execution policies
//
// Apply runs a batch over a deep copy of the input graph under one of three
// policies selected through Options:
//
//   - atomic (default): the first failure aborts the whole batch and the
//     envelope reports zero operations applied;
//   - best-effort (ContinueOnError): failures are recorded per operation
//     index while the rest of the batch still applies, and the envelope
//     carries the partially mutated graph plus applied/failed index lists;
//   - validate-only (ValidateOnly): the batch is executed against the
//     working copy but the resulting graph is discarded.
//
// The engine performs no I/O and never mutates the caller's graph. Fetching
// the workflow, backing it up, validating the final structure and
// persisting the result are the calling layer's concern; see the service
// package.
//
// # Example
//
//	ops := []diff.Operation{
//		&diff.AddNode{Name: "Webhook", Type: "n8n-nodes-base.webhook", Position: [2]float64{100, 200}},
//		&diff.AddConnection{Source: diff.Ref("Webhook"), Target: diff.Ref("Slack")},
//	}
//	result := diff.Apply(graph, ops, diff.Options{})
//	if !result.Success {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
package diff
