// flowdiff - Applying Structural Diffs to Workflow Graphs in Go
//
// flowdiff applies ordered batches of structural edit operations (add,
// remove, update, move, enable and disable nodes; add, remove, rewire and
// replace connections; name, settings and tag updates; stale-connection
// cleanup) to an in-memory workflow graph and reports the outcome per
// operation.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/flowdiff
//
// Basic example:
//
//	package main
//
//	import (
//		"fmt"
//
//		"github.com/smallnest/flowdiff/diff"
//		"github.com/smallnest/flowdiff/workflow"
//	)
//
//	func main() {
//		g := workflow.New("demo")
//
//		ops := []diff.Operation{
//			&diff.AddNode{Name: "Webhook", Type: "n8n-nodes-base.webhook", Position: [2]float64{0, 0}},
//			&diff.AddNode{Name: "Slack", Type: "n8n-nodes-base.slack", Position: [2]float64{200, 0}},
//			&diff.AddConnection{Source: diff.Ref("Webhook"), Target: diff.Ref("Slack")},
//		}
//
//		result := diff.Apply(g, ops, diff.Options{})
//		fmt.Println(result.Message)
//	}
//
// # Packages
//
//   - workflow: the graph model (nodes, port-addressed connections,
//     settings, tags, parameter bags)
//   - diff: the diff engine (operation union, reference resolver,
//     handlers, atomic/best-effort/validate-only executor)
//   - validate: whole-graph structural validation and recovery guidance
//   - store: workflow persistence (memory, sqlite, redis, postgres)
//   - backup: pre-mutation snapshots with history pruning
//   - service: the orchestration layer composing all of the above
//   - log: leveled logging with an optional golog backend
//
// # Execution Semantics
//
// A diff batch runs atomically by default: the first invalid operation
// aborts the whole batch and the input graph is untouched. With
// ContinueOnError the executor applies every valid operation and reports
// the indices that succeeded and failed, so callers can retry just the
// failed subset. ValidateOnly dry-runs the batch without keeping any
// result.
package flowdiff
