// Package validate implements the whole-graph structural validator run by
// the calling layer after a diff commits, plus the classifier that turns
// validator messages into categorized recovery guidance
// (operator-structure, connection, missing-metadata, branch-mismatch).
//
// The validator is deliberately separate from the per-operation checks in
// the diff package: operations like replaceConnections defer all endpoint
// validation to this pass.
package validate
