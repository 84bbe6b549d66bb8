// Package workflow defines the in-memory workflow graph model edited by the
// diff engine: typed, positioned nodes addressed by id or display name, a
// port-addressed nested connection structure, workflow-level settings and
// tags, and a dot-path-addressable parameter bag per node.
//
// The connection structure follows the source -> output name -> output slot
// shape: each output of a node holds an ordered list of slots (one per
// output index), and each slot holds the ordered list of targets wired to
// it. This models both multi-output nodes (IF, Switch) and multiple
// parallel wires per output.
//
// A Graph is a plain value owned by a single diff execution. Clone produces
// a deep copy so that atomic batches can be discarded without touching the
// caller's graph; no internal locking is performed.
package workflow
