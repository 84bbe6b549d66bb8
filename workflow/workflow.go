package workflow

import (
	"time"
)

// Node is a typed, positioned unit of work in a workflow graph.
type Node struct {
	// ID is the unique identifier for the node.
	ID string `json:"id"`

	// Name is the human-readable display name. Callers may reference a node
	// by either ID or Name; name uniqueness is by convention, not enforced.
	Name string `json:"name"`

	// Type is the node type tag, e.g. "n8n-nodes-base.if". It determines
	// smart-parameter semantics for connection operations.
	Type string `json:"type"`

	// Position holds the [x, y] canvas coordinates.
	Position [2]float64 `json:"position"`

	// Disabled marks the node as skipped during execution.
	Disabled bool `json:"disabled,omitempty"`

	// Parameters is the open-ended, dot-path-addressable parameter bag.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Connection is a directed, port-addressed edge target. The source node,
// output name and output index are implied by the Connection's location
// inside a ConnectionMap; the Connection itself carries the target side.
type Connection struct {
	// Node is the target node ID.
	Node string `json:"node"`

	// Input is the target input name (usually "main").
	Input string `json:"input"`

	// Index is the target input index.
	Index int `json:"index"`
}

// ConnectionMap is the nested connection structure of a workflow:
// source node ID -> source output name -> output slots, where each slot is
// the ordered list of Connection targets wired to that output index.
type ConnectionMap map[string]map[string][][]Connection

// Graph is the in-memory workflow representation under edit. A Graph is
// exclusively owned by a single diff execution; it is never shared between
// concurrent invocations.
type Graph struct {
	// ID identifies the workflow in the backing store. Empty for new
	// workflows until Persist assigns one.
	ID string `json:"id,omitempty"`

	// Name is the workflow display name.
	Name string `json:"name"`

	// Nodes maps node ID to node. Insertion order is irrelevant.
	Nodes map[string]*Node `json:"nodes"`

	// Connections is the port-addressed edge structure.
	Connections ConnectionMap `json:"connections"`

	// Settings holds workflow-level settings, outside the node model.
	Settings map[string]any `json:"settings,omitempty"`

	// Tags is the workflow tag set. Membership matters, order does not.
	Tags []string `json:"tags,omitempty"`

	// UpdatedAt is stamped by the store on persist.
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty workflow graph with the given name.
func New(name string) *Graph {
	return &Graph{
		Name:        name,
		Nodes:       make(map[string]*Node),
		Connections: make(ConnectionMap),
	}
}

// NodeByID returns the node with the given ID, or nil.
func (g *Graph) NodeByID(id string) *Node {
	return g.Nodes[id]
}

// NodeByName returns the first node whose Name matches exactly, or nil.
func (g *Graph) NodeByName(name string) *Node {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// AddTag inserts tag into the workflow tag set if not already present.
func (g *Graph) AddTag(tag string) {
	for _, t := range g.Tags {
		if t == tag {
			return
		}
	}
	g.Tags = append(g.Tags, tag)
}

// RemoveTag removes tag from the workflow tag set if present.
func (g *Graph) RemoveTag(tag string) {
	for i, t := range g.Tags {
		if t == tag {
			g.Tags = append(g.Tags[:i], g.Tags[i+1:]...)
			return
		}
	}
}

// HasTag reports whether tag is in the workflow tag set.
func (g *Graph) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MergeSettings shallow-merges the given settings into the workflow settings.
func (g *Graph) MergeSettings(settings map[string]any) {
	if g.Settings == nil {
		g.Settings = make(map[string]any, len(settings))
	}
	for k, v := range settings {
		g.Settings[k] = v
	}
}

// Clone returns a deep copy of the graph. Diff executions operate on a clone
// so that a failed atomic batch leaves the caller's graph untouched.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		ID:        g.ID,
		Name:      g.Name,
		Nodes:     make(map[string]*Node, len(g.Nodes)),
		Settings:  cloneMap(g.Settings),
		UpdatedAt: g.UpdatedAt,
	}
	for id, n := range g.Nodes {
		clone.Nodes[id] = n.Clone()
	}
	clone.Connections = g.Connections.Clone()
	if g.Tags != nil {
		clone.Tags = append([]string(nil), g.Tags...)
	}
	return clone
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Parameters = cloneMap(n.Parameters)
	return &c
}

// Clone returns a deep copy of the connection structure.
func (cm ConnectionMap) Clone() ConnectionMap {
	if cm == nil {
		return make(ConnectionMap)
	}
	clone := make(ConnectionMap, len(cm))
	for src, outputs := range cm {
		outClone := make(map[string][][]Connection, len(outputs))
		for output, slots := range outputs {
			slotsClone := make([][]Connection, len(slots))
			for i, slot := range slots {
				if slot != nil {
					slotsClone[i] = append([]Connection(nil), slot...)
				}
			}
			outClone[output] = slotsClone
		}
		clone[src] = outClone
	}
	return clone
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		clone := make([]any, len(val))
		for i, item := range val {
			clone[i] = cloneValue(item)
		}
		return clone
	default:
		return v
	}
}
