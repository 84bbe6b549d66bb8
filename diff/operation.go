package diff

import (
	"encoding/json"
	"fmt"

	"github.com/smallnest/flowdiff/workflow"
)

// Kind is the operation type discriminant.
type Kind string

const (
	KindAddNode               Kind = "addNode"
	KindRemoveNode            Kind = "removeNode"
	KindUpdateNode            Kind = "updateNode"
	KindMoveNode              Kind = "moveNode"
	KindEnableNode            Kind = "enableNode"
	KindDisableNode           Kind = "disableNode"
	KindAddConnection         Kind = "addConnection"
	KindRemoveConnection      Kind = "removeConnection"
	KindRewireConnection      Kind = "rewireConnection"
	KindUpdateSettings        Kind = "updateSettings"
	KindUpdateName            Kind = "updateName"
	KindAddTag                Kind = "addTag"
	KindRemoveTag             Kind = "removeTag"
	KindCleanStaleConnections Kind = "cleanStaleConnections"
	KindReplaceConnections    Kind = "replaceConnections"
)

// Operation is one instruction in a diff batch. The set of implementations
// is closed: adding a new operation means adding a variant struct here and a
// matching handler in handlers.go.
type Operation interface {
	// Kind returns the operation type discriminant.
	Kind() Kind

	// Note returns the optional free-text description attached by the
	// caller. It is carried through for auditing only, never interpreted.
	Note() string
}

// Meta carries the fields shared by every operation variant.
type Meta struct {
	// Description is free text for audit logs.
	Description string `json:"description,omitempty"`
}

// Note returns the audit description.
func (m Meta) Note() string { return m.Description }

// NodeRef references a node by id, by display name, or by a bare string
// tried as id first and name second. The zero NodeRef is invalid.
type NodeRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference carries neither id nor name.
func (r NodeRef) IsZero() bool { return r.ID == "" && r.Name == "" }

func (r NodeRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// UnmarshalJSON accepts either a JSON object {"id": ..., "name": ...} or a
// bare string. A bare string populates both fields so that resolution tries
// it as an id first and falls back to a name match.
func (r *NodeRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.ID = s
		r.Name = s
		return nil
	}
	type plain NodeRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = NodeRef(p)
	return nil
}

// Ref builds a NodeRef from a bare id-or-name string.
func Ref(idOrName string) NodeRef {
	return NodeRef{ID: idOrName, Name: idOrName}
}

// AddNode inserts a new node into the graph.
type AddNode struct {
	Meta
	// NodeID optionally fixes the new node's id; one is generated if empty.
	NodeID string `json:"nodeId,omitempty"`
	Name   string `json:"name"`
	// Type is the node type tag. The JSON field is "nodeType" because
	// "type" is the union discriminant.
	Type       string         `json:"nodeType"`
	Position   [2]float64     `json:"position"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (AddNode) Kind() Kind { return KindAddNode }

// RemoveNode deletes a node and every connection touching it.
type RemoveNode struct {
	Meta
	NodeID   string `json:"nodeId,omitempty"`
	NodeName string `json:"nodeName,omitempty"`
}

func (RemoveNode) Kind() Kind { return KindRemoveNode }

// UpdateNode merges dot-path updates into a node's parameter bag.
type UpdateNode struct {
	Meta
	NodeID   string         `json:"nodeId,omitempty"`
	NodeName string         `json:"nodeName,omitempty"`
	Updates  map[string]any `json:"updates"`
}

func (UpdateNode) Kind() Kind { return KindUpdateNode }

// MoveNode overwrites a node's canvas position.
type MoveNode struct {
	Meta
	NodeID   string     `json:"nodeId,omitempty"`
	NodeName string     `json:"nodeName,omitempty"`
	Position [2]float64 `json:"position"`
}

func (MoveNode) Kind() Kind { return KindMoveNode }

// EnableNode clears a node's disabled flag.
type EnableNode struct {
	Meta
	NodeID   string `json:"nodeId,omitempty"`
	NodeName string `json:"nodeName,omitempty"`
}

func (EnableNode) Kind() Kind { return KindEnableNode }

// DisableNode sets a node's disabled flag.
type DisableNode struct {
	Meta
	NodeID   string `json:"nodeId,omitempty"`
	NodeName string `json:"nodeName,omitempty"`
}

func (DisableNode) Kind() Kind { return KindDisableNode }

// AddConnection wires source -> target at the resolved port indices.
// SourceOutput and TargetInput default to "main"; indices default to 0
// unless a smart parameter (branch/case) or an explicit index resolves
// otherwise.
type AddConnection struct {
	Meta
	Source       NodeRef `json:"source"`
	Target       NodeRef `json:"target"`
	SourceOutput string  `json:"sourceOutput,omitempty"`
	TargetInput  string  `json:"targetInput,omitempty"`
	SourceIndex  *int    `json:"sourceIndex,omitempty"`
	TargetIndex  *int    `json:"targetIndex,omitempty"`
	Branch       string  `json:"branch,omitempty"`
	Case         *int    `json:"case,omitempty"`
}

func (AddConnection) Kind() Kind { return KindAddConnection }

// RemoveConnection removes the first connection matching the addressing.
// With IgnoreErrors set, a missing connection (or unresolvable endpoint) is
// silently treated as a no-op.
type RemoveConnection struct {
	Meta
	Source       NodeRef `json:"source"`
	Target       NodeRef `json:"target"`
	SourceOutput string  `json:"sourceOutput,omitempty"`
	TargetInput  string  `json:"targetInput,omitempty"`
	SourceIndex  *int    `json:"sourceIndex,omitempty"`
	TargetIndex  *int    `json:"targetIndex,omitempty"`
	Branch       string  `json:"branch,omitempty"`
	Case         *int    `json:"case,omitempty"`
	IgnoreErrors bool    `json:"ignoreErrors,omitempty"`
}

func (RemoveConnection) Kind() Kind { return KindRemoveConnection }

// RewireConnection redirects an existing source -> From connection to point
// at To instead, preserving the port assignment.
type RewireConnection struct {
	Meta
	Source       NodeRef `json:"source"`
	From         NodeRef `json:"from"`
	To           NodeRef `json:"to"`
	SourceOutput string  `json:"sourceOutput,omitempty"`
	SourceIndex  *int    `json:"sourceIndex,omitempty"`
	Branch       string  `json:"branch,omitempty"`
	Case         *int    `json:"case,omitempty"`
}

func (RewireConnection) Kind() Kind { return KindRewireConnection }

// UpdateSettings shallow-merges into the workflow-level settings.
type UpdateSettings struct {
	Meta
	Settings map[string]any `json:"settings"`
}

func (UpdateSettings) Kind() Kind { return KindUpdateSettings }

// UpdateName overwrites the workflow display name.
type UpdateName struct {
	Meta
	Name string `json:"name"`
}

func (UpdateName) Kind() Kind { return KindUpdateName }

// AddTag inserts a tag into the workflow tag set.
type AddTag struct {
	Meta
	Tag string `json:"tag"`
}

func (AddTag) Kind() Kind { return KindAddTag }

// RemoveTag removes a tag from the workflow tag set.
type RemoveTag struct {
	Meta
	Tag string `json:"tag"`
}

func (RemoveTag) Kind() Kind { return KindRemoveTag }

// CleanStaleConnections removes every connection whose source or target node
// no longer exists. With DryRun set, the removal set is computed and
// reported without mutating the graph.
type CleanStaleConnections struct {
	Meta
	DryRun bool `json:"dryRun,omitempty"`
}

func (CleanStaleConnections) Kind() Kind { return KindCleanStaleConnections }

// ReplaceConnections swaps the whole connection structure for the supplied
// one. Per-edge validation is deferred to whole-graph structural validation.
type ReplaceConnections struct {
	Meta
	Connections workflow.ConnectionMap `json:"connections"`
}

func (ReplaceConnections) Kind() Kind { return KindReplaceConnections }

// UnmarshalOperation decodes a single tagged-union operation object keyed by
// its "type" field.
func UnmarshalOperation(data []byte) (Operation, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var op Operation
	switch head.Type {
	case KindAddNode:
		op = &AddNode{}
	case KindRemoveNode:
		op = &RemoveNode{}
	case KindUpdateNode:
		op = &UpdateNode{}
	case KindMoveNode:
		op = &MoveNode{}
	case KindEnableNode:
		op = &EnableNode{}
	case KindDisableNode:
		op = &DisableNode{}
	case KindAddConnection:
		op = &AddConnection{}
	case KindRemoveConnection:
		op = &RemoveConnection{}
	case KindRewireConnection:
		op = &RewireConnection{}
	case KindUpdateSettings:
		op = &UpdateSettings{}
	case KindUpdateName:
		op = &UpdateName{}
	case KindAddTag:
		op = &AddTag{}
	case KindRemoveTag:
		op = &RemoveTag{}
	case KindCleanStaleConnections:
		op = &CleanStaleConnections{}
	case KindReplaceConnections:
		op = &ReplaceConnections{}
	default:
		return nil, fmt.Errorf("%w: unknown operation type %q", ErrInvalidInput, head.Type)
	}

	if err := json.Unmarshal(data, op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return op, nil
}

// UnmarshalOperations decodes a JSON array of tagged-union operations.
func UnmarshalOperations(data []byte) ([]Operation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ops := make([]Operation, 0, len(raw))
	for i, item := range raw {
		op, err := UnmarshalOperation(item)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// MarshalOperation encodes an operation with its "type" discriminant
// injected, producing the same tagged-union shape UnmarshalOperation reads.
func MarshalOperation(op Operation) ([]byte, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["type"] = op.Kind()
	return json.Marshal(fields)
}
