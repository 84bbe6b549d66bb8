package workflow

import (
	"fmt"
	"strings"
)

// ErrPath reports a dot-path that cannot be applied to a parameter tree.
type ErrPath struct {
	Path   string
	Reason string
}

func (e *ErrPath) Error() string {
	return fmt.Sprintf("invalid parameter path %q: %s", e.Path, e.Reason)
}

// SetPath merges value into the tree at the given dot-path, creating
// intermediate maps as needed. Leaves are overwritten; existing siblings are
// left alone; nothing is deleted. Traversing through a non-map leaf fails.
func SetPath(tree map[string]any, path string, value any) error {
	if path == "" {
		return &ErrPath{Path: path, Reason: "empty path"}
	}
	segments := strings.Split(path, ".")
	current := tree
	for i, seg := range segments {
		if seg == "" {
			return &ErrPath{Path: path, Reason: "empty path segment"}
		}
		if i == len(segments)-1 {
			current[seg] = value
			return nil
		}
		next, ok := current[seg]
		if !ok || next == nil {
			child := make(map[string]any)
			current[seg] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return &ErrPath{Path: path, Reason: fmt.Sprintf("segment %q is not an object", seg)}
		}
		current = child
	}
	return nil
}

// GetPath returns the value at the given dot-path, or false if any segment
// is missing or a non-map value is traversed.
func GetPath(tree map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	current := tree
	for i, seg := range segments {
		v, ok := current[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		child, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		current = child
	}
	return nil, false
}

// SetParameter applies a single dot-path update to the node. Paths may be
// given relative to the node ("parameters.url") or relative to the bag
// itself ("url"); both address the same parameter.
func (n *Node) SetParameter(path string, value any) error {
	if n.Parameters == nil {
		n.Parameters = make(map[string]any)
	}
	if path == "parameters" {
		merged, ok := value.(map[string]any)
		if !ok {
			return &ErrPath{Path: path, Reason: "parameters value must be an object"}
		}
		for k, v := range merged {
			n.Parameters[k] = v
		}
		return nil
	}
	path = strings.TrimPrefix(path, "parameters.")
	return SetPath(n.Parameters, path, value)
}
