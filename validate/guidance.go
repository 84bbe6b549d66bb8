package validate

import "strings"

// Category classifies a structural validation error for recovery guidance.
type Category string

const (
	// CategoryOperatorStructure covers defects in how operator nodes are
	// declared (missing types, duplicate names).
	CategoryOperatorStructure Category = "operator-structure"

	// CategoryConnection covers dangling or malformed connections.
	CategoryConnection Category = "connection"

	// CategoryMissingMetadata covers nodes the validator could not fully
	// check because their metadata is incomplete.
	CategoryMissingMetadata Category = "missing-metadata"

	// CategoryBranchMismatch covers wiring that disagrees with a node's
	// branch output convention.
	CategoryBranchMismatch Category = "branch-mismatch"
)

// Guidance pairs a validation error with its category and a recovery hint.
type Guidance struct {
	Category Category `json:"category"`
	Error    string   `json:"error"`
	Hint     string   `json:"hint"`
}

var hints = map[Category]string{
	CategoryOperatorStructure: "check the node definitions added or renamed by this diff; every node needs a type and a unique name",
	CategoryConnection:        "remove or rewire the dangling connection, or run a cleanStaleConnections operation",
	CategoryMissingMetadata:   "fill in the missing node metadata before retrying the diff",
	CategoryBranchMismatch:    "branch nodes expose exactly two outputs; use branch \"true\" (output 0) or \"false\" (output 1)",
}

// Classify maps structural validation error strings into categorized
// recovery guidance, one entry per error.
func Classify(errs []string) []Guidance {
	guidance := make([]Guidance, 0, len(errs))
	for _, msg := range errs {
		cat := classify(msg)
		guidance = append(guidance, Guidance{
			Category: cat,
			Error:    msg,
			Hint:     hints[cat],
		})
	}
	return guidance
}

func classify(msg string) Category {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "branch output"):
		return CategoryBranchMismatch
	case strings.Contains(lower, "connection"):
		return CategoryConnection
	case strings.Contains(lower, "has no type") || strings.Contains(lower, "metadata"):
		return CategoryMissingMetadata
	default:
		return CategoryOperatorStructure
	}
}
