package workflow

// DefaultPort is the conventional name of the primary input/output port.
const DefaultPort = "main"

// Edge is a fully-addressed view of one connection, used for reporting.
type Edge struct {
	From       string `json:"from"`
	FromOutput string `json:"fromOutput"`
	FromIndex  int    `json:"fromIndex"`
	To         string `json:"to"`
	ToInput    string `json:"toInput"`
	ToIndex    int    `json:"toIndex"`
}

// Add appends a Connection target to the (source, output, sourceIndex) slot,
// growing the slot list as needed so that sourceIndex is addressable.
func (cm ConnectionMap) Add(source, output string, sourceIndex int, target Connection) {
	outputs, ok := cm[source]
	if !ok {
		outputs = make(map[string][][]Connection)
		cm[source] = outputs
	}
	slots := outputs[output]
	for len(slots) <= sourceIndex {
		slots = append(slots, nil)
	}
	slots[sourceIndex] = append(slots[sourceIndex], target)
	outputs[output] = slots
}

// Remove removes the first Connection in the (source, output, sourceIndex)
// slot for which match returns true. It reports whether a connection was
// removed. A negative sourceIndex matches any slot.
func (cm ConnectionMap) Remove(source, output string, sourceIndex int, match func(Connection) bool) bool {
	outputs, ok := cm[source]
	if !ok {
		return false
	}
	slots, ok := outputs[output]
	if !ok {
		return false
	}
	for i, slot := range slots {
		if sourceIndex >= 0 && i != sourceIndex {
			continue
		}
		for j, conn := range slot {
			if match(conn) {
				slots[i] = append(slot[:j], slot[j+1:]...)
				cm.compact(source, output)
				return true
			}
		}
	}
	return false
}

// Find returns a pointer to the first Connection in the (source, output,
// sourceIndex) slot for which match returns true, or nil. A negative
// sourceIndex matches any slot.
func (cm ConnectionMap) Find(source, output string, sourceIndex int, match func(Connection) bool) *Connection {
	slots, ok := cm[source][output]
	if !ok {
		return nil
	}
	for i := range slots {
		if sourceIndex >= 0 && i != sourceIndex {
			continue
		}
		for j := range slots[i] {
			if match(slots[i][j]) {
				return &slots[i][j]
			}
		}
	}
	return nil
}

// RemoveNode removes every connection that references nodeID, in either
// direction, and returns the removed edges.
func (cm ConnectionMap) RemoveNode(nodeID string) []Edge {
	var removed []Edge
	// Outgoing: drop the whole source entry.
	if outputs, ok := cm[nodeID]; ok {
		for output, slots := range outputs {
			for i, slot := range slots {
				for _, conn := range slot {
					removed = append(removed, Edge{
						From: nodeID, FromOutput: output, FromIndex: i,
						To: conn.Node, ToInput: conn.Input, ToIndex: conn.Index,
					})
				}
			}
		}
		delete(cm, nodeID)
	}
	// Incoming: filter targets pointing at nodeID.
	for source, outputs := range cm {
		for output, slots := range outputs {
			for i, slot := range slots {
				kept := slot[:0]
				for _, conn := range slot {
					if conn.Node == nodeID {
						removed = append(removed, Edge{
							From: source, FromOutput: output, FromIndex: i,
							To: conn.Node, ToInput: conn.Input, ToIndex: conn.Index,
						})
						continue
					}
					kept = append(kept, conn)
				}
				slots[i] = kept
			}
		}
		cm.compact(source, "")
	}
	return removed
}

// Stale returns every edge whose source or target node ID is absent from
// nodes. The receiver is not modified.
func (cm ConnectionMap) Stale(nodes map[string]*Node) []Edge {
	var stale []Edge
	for source, outputs := range cm {
		_, sourceOK := nodes[source]
		for output, slots := range outputs {
			for i, slot := range slots {
				for _, conn := range slot {
					_, targetOK := nodes[conn.Node]
					if sourceOK && targetOK {
						continue
					}
					stale = append(stale, Edge{
						From: source, FromOutput: output, FromIndex: i,
						To: conn.Node, ToInput: conn.Input, ToIndex: conn.Index,
					})
				}
			}
		}
	}
	return stale
}

// RemoveStale removes every edge whose source or target node ID is absent
// from nodes, returning the removed edges.
func (cm ConnectionMap) RemoveStale(nodes map[string]*Node) []Edge {
	stale := cm.Stale(nodes)
	for _, e := range stale {
		if _, ok := nodes[e.From]; !ok {
			delete(cm, e.From)
			continue
		}
		cm.Remove(e.From, e.FromOutput, e.FromIndex, func(c Connection) bool {
			return c.Node == e.To && c.Input == e.ToInput && c.Index == e.ToIndex
		})
	}
	return stale
}

// Count returns the total number of connections in the structure.
func (cm ConnectionMap) Count() int {
	count := 0
	for _, outputs := range cm {
		for _, slots := range outputs {
			for _, slot := range slots {
				count += len(slot)
			}
		}
	}
	return count
}

// compact drops empty trailing slots and empty output/source entries so that
// removals don't leave hollow structure behind. An empty output name compacts
// every output of the source.
func (cm ConnectionMap) compact(source, output string) {
	outputs, ok := cm[source]
	if !ok {
		return
	}
	names := []string{output}
	if output == "" {
		names = names[:0]
		for name := range outputs {
			names = append(names, name)
		}
	}
	for _, name := range names {
		slots := outputs[name]
		for len(slots) > 0 && len(slots[len(slots)-1]) == 0 {
			slots = slots[:len(slots)-1]
		}
		if len(slots) == 0 {
			delete(outputs, name)
			continue
		}
		outputs[name] = slots
	}
	if len(outputs) == 0 {
		delete(cm, source)
	}
}
