package domain

// Equal reports whether two graphs are structurally equivalent: same node
// IDs with the same payloads, and same edge IDs with the same endpoints and
// payloads. Insertion order is ignored. A nil attribute map equals an empty one.
func Equal(a, b View) bool {
	if a.NodeCount() != b.NodeCount() || a.EdgeCount() != b.EdgeCount() {
		return false
	}

	nodes := make(map[string]Node, a.NodeCount())
	for _, n := range a.Nodes() {
		nodes[n.ID] = n
	}
	for _, n := range b.Nodes() {
		other, ok := nodes[n.ID]
		if !ok || !nodeEqual(n, other) {
			return false
		}
	}

	edges := make(map[string]Edge, a.EdgeCount())
	for _, e := range a.Edges() {
		edges[e.ID] = e
	}
	for _, e := range b.Edges() {
		other, ok := edges[e.ID]
		if !ok || !edgeEqual(e, other) {
			return false
		}
	}

	return true
}

func nodeEqual(a, b Node) bool {
	return a.ID == b.ID &&
		a.Label == b.Label &&
		a.Type == b.Type &&
		attributesEqual(a.Attributes, b.Attributes)
}

func edgeEqual(a, b Edge) bool {
	return a.ID == b.ID &&
		a.From == b.From &&
		a.To == b.To &&
		a.Type == b.Type &&
		a.Weight == b.Weight &&
		attributesEqual(a.Attributes, b.Attributes)
}

func attributesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
