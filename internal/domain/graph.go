package domain

import (
	"fmt"
	"sort"
)

// View is the read-only side of a graph, used when encoding
type View interface {
	Nodes() []Node
	Edges() []Edge
	NodeCount() int
	EdgeCount() int
}

// Builder is the mutating side of a graph, used when decoding
type Builder interface {
	AddNode(node Node) error
	AddEdge(edge Edge) error
}

// Graph is an in-memory directed graph.
// Nodes and edges keep insertion order. A Graph is not safe for concurrent
// mutation; readers and writers must be serialized by the caller.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int
	edgeIndex map[string]int
	out       map[string][]int
	in        map[string][]int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	g := &Graph{}
	g.Reset()
	return g
}

// Reset removes every node and edge
func (g *Graph) Reset() {
	g.nodes = make([]Node, 0)
	g.edges = make([]Edge, 0)
	g.nodeIndex = make(map[string]int)
	g.edgeIndex = make(map[string]int)
	g.out = make(map[string][]int)
	g.in = make(map[string][]int)
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node Node) error {
	if node.ID == "" {
		return ErrEmptyID
	}
	if _, exists := g.nodeIndex[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	g.nodeIndex[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node.clone())
	return nil
}

// AddEdge adds a directed edge. Both endpoints must already exist.
// An edge without an ID gets a deterministic one from GenerateID.
func (g *Graph) AddEdge(edge Edge) error {
	if edge.From == "" || edge.To == "" {
		return ErrEmptyID
	}
	if _, ok := g.nodeIndex[edge.From]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, edge.From)
	}
	if _, ok := g.nodeIndex[edge.To]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, edge.To)
	}
	if edge.ID == "" {
		edge.ID = edge.GenerateID()
	}
	if _, exists := g.edgeIndex[edge.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, edge.ID)
	}

	idx := len(g.edges)
	g.edgeIndex[edge.ID] = idx
	g.edges = append(g.edges, edge.clone())
	g.out[edge.From] = append(g.out[edge.From], idx)
	g.in[edge.To] = append(g.in[edge.To], idx)
	return nil
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx].clone(), true
}

// Edge returns the edge with the given ID
func (g *Graph) Edge(id string) (Edge, bool) {
	idx, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx].clone(), true
}

// Nodes returns a copy of all nodes in insertion order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns a copy of all edges in insertion order
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.clone()
	}
	return out
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// OutEdges returns the edges leaving the given node
func (g *Graph) OutEdges(id string) []Edge {
	return g.collect(g.out[id])
}

// InEdges returns the edges entering the given node
func (g *Graph) InEdges(id string) []Edge {
	return g.collect(g.in[id])
}

// Successors returns the IDs of nodes reachable by one outgoing edge, sorted
func (g *Graph) Successors(id string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, idx := range g.out[id] {
		to := g.edges[idx].To
		if !seen[to] {
			seen[to] = true
			ids = append(ids, to)
		}
	}
	sort.Strings(ids)
	return ids
}

func (g *Graph) collect(indexes []int) []Edge {
	out := make([]Edge, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, g.edges[idx].clone())
	}
	return out
}
