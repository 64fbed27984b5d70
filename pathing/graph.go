package pathing

import (
	"fmt"
	"math"
)

// DefaultWeight is the traversal cost used when a builder has no better figure.
const DefaultWeight = 1.0

// NodeID is the index of a node inside the graph that created it.
type NodeID int

// EdgeID is the index of an edge inside the graph that created it.
type EdgeID int

// NoNode marks an absent node.
const NoNode NodeID = -1

// Node is a graph vertex bound to one block position
type Node struct {
	id       NodeID
	position Vector3i
	edges    []EdgeID
}

// ID returns the node handle.
func (n Node) ID() NodeID { return n.id }

// Position returns the block position of the node.
func (n Node) Position() Vector3i { return n.position }

// Edges returns a copy of the incident edge list, in insertion order.
func (n Node) Edges() []EdgeID {
	return append([]EdgeID(nil), n.edges...)
}

// addEdge appends without checking that the edge touches n; LinkNodes is
// the only caller and it wires both endpoints.
func (n *Node) addEdge(edge EdgeID) {
	n.edges = append(n.edges, edge)
}

// Edge is an undirected weighted connection between two nodes
type Edge struct {
	id     EdgeID
	nodes  [2]NodeID
	weight float64
}

// ID returns the edge handle.
func (e Edge) ID() EdgeID { return e.id }

// Weight returns the traversal cost of the edge.
func (e Edge) Weight() float64 { return e.weight }

// Endpoints returns the two nodes joined by the edge.
func (e Edge) Endpoints() (NodeID, NodeID) { return e.nodes[0], e.nodes[1] }

// Connected returns the endpoint that is not from.
func (e Edge) Connected(from NodeID) (NodeID, error) {
	switch from {
	case e.nodes[0]:
		return e.nodes[1], nil
	case e.nodes[1]:
		return e.nodes[0], nil
	}
	return NoNode, fmt.Errorf("%w: node %d is not an endpoint of edge %d", ErrInvalidTopology, from, e.id)
}

// Builder is the construction surface a world collaborator uses to express
// which positions are traversable and at what cost.
type Builder interface {
	AddNode(position Vector3i) (NodeID, bool)
	LinkNodes(first, second NodeID, weight float64) (EdgeID, error)
	Build() (*Graph, error)
}

// Graph owns every node and edge of a navigation graph.
//
// A Graph is safe for concurrent searches as long as nobody calls AddNode,
// LinkNodes or Destroy at the same time.
type Graph struct {
	nodes      []Node
	edges      []Edge
	byPosition map[Vector3i]NodeID
	index      *SpatialIndex
}

var _ Builder = (*Graph)(nil)

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		byPosition: make(map[Vector3i]NodeID),
		index:      NewSpatialIndex(),
	}
}

// AddNode creates the node for position. A position maps to at most one node:
// adding it again returns the existing node and false.
func (g *Graph) AddNode(position Vector3i) (NodeID, bool) {
	if id, exists := g.byPosition[position]; exists {
		return id, false
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{id: id, position: position})
	g.byPosition[position] = id
	g.index.Insert(id, position)
	return id, true
}

// LinkNodes creates an edge between first and second and registers it on both.
func (g *Graph) LinkNodes(first, second NodeID, weight float64) (EdgeID, error) {
	if !g.has(first) || !g.has(second) {
		return -1, fmt.Errorf("%w: link %d-%d", ErrUnknownNode, first, second)
	}
	if !(weight > 0) || math.IsInf(weight, 0) {
		return -1, fmt.Errorf("%w: got %v", ErrInvalidWeight, weight)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{id: id, nodes: [2]NodeID{first, second}, weight: weight})
	g.nodes[first].addEdge(id)
	if second != first {
		g.nodes[second].addEdge(id)
	}
	return id, nil
}

// Build checks that every edge joins nodes of this graph and is listed on
// the incident edges of each endpoint exactly once, then returns the graph.
func (g *Graph) Build() (*Graph, error) {
	seen := make([]int, len(g.edges))
	for _, n := range g.nodes {
		for _, eid := range n.edges {
			if eid < 0 || int(eid) >= len(g.edges) {
				return nil, fmt.Errorf("%w: node %d lists missing edge %d", ErrInvalidTopology, n.id, eid)
			}
			if _, err := g.edges[eid].Connected(n.id); err != nil {
				return nil, err
			}
			seen[eid]++
		}
	}
	for _, e := range g.edges {
		if !g.has(e.nodes[0]) || !g.has(e.nodes[1]) {
			return nil, fmt.Errorf("%w: edge %d references missing node", ErrInvalidTopology, e.id)
		}
		want := 2
		if e.nodes[0] == e.nodes[1] {
			want = 1
		}
		if seen[e.id] != want {
			return nil, fmt.Errorf("%w: edge %d is listed on %d endpoints, want %d", ErrInvalidTopology, e.id, seen[e.id], want)
		}
	}
	return g, nil
}

func (g *Graph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.has(id) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	if id < 0 || int(id) >= len(g.edges) {
		return Edge{}, false
	}
	return g.edges[id], true
}

// Lookup returns the node placed exactly at position.
func (g *Graph) Lookup(position Vector3i) (NodeID, bool) {
	id, ok := g.byPosition[position]
	return id, ok
}

// Position returns the position of id, or the zero vector for unknown ids.
func (g *Graph) Position(id NodeID) Vector3i {
	if !g.has(id) {
		return Vector3i{}
	}
	return g.nodes[id].position
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns a snapshot of all nodes in id order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// EdgeList returns a snapshot of all edges in id order.
func (g *Graph) EdgeList() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Neighbors follows every incident edge of id and returns the far endpoints.
// Parallel edges produce duplicates.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	incident := g.nodes[id].edges
	neighbors := make([]NodeID, 0, len(incident))
	for _, eid := range incident {
		other, err := g.edges[eid].Connected(id)
		if err != nil {
			continue
		}
		neighbors = append(neighbors, other)
	}
	return neighbors
}

// CostFrom returns the weight of the cheapest edge joining id and other.
func (g *Graph) CostFrom(id, other NodeID) (float64, error) {
	if !g.has(id) || !g.has(other) {
		return 0, fmt.Errorf("%w: cost %d-%d", ErrUnknownNode, id, other)
	}

	cost := math.Inf(1)
	for _, eid := range g.nodes[id].edges {
		e := g.edges[eid]
		connected, err := e.Connected(id)
		if err != nil || connected != other {
			continue
		}
		if e.weight < cost {
			cost = e.weight
		}
	}
	if math.IsInf(cost, 1) {
		return 0, fmt.Errorf("%w: %d and %d", ErrInvalidTopology, id, other)
	}
	return cost, nil
}

// FindClosest returns the node nearest to position by Euclidean distance.
// Equally distant candidates resolve to the lowest id.
func (g *Graph) FindClosest(position Vector3i) (NodeID, bool) {
	if len(g.nodes) == 0 {
		return NoNode, false
	}
	if id, ok := g.byPosition[position]; ok {
		return id, true
	}
	return g.index.Nearest(position)
}

// FindPath resolves start and end to their closest nodes and searches between
// them. It reports false when the graph is empty or no path exists.
func (g *Graph) FindPath(start, end Vector3i) (*Plan, bool) {
	plan, _, err := g.Route(start, end)
	if err != nil {
		return nil, false
	}
	return plan, true
}

// Route is FindPath with the reason for a missing plan and search counters.
func (g *Graph) Route(start, end Vector3i) (*Plan, SearchStats, error) {
	startID, ok := g.FindClosest(start)
	if !ok {
		return nil, SearchStats{}, ErrEmptyGraph
	}
	endID, ok := g.FindClosest(end)
	if !ok {
		return nil, SearchStats{}, ErrEmptyGraph
	}
	return Search(g, startID, endID)
}

// Destroy releases all nodes and edges. The graph can be rebuilt afterwards.
func (g *Graph) Destroy() {
	g.nodes = nil
	g.edges = nil
	g.byPosition = make(map[Vector3i]NodeID)
	g.index = NewSpatialIndex()
}

// Stats summarises the size of a graph.
type Stats struct {
	Nodes int `json:"numNodes"`
	Edges int `json:"numEdges"`
}

// Stats returns node and edge counts.
func (g *Graph) Stats() Stats {
	return Stats{Nodes: len(g.nodes), Edges: len(g.edges)}
}
