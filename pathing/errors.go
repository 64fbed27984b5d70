package pathing

import "errors"

var (
	// ErrNoPath is returned when the open set runs dry before the goal is reached.
	ErrNoPath = errors.New("no path found")

	// ErrEmptyGraph is returned when a lookup runs against a graph with no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrUnknownNode is returned for a NodeID that does not belong to the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidTopology means two nodes were treated as adjacent without an
	// edge between them. Seeing it from a search is a bug.
	ErrInvalidTopology = errors.New("nodes are not connected")

	// ErrInvalidWeight is returned by LinkNodes for weights that are not
	// finite and positive.
	ErrInvalidWeight = errors.New("edge weight must be positive")

	// ErrCursorExhausted is returned by Plan.Next past the last node.
	ErrCursorExhausted = errors.New("plan cursor exhausted")
)
