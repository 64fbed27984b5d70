package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"mcbot-pathing/pathing"
)

// edgeRecord is the on-disk form of one edge
type edgeRecord struct {
	From   pathing.NodeID `json:"from"`
	To     pathing.NodeID `json:"to"`
	Weight float64        `json:"weight"`
}

// graphDocument is the on-disk form of a graph. Node ids are positions in Nodes.
type graphDocument struct {
	Nodes []pathing.Vector3i `json:"nodes"`
	Edges []edgeRecord       `json:"edges"`
}

// SaveGraph serializes and saves the graph to a JSON file
func SaveGraph(graph *pathing.Graph, filename string) error {
	log.Printf("💾 Saving graph to %s...\n", filename)

	doc := graphDocument{
		Nodes: make([]pathing.Vector3i, 0, graph.Len()),
		Edges: make([]edgeRecord, 0, graph.EdgeCount()),
	}
	for _, node := range graph.Nodes() {
		doc.Nodes = append(doc.Nodes, node.Position())
	}
	for _, edge := range graph.EdgeList() {
		from, to := edge.Endpoints()
		doc.Edges = append(doc.Edges, edgeRecord{From: from, To: to, Weight: edge.Weight()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Graph saved (%d bytes)\n", len(data))
	return nil
}

// LoadGraph deserializes and loads the graph from a JSON file
func LoadGraph(filename string) (*pathing.Graph, error) {
	log.Printf("📂 Loading graph from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc graphDocument
	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}

	graph, err := decodeGraph(pathing.NewGraph(), doc)
	if err != nil {
		return nil, err
	}

	log.Printf("   ✅ Graph loaded: %d nodes, %d edges\n", graph.Len(), graph.EdgeCount())
	return graph, nil
}

// decodeGraph replays a graph file through a builder
func decodeGraph(builder pathing.Builder, doc graphDocument) (*pathing.Graph, error) {
	for i, p := range doc.Nodes {
		id, created := builder.AddNode(p)
		if !created || int(id) != i {
			return nil, fmt.Errorf("duplicate node %v at index %d", p, i)
		}
	}
	for i, e := range doc.Edges {
		if _, err := builder.LinkNodes(e.From, e.To, e.Weight); err != nil {
			return nil, fmt.Errorf("invalid edge %d: %w", i, err)
		}
	}
	return builder.Build()
}
