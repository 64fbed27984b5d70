package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"runtime"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/paulmach/orb/geojson"

	"mcbot-pathing/pathing"
)

var (
	addr      = flag.String("addr", ":8080", "HTTP network address")
	graphFile = flag.String("graph", "voxel_graph.json", "graph file loaded on startup and written by saveToFile")
	worldDir  = flag.String("worlds", "worlds", "directory of voxel world JSON files used when no graph file exists")
)

type RouteRequest struct {
	Start    pathing.Vector3i `json:"start"`
	End      pathing.Vector3i `json:"end"`
	Simplify bool             `json:"simplify,omitempty"` // Optional: also return waypoints with straight runs collapsed
	GeoJSON  bool             `json:"geojson,omitempty"`  // Optional: also return the path as a GeoJSON feature
}

type RouteResponse struct {
	Path          []pathing.Vector3i `json:"path"`
	Waypoints     []pathing.Vector3i `json:"waypoints,omitempty"`
	Feature       *geojson.Feature   `json:"feature,omitempty"`
	Success       bool               `json:"success"`
	Message       string             `json:"message,omitempty"`
	Cost          float64            `json:"cost"`
	ExpandedNodes int                `json:"expandedNodes"`
}

type BatchRouteRequest struct {
	Queries     []pathing.Query `json:"queries"`
	Parallelism int             `json:"parallelism,omitempty"` // Defaults to the number of CPUs
}

type BuildGraphRequest struct {
	World      VoxelWorld         `json:"world"`
	Options    *VoxelWorldOptions `json:"options,omitempty"`
	SaveToFile bool               `json:"saveToFile"`      // Whether to save to disk
	Force      bool               `json:"force,omitempty"` // Set to true to force rebuild
}

var (
	globalGraph *pathing.Graph
	graphMutex  sync.RWMutex
)

// currentGraph returns the graph searches should run against. A rebuild
// swaps the pointer and never mutates a published graph.
func currentGraph() *pathing.Graph {
	graphMutex.RLock()
	defer graphMutex.RUnlock()
	return globalGraph
}

func setGraph(graph *pathing.Graph) {
	graphMutex.Lock()
	globalGraph = graph
	graphMutex.Unlock()
}

// publishGraph installs graph unless one is already published and force is
// unset. The check and the swap share one critical section.
func publishGraph(graph *pathing.Graph, force bool) bool {
	graphMutex.Lock()
	defer graphMutex.Unlock()
	if globalGraph != nil && !force {
		return false
	}
	globalGraph = graph
	return true
}

func writeGraphExists(w http.ResponseWriter) {
	log.Println("⚠️  Graph already exists")
	log.Println("   To rebuild, set force:true in request or restart the server")
	log.Println("========================================")

	writeJSON(w, http.StatusConflict, map[string]interface{}{
		"success": false,
		"error":   "graph already exists",
		"message": "Graph is already built. Set 'force: true' to rebuild, or restart the server.",
	})
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

// POST /route - Compute a route between two block positions
func routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: %v\n", req.Start)
	log.Printf("   End:   %v\n", req.End)

	graph := currentGraph()
	if graph == nil {
		log.Println("❌ Graph not available")
		http.Error(w, "Graph not built. Call /buildGraph first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	log.Println("🔍 Running A* on voxel graph...")
	plan, stats, err := graph.Route(req.Start, req.End)

	response := RouteResponse{
		Path:          []pathing.Vector3i{},
		ExpandedNodes: stats.Expanded,
	}

	switch {
	case err == nil:
		response.Success = true
		response.Path = plan.Positions()
		response.Cost = plan.Cost()
		if req.Simplify {
			response.Waypoints = SimplifyPath(response.Path, 0)
		}
		if req.GeoJSON {
			response.Feature = pathing.PlanAsFeature(plan)
		}
		log.Printf("✅ Path found with %d nodes\n", plan.Len())
		log.Printf("   Cost: %.2f, expanded %d nodes\n", plan.Cost(), stats.Expanded)
	case errors.Is(err, pathing.ErrNoPath), errors.Is(err, pathing.ErrEmptyGraph):
		log.Printf("❌ No path found: %v\n", err)
		response.Message = "No path found on voxel graph"
	default:
		log.Printf("❌ Search failed: %v\n", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		log.Println("========================================")
		return
	}

	writeJSON(w, http.StatusOK, response)
	log.Println("========================================")
}

// POST /routes - Compute several routes in parallel
func routesHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Batch route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Parallelism <= 0 {
		req.Parallelism = runtime.NumCPU()
	}

	graph := currentGraph()
	if graph == nil {
		log.Println("❌ Graph not available")
		http.Error(w, "Graph not built. Call /buildGraph first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	log.Printf("   Queries: %d, parallelism: %d\n", len(req.Queries), req.Parallelism)

	results, err := pathing.FindPaths(r.Context(), graph, req.Queries, req.Parallelism)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("⚠️  Batch cancelled by client")
			return
		}
		log.Printf("❌ Batch search failed: %v\n", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		log.Println("========================================")
		return
	}

	responses := make([]RouteResponse, len(results))
	found := 0
	for i, res := range results {
		responses[i] = RouteResponse{
			Path:          []pathing.Vector3i{},
			ExpandedNodes: res.Stats.Expanded,
		}
		if res.Err != nil {
			responses[i].Message = res.Err.Error()
			continue
		}
		found++
		responses[i].Success = true
		responses[i].Path = res.Plan.Positions()
		responses[i].Cost = res.Plan.Cost()
	}

	log.Printf("✅ %d/%d routes found\n", found, len(results))
	log.Println("========================================")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"routes":  responses,
	})
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	graph := currentGraph()

	status := "ready"
	stats := pathing.Stats{}
	if graph == nil {
		status = "waiting for graph"
	} else {
		stats = graph.Stats()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"hasGraph": graph != nil,
		"numNodes": stats.Nodes,
		"numEdges": stats.Edges,
	})
}

// POST /buildGraph - Build the navigation graph from a voxel world
func buildGraphHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Build Graph request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BuildGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Early out; publishGraph repeats the check before swapping
	if currentGraph() != nil && !req.Force {
		writeGraphExists(w)
		return
	}

	// Set defaults
	opts := DefaultVoxelWorldOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	log.Printf("   Solid blocks: %d\n", len(req.World.Solid))
	log.Printf("   Cost zones: %d\n", len(req.World.CostZones))
	log.Printf("   Diagonal: %t, max step: %d\n", opts.AllowDiagonal, opts.MaxStep)

	graph, err := BuildVoxelGraph(req.World, opts)
	if err != nil {
		log.Printf("❌ Failed to build graph: %v\n", err)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		log.Println("========================================")
		return
	}

	if !publishGraph(graph, req.Force) {
		writeGraphExists(w)
		return
	}

	// Optionally save to file
	if req.SaveToFile {
		if err := SaveGraph(graph, *graphFile); err != nil {
			log.Printf("⚠️  Failed to save graph: %v\n", err)
		}
	}

	log.Printf("✅ Graph built and stored in memory\n")
	log.Println("========================================")

	stats := graph.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"numNodes": stats.Nodes,
		"numEdges": stats.Edges,
	})
}

// GET /getGraphLines - Get graph edges as GeoJSON for visualization
func getGraphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	graph := currentGraph()
	if graph == nil {
		log.Println("❌ Graph not built")
		http.Error(w, "Graph not built. Call /buildGraph first", http.StatusBadRequest)
		return
	}

	fc := pathing.EdgesAsFeatureCollection(graph)
	log.Printf("📊 Returning %d edges as GeoJSON\n", len(fc.Features))

	writeJSON(w, http.StatusOK, fc)
}

// GET /schema - JSON Schema for the request bodies
func schemaHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]*jsonschema.Schema{
		"buildGraph": jsonschema.Reflect(&BuildGraphRequest{}),
		"route":      jsonschema.Reflect(&RouteRequest{}),
		"routes":     jsonschema.Reflect(&BatchRouteRequest{}),
	})
}

// loadInitialGraph restores the graph from the graph file, or builds it from
// the world directory when there is no graph file yet.
func loadInitialGraph() {
	if graph, err := LoadGraph(*graphFile); err == nil {
		setGraph(graph)
		log.Printf("✅ Loaded existing graph from file\n")
		log.Printf("   Nodes: %d, edges: %d\n", graph.Len(), graph.EdgeCount())
		return
	}

	worlds, err := loadWorldsFromDir(*worldDir)
	if err != nil || len(worlds) == 0 {
		log.Println("ℹ️  No existing graph found (this is normal on first run)")
		log.Println("   Call /buildGraph to create a new graph")
		return
	}

	graph, err := BuildVoxelGraph(MergeWorlds(worlds), DefaultVoxelWorldOptions())
	if err != nil {
		log.Printf("⚠️  Failed to build graph from %s: %v\n", *worldDir, err)
		return
	}
	setGraph(graph)
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(routeHandler))
	mux.HandleFunc("/routes", corsMiddleware(routesHandler))
	mux.HandleFunc("/buildGraph", corsMiddleware(buildGraphHandler))
	mux.HandleFunc("/getGraphLines", corsMiddleware(getGraphLinesHandler))
	mux.HandleFunc("/follow", followHandler)
	mux.HandleFunc("/schema", corsMiddleware(schemaHandler))
	mux.HandleFunc("/health", corsMiddleware(healthHandler))
	return mux
}

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Voxel Pathing Server")
	log.Println("========================================")
	log.Println("Checking for existing graph file...")
	loadInitialGraph()
	log.Println("")

	log.Printf("Server starting on %s\n", *addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /buildGraph      - Build navigation graph from a voxel world")
	log.Println("  GET  /getGraphLines   - Get graph edges as GeoJSON for visualization")
	log.Println("  POST /route           - Compute route with start and end positions")
	log.Println("  POST /routes          - Compute several routes in parallel")
	log.Println("  GET  /follow          - Stream a route step by step over a websocket")
	log.Println("  GET  /schema          - JSON Schema of the request bodies")
	log.Println("  GET  /health          - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(*addr, newMux()); err != nil {
		log.Fatal(err)
	}
}
