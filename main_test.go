package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"mcbot-pathing/pathing"
)

func doRequest(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, req)
	return rec
}

func useGraph(t *testing.T, g *pathing.Graph) {
	t.Helper()
	previous := currentGraph()
	setGraph(g)
	t.Cleanup(func() { setGraph(previous) })
}

func TestRouteWithoutGraph(t *testing.T) {
	useGraph(t, nil)

	rec := doRequest(t, http.MethodPost, "/route", RouteRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBuildThenRoute(t *testing.T) {
	useGraph(t, nil)

	rec := doRequest(t, http.MethodPost, "/buildGraph", BuildGraphRequest{
		World: VoxelWorld{Solid: floor(4, 0)},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("buildGraph status = %d, body %s", rec.Code, rec.Body.String())
	}

	// A second build without force is rejected
	rec = doRequest(t, http.MethodPost, "/buildGraph", BuildGraphRequest{
		World: VoxelWorld{Solid: floor(2, 0)},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second buildGraph status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = doRequest(t, http.MethodPost, "/route", RouteRequest{
		Start:    pathing.Vector3i{X: 0, Y: 1, Z: 0},
		End:      pathing.Vector3i{X: 3, Y: 1, Z: 0},
		Simplify: true,
		GeoJSON:  true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("route status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Path) != 4 || resp.Cost != 3 {
		t.Fatalf("route response = %+v, want 4 step path with cost 3", resp)
	}
	if len(resp.Waypoints) != 2 {
		t.Fatalf("waypoints = %v, want start and end only", resp.Waypoints)
	}
	if resp.Feature == nil || resp.Feature.Properties["cost"] != 3.0 {
		t.Fatalf("feature = %+v, want plan feature with cost 3", resp.Feature)
	}
}

func TestRouteNoPath(t *testing.T) {
	world := VoxelWorld{Solid: append(floor(2, 0), pathing.Vector3i{X: 10, Y: 0, Z: 10})}
	g, err := BuildVoxelGraph(world, DefaultVoxelWorldOptions())
	if err != nil {
		t.Fatal(err)
	}
	useGraph(t, g)

	rec := doRequest(t, http.MethodPost, "/route", RouteRequest{
		Start: pathing.Vector3i{X: 0, Y: 1, Z: 0},
		End:   pathing.Vector3i{X: 10, Y: 1, Z: 10},
	})
	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Message == "" {
		t.Fatalf("route response = %+v, want failure with message", resp)
	}
}

func TestRouteSameBlockKeepsZeroCost(t *testing.T) {
	g, err := BuildVoxelGraph(VoxelWorld{Solid: floor(2, 0)}, DefaultVoxelWorldOptions())
	if err != nil {
		t.Fatal(err)
	}
	useGraph(t, g)

	here := pathing.Vector3i{X: 1, Y: 1, Z: 1}
	rec := doRequest(t, http.MethodPost, "/route", RouteRequest{Start: here, End: here})
	if rec.Code != http.StatusOK {
		t.Fatalf("route status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cost, ok := body["cost"]
	if !ok || cost != 0.0 {
		t.Fatalf("cost = %v (present %t), want 0", cost, ok)
	}
	if body["success"] != true {
		t.Fatalf("route response = %v, want success", body)
	}
}

func TestPublishGraphOnlyOneWinsWithoutForce(t *testing.T) {
	useGraph(t, nil)

	const builders = 8
	graphs := make([]*pathing.Graph, builders)
	won := make([]bool, builders)
	var wg sync.WaitGroup
	for i := range graphs {
		graphs[i] = pathing.NewGraph()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			won[i] = publishGraph(graphs[i], false)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, ok := range won {
		if ok {
			winners++
			if currentGraph() != graphs[i] {
				t.Fatalf("published graph is not the winner's")
			}
		}
	}
	if winners != 1 {
		t.Fatalf("%d builders published, want 1", winners)
	}

	forced := pathing.NewGraph()
	if !publishGraph(forced, true) || currentGraph() != forced {
		t.Fatalf("forced publish did not replace the graph")
	}
}

func TestRoutesBatch(t *testing.T) {
	g, err := BuildVoxelGraph(VoxelWorld{Solid: floor(3, 0)}, DefaultVoxelWorldOptions())
	if err != nil {
		t.Fatal(err)
	}
	useGraph(t, g)

	rec := doRequest(t, http.MethodPost, "/routes", BatchRouteRequest{
		Queries: []pathing.Query{
			{Start: pathing.Vector3i{X: 0, Y: 1, Z: 0}, End: pathing.Vector3i{X: 2, Y: 1, Z: 0}},
			{Start: pathing.Vector3i{X: 0, Y: 1, Z: 0}, End: pathing.Vector3i{X: 0, Y: 1, Z: 0}},
		},
		Parallelism: 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("routes status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool            `json:"success"`
		Routes  []RouteResponse `json:"routes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Routes) != 2 || !resp.Routes[0].Success || len(resp.Routes[1].Path) != 1 {
		t.Fatalf("routes response = %+v", resp)
	}
}

func TestHealthAndLines(t *testing.T) {
	g, err := BuildVoxelGraph(VoxelWorld{Solid: floor(2, 0)}, VoxelWorldOptions{})
	if err != nil {
		t.Fatal(err)
	}
	useGraph(t, g)

	rec := doRequest(t, http.MethodGet, "/health", nil)
	var health map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "ready" || health["numNodes"] != 4.0 || health["numEdges"] != 4.0 {
		t.Fatalf("health = %v", health)
	}

	rec = doRequest(t, http.MethodGet, "/getGraphLines", nil)
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 4 {
		t.Fatalf("lines = %s with %d features", fc.Type, len(fc.Features))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	for _, path := range []string{"/route", "/routes", "/buildGraph"} {
		rec := doRequest(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestSchema(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/schema", nil)
	var schemas map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&schemas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"buildGraph", "route", "routes"} {
		if len(schemas[name]) == 0 {
			t.Fatalf("schema %q missing", name)
		}
	}
}
