package pathing

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestFindPathChain(t *testing.T) {
	t.Parallel()
	g := chainGraph(t)

	plan, ok := g.FindPath(Vector3i{X: 0}, Vector3i{X: 2})
	if !ok {
		t.Fatalf("FindPath() found no plan")
	}

	want := []Vector3i{{X: 0}, {X: 1}, {X: 2}}
	got := plan.Positions()
	if len(got) != len(want) {
		t.Fatalf("Positions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Positions() = %v, want %v", got, want)
		}
	}
	if plan.Cost() != 2 {
		t.Fatalf("Cost() = %v, want 2", plan.Cost())
	}
}

func TestFindPathSingleIsolatedNode(t *testing.T) {
	t.Parallel()
	g := NewGraph()
	id, _ := g.AddNode(Vector3i{X: 4, Y: 64, Z: -3})

	plan, ok := g.FindPath(Vector3i{X: 4, Y: 64, Z: -3}, Vector3i{X: 4, Y: 64, Z: -3})
	if !ok {
		t.Fatalf("FindPath() found no plan")
	}
	if plan.Len() != 1 || plan.Nodes()[0] != id {
		t.Fatalf("Nodes() = %v, want [%d]", plan.Nodes(), id)
	}
	if plan.Cost() != 0 {
		t.Fatalf("Cost() = %v, want 0", plan.Cost())
	}
}

func TestFindPathResolvesClosestNodes(t *testing.T) {
	t.Parallel()
	g := chainGraph(t)

	plan, ok := g.FindPath(Vector3i{X: -3, Y: 1}, Vector3i{X: 9, Z: 1})
	if !ok {
		t.Fatalf("FindPath() found no plan")
	}
	first := plan.Positions()[0]
	goal, _ := plan.Goal()
	if first != (Vector3i{X: 0}) || goal.Position != (Vector3i{X: 2}) {
		t.Fatalf("plan runs %v -> %v, want (0,0,0) -> (2,0,0)", first, goal.Position)
	}
}

func TestSearchDisconnected(t *testing.T) {
	t.Parallel()
	g := NewGraph()
	a, _ := g.AddNode(Vector3i{X: 0})
	b, _ := g.AddNode(Vector3i{X: 1})
	c, _ := g.AddNode(Vector3i{X: 2})
	d, _ := g.AddNode(Vector3i{X: 10})
	e, _ := g.AddNode(Vector3i{X: 11})
	mustLink(t, g, a, b, 1)
	mustLink(t, g, b, c, 1)
	mustLink(t, g, c, a, 3)
	mustLink(t, g, d, e, 1)

	plan, stats, err := Search(g, a, e)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("Search() error = %v, want ErrNoPath", err)
	}
	if plan != nil {
		t.Fatalf("Search() plan = %v, want nil", plan)
	}
	if stats.Created > g.Len() {
		t.Fatalf("Created = %d, want <= %d", stats.Created, g.Len())
	}
	if stats.Expanded != 3 {
		t.Fatalf("Expanded = %d, want 3", stats.Expanded)
	}

	if _, ok := g.FindPath(Vector3i{X: 0}, Vector3i{X: 11}); ok {
		t.Fatalf("FindPath() across components found a plan")
	}
}

func TestSearchUnknownNode(t *testing.T) {
	t.Parallel()
	g := chainGraph(t)
	if _, _, err := Search(g, 0, 17); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("Search() error = %v, want ErrUnknownNode", err)
	}
}

func TestSearchPrefersCheaperDetour(t *testing.T) {
	t.Parallel()
	g := NewGraph()
	a, _ := g.AddNode(Vector3i{X: 0})
	b, _ := g.AddNode(Vector3i{X: 4})
	c, _ := g.AddNode(Vector3i{X: 2, Z: 1})
	d, _ := g.AddNode(Vector3i{X: 2, Z: -1})
	mustLink(t, g, a, b, 10)
	mustLink(t, g, a, c, 3)
	mustLink(t, g, c, b, 3)
	mustLink(t, g, a, d, 2.5)
	mustLink(t, g, d, b, 2.5)

	plan, _, err := Search(g, a, b)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	nodes := plan.Nodes()
	if len(nodes) != 3 || nodes[1] != d {
		t.Fatalf("Nodes() = %v, want [%d %d %d]", nodes, a, d, b)
	}
	if plan.Cost() != 5 {
		t.Fatalf("Cost() = %v, want 5", plan.Cost())
	}
}

func TestSearchMatchesDijkstra(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		g := randomGraph(t, rng, 60, 150)

		for q := 0; q < 10; q++ {
			start := NodeID(rng.Intn(g.Len()))
			goal := NodeID(rng.Intn(g.Len()))
			want := dijkstra(t, g, start)[goal]

			plan, stats, err := Search(g, start, goal)
			if math.IsInf(want, 1) {
				if !errors.Is(err, ErrNoPath) {
					t.Fatalf("round %d: Search(%d, %d) error = %v, want ErrNoPath", round, start, goal, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("round %d: Search(%d, %d) error = %v", round, start, goal, err)
			}
			if stats.Created > g.Len() {
				t.Fatalf("Created = %d, want <= %d", stats.Created, g.Len())
			}
			if math.Abs(plan.Cost()-want) > 1e-9 {
				t.Fatalf("round %d: Search(%d, %d) cost = %v, want %v", round, start, goal, plan.Cost(), want)
			}
			if walked := walkCost(t, g, plan); math.Abs(walked-plan.Cost()) > 1e-9 {
				t.Fatalf("plan edges sum to %v, Cost() = %v", walked, plan.Cost())
			}
			if first := plan.Nodes()[0]; first != start {
				t.Fatalf("plan starts at %d, want %d", first, start)
			}
			if last, _ := plan.Goal(); last.Node != goal {
				t.Fatalf("plan ends at %d, want %d", last.Node, goal)
			}
		}
	}
}

func TestSearchIsRepeatable(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	g := randomGraph(t, rng, 80, 240)

	for q := 0; q < 20; q++ {
		start := NodeID(rng.Intn(g.Len()))
		goal := NodeID(rng.Intn(g.Len()))
		first, _, err1 := Search(g, start, goal)
		second, _, err2 := Search(g, start, goal)
		if !errors.Is(err1, err2) && err1 != err2 {
			t.Fatalf("Search() errors differ: %v vs %v", err1, err2)
		}
		if err1 != nil {
			continue
		}
		if first.Cost() != second.Cost() {
			t.Fatalf("Search() costs differ: %v vs %v", first.Cost(), second.Cost())
		}
	}
}

// randomGraph places nodes at distinct positions and links random pairs with
// weights no smaller than their straight-line distance.
func randomGraph(t *testing.T, rng *rand.Rand, nodes, edges int) *Graph {
	t.Helper()
	g := NewGraph()
	for g.Len() < nodes {
		g.AddNode(Vector3i{X: rng.Intn(20), Y: rng.Intn(4), Z: rng.Intn(20)})
	}
	for i := 0; i < edges; i++ {
		a := NodeID(rng.Intn(nodes))
		b := NodeID(rng.Intn(nodes))
		if a == b {
			continue
		}
		w := g.Position(a).Distance(g.Position(b)) * (1 + rng.Float64())
		mustLink(t, g, a, b, w)
	}
	return g
}

// dijkstra returns shortest distances from start to every node.
func dijkstra(t *testing.T, g *Graph, start NodeID) []float64 {
	t.Helper()
	dist := make([]float64, g.Len())
	done := make([]bool, g.Len())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[start] = 0

	for {
		u := NoNode
		for i := range dist {
			if !done[i] && !math.IsInf(dist[i], 1) && (u == NoNode || dist[i] < dist[u]) {
				u = NodeID(i)
			}
		}
		if u == NoNode {
			return dist
		}
		done[u] = true
		for _, v := range g.Neighbors(u) {
			w, err := g.CostFrom(u, v)
			if err != nil {
				t.Fatalf("CostFrom(%d, %d) error = %v", u, v, err)
			}
			if dist[u]+w < dist[v] {
				dist[v] = dist[u] + w
			}
		}
	}
}

func walkCost(t *testing.T, g *Graph, plan *Plan) float64 {
	t.Helper()
	nodes := plan.Nodes()
	total := 0.0
	for i := 1; i < len(nodes); i++ {
		w, err := g.CostFrom(nodes[i-1], nodes[i])
		if err != nil {
			t.Fatalf("plan uses missing edge %d-%d: %v", nodes[i-1], nodes[i], err)
		}
		total += w
	}
	return total
}
