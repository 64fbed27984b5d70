package pathing

import (
	"fmt"
)

// planningNode is the per-search bookkeeping for one graph node
type planningNode struct {
	node      NodeID
	goalCost  float64 // Cost from start to this node
	heuristic float64 // Straight-line distance to the goal
	fitness   float64 // goalCost + heuristic
	closed    bool
	previous  int // Index of the previous planning node, -1 for the start
}

// setPrevious re-parents p and recomputes its costs. The heuristic is fixed
// at creation and is not touched here.
func (p *planningNode) setPrevious(previous int, goalCost float64) {
	p.previous = previous
	p.goalCost = goalCost
	p.fitness = p.goalCost + p.heuristic
}

// openEntry is a queued planning node with the fitness it had when pushed.
// A node improved after being queued is pushed again; the older entry is
// left in the heap and dropped when it surfaces.
type openEntry struct {
	index   int
	fitness float64
}

// SearchStats reports how much work a search did.
type SearchStats struct {
	Expanded int `json:"expandedNodes"` // Nodes closed
	Created  int `json:"createdNodes"`  // Planning nodes allocated, at most one per graph node
}

// search holds the state of one A* invocation
type search struct {
	graph  *Graph
	goal   NodeID
	goalAt Vector3i
	nodes  []planningNode
	byNode map[NodeID]int
	open   *PriorityQueue[openEntry]
}

func newSearch(g *Graph, goal NodeID) *search {
	return &search{
		graph:  g,
		goal:   goal,
		goalAt: g.nodes[goal].position,
		byNode: make(map[NodeID]int),
		open: NewPriorityQueue(func(a, b openEntry) bool {
			return a.fitness < b.fitness
		}),
	}
}

// create allocates the planning node for id. It has no previous node yet.
func (s *search) create(id NodeID) int {
	h := s.graph.nodes[id].position.Distance(s.goalAt)
	s.nodes = append(s.nodes, planningNode{
		node:      id,
		heuristic: h,
		fitness:   h,
		previous:  -1,
	})
	index := len(s.nodes) - 1
	s.byNode[id] = index
	return index
}

func (s *search) push(index int) {
	s.open.Push(openEntry{index: index, fitness: s.nodes[index].fitness})
}

// Search runs A* from start to goal over g.
//
// The returned plan includes start. Among candidates of equal fitness the
// expansion order is unspecified. When the open set empties first the error
// is ErrNoPath.
func Search(g *Graph, start, goal NodeID) (*Plan, SearchStats, error) {
	if !g.has(start) || !g.has(goal) {
		return nil, SearchStats{}, fmt.Errorf("%w: search %d -> %d", ErrUnknownNode, start, goal)
	}

	s := newSearch(g, goal)
	s.push(s.create(start))

	stats := SearchStats{}
	for !s.open.Empty() {
		entry, _ := s.open.Pop()
		currentIdx := entry.index
		if s.nodes[currentIdx].closed || entry.fitness > s.nodes[currentIdx].fitness {
			continue
		}

		// Check if we reached the goal
		if s.nodes[currentIdx].node == goal {
			stats.Created = len(s.nodes)
			return s.buildPlan(currentIdx), stats, nil
		}

		s.nodes[currentIdx].closed = true
		stats.Expanded++

		current := s.nodes[currentIdx]
		for _, neighbor := range g.Neighbors(current.node) {
			neighborIdx, seen := s.byNode[neighbor]
			if seen && s.nodes[neighborIdx].closed {
				continue
			}

			step, err := g.CostFrom(current.node, neighbor)
			if err != nil {
				stats.Created = len(s.nodes)
				return nil, stats, fmt.Errorf("expanding node %d: %w", current.node, err)
			}
			tentative := current.goalCost + step

			if !seen {
				neighborIdx = s.create(neighbor)
			} else if tentative >= s.nodes[neighborIdx].goalCost {
				continue
			}

			s.nodes[neighborIdx].setPrevious(currentIdx, tentative)
			s.push(neighborIdx)
		}
	}

	stats.Created = len(s.nodes)
	return nil, stats, ErrNoPath
}

// buildPlan backtraces from the goal through previous links and reverses the
// result into a plan.
func (s *search) buildPlan(goalIdx int) *Plan {
	var reversed []int
	for idx := goalIdx; idx != -1; idx = s.nodes[idx].previous {
		reversed = append(reversed, idx)
	}

	plan := newPlan()
	for i := len(reversed) - 1; i >= 0; i-- {
		pn := s.nodes[reversed[i]]
		plan.addNode(Waypoint{Node: pn.node, Position: s.graph.nodes[pn.node].position})
	}
	plan.cost = s.nodes[goalIdx].goalCost
	return plan
}
