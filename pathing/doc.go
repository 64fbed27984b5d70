// Package pathing finds routes through a weighted graph of block positions.
//
// A Graph is populated through its Builder methods by whatever maps world
// state to topology, then queried with FindPath. Searches use A* with a
// straight-line heuristic and return a Plan whose cursor a movement
// controller steps through. Searches never modify the graph, so several may
// run at once over a graph that is no longer being built (see FindPaths).
package pathing
