package main

import (
	"cmp"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"mcbot-pathing/pathing"
)

// CostZone raises the traversal cost of standing on one position
type CostZone struct {
	Position   pathing.Vector3i `json:"position"`
	Multiplier float64          `json:"multiplier"` // Clamped to >= 1 so the distance heuristic stays admissible
}

// VoxelWorld is a block region as mirrored from the server
type VoxelWorld struct {
	Solid     []pathing.Vector3i `json:"solid"`               // Positions of solid blocks
	CostZones []CostZone         `json:"costZones,omitempty"` // Optional: slow terrain such as water or soul sand
}

// VoxelWorldOptions controls how walkable positions are linked
type VoxelWorldOptions struct {
	AllowDiagonal bool `json:"allowDiagonal"` // Link the four diagonal neighbours at the same height
	MaxStep       int  `json:"maxStep"`       // Largest climb or drop between neighbours, 0 or 1
}

// DefaultVoxelWorldOptions matches how a player moves without jumping gaps
func DefaultVoxelWorldOptions() VoxelWorldOptions {
	return VoxelWorldOptions{AllowDiagonal: true, MaxStep: 1}
}

var (
	up   = pathing.Vector3i{Y: 1}
	down = pathing.Vector3i{Y: -1}
)

// horizontal moves, orthogonal first
var horizontalOffsets = [...]struct {
	dx, dz   int
	diagonal bool
}{
	{dx: 1, dz: 0},
	{dx: -1, dz: 0},
	{dx: 0, dz: 1},
	{dx: 0, dz: -1},
	{dx: 1, dz: 1, diagonal: true},
	{dx: 1, dz: -1, diagonal: true},
	{dx: -1, dz: 1, diagonal: true},
	{dx: -1, dz: -1, diagonal: true},
}

// voxelIndex answers block queries for the builder
type voxelIndex struct {
	solid map[pathing.Vector3i]bool
	cost  map[pathing.Vector3i]float64
}

func newVoxelIndex(world VoxelWorld) *voxelIndex {
	idx := &voxelIndex{
		solid: make(map[pathing.Vector3i]bool, len(world.Solid)),
		cost:  make(map[pathing.Vector3i]float64, len(world.CostZones)),
	}
	for _, p := range world.Solid {
		idx.solid[p] = true
	}
	for _, zone := range world.CostZones {
		idx.cost[zone.Position] = zone.Multiplier
	}
	return idx
}

func (v *voxelIndex) isSolid(p pathing.Vector3i) bool { return v.solid[p] }

func (v *voxelIndex) isAir(p pathing.Vector3i) bool { return !v.solid[p] }

// isWalkable checks that a player fits at p: two air blocks on top of a solid one
func (v *voxelIndex) isWalkable(p pathing.Vector3i) bool {
	return v.isAir(p) && v.isAir(p.Add(up)) && v.isSolid(p.Add(down))
}

// multiplier returns the cost multiplier for standing at p
func (v *voxelIndex) multiplier(p pathing.Vector3i) float64 {
	m, ok := v.cost[p]
	if !ok || math.IsNaN(m) || m < 1 {
		return 1
	}
	return m
}

// canMove checks the clearance needed between p and q. q must be walkable
// and one horizontal step away. Pairs are only checked from the lower end:
// the cell above the lower head is the one both climbing and dropping need.
func (v *voxelIndex) canMove(p, q pathing.Vector3i, diagonal bool) bool {
	dy := q.Y - p.Y

	if diagonal {
		if dy != 0 {
			return false
		}
		// Avoid cutting corners: both orthogonal cells need head room
		a := pathing.Vector3i{X: q.X, Y: p.Y, Z: p.Z}
		b := pathing.Vector3i{X: p.X, Y: p.Y, Z: q.Z}
		return v.isAir(a) && v.isAir(a.Add(up)) && v.isAir(b) && v.isAir(b.Add(up))
	}

	if dy > 0 {
		// Jumping up needs the block above the head free
		return v.isAir(p.Add(pathing.Vector3i{Y: 2}))
	}
	return true
}

// BuildVoxelGraph creates a navigation graph from a block region.
// Every walkable position becomes a node; neighbours a player can move
// between are linked with their Euclidean distance times the cost multiplier.
func BuildVoxelGraph(world VoxelWorld, opts VoxelWorldOptions) (*pathing.Graph, error) {
	return populateGraph(pathing.NewGraph(), world, opts)
}

// populateGraph fills any builder with the topology of world
func populateGraph(builder pathing.Builder, world VoxelWorld, opts VoxelWorldOptions) (*pathing.Graph, error) {
	startTime := time.Now()
	log.Printf("🧱 Building voxel graph from %d solid blocks...\n", len(world.Solid))

	if opts.MaxStep < 0 || opts.MaxStep > 1 {
		return nil, fmt.Errorf("invalid maxStep %d: must be 0 or 1", opts.MaxStep)
	}

	voxels := newVoxelIndex(world)

	// Step 1: every air pocket resting on a solid block is a candidate
	walkable := make([]pathing.Vector3i, 0, len(world.Solid))
	seen := make(map[pathing.Vector3i]bool, len(world.Solid))
	for _, block := range world.Solid {
		p := block.Add(up)
		if seen[p] {
			continue
		}
		seen[p] = true
		if voxels.isWalkable(p) {
			walkable = append(walkable, p)
		}
	}

	// Sort so node ids do not depend on input order
	slices.SortFunc(walkable, comparePositions)

	ids := make(map[pathing.Vector3i]pathing.NodeID, len(walkable))
	for _, p := range walkable {
		id, _ := builder.AddNode(p)
		ids[p] = id
	}
	log.Printf("   Walkable positions: %d\n", len(walkable))

	// Step 2: link neighbours
	edgeCount := 0
	for _, p := range walkable {
		from := ids[p]
		for _, offset := range horizontalOffsets {
			if offset.diagonal && !opts.AllowDiagonal {
				continue
			}
			// Lower ids sit lower, so only level and climbing moves are looked at
			for dy := 0; dy <= opts.MaxStep; dy++ {
				q := p.Add(pathing.Vector3i{X: offset.dx, Y: dy, Z: offset.dz})
				to, ok := ids[q]
				// Each pair is visited from both ends, link it once
				if !ok || to <= from {
					continue
				}
				if !voxels.canMove(p, q, offset.diagonal) {
					continue
				}

				weight := p.Distance(q) * max(voxels.multiplier(p), voxels.multiplier(q))
				if _, err := builder.LinkNodes(from, to, weight); err != nil {
					return nil, fmt.Errorf("failed to link %v and %v: %w", p, q, err)
				}
				edgeCount++
			}
		}
	}

	graph, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	elapsed := time.Since(startTime)
	log.Printf("   ✅ Voxel graph built: %d nodes, %d edges\n", graph.Len(), edgeCount)
	log.Printf("   ⏱️  Build time: %.2f seconds\n", elapsed.Seconds())

	return graph, nil
}

// comparePositions orders positions by Y, then X, then Z
func comparePositions(a, b pathing.Vector3i) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}
