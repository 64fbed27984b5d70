package pathing

import (
	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the half extent of the box stored for each node.
const pointTolerance = 0.01

// nodeEntry wraps a node for R-tree storage
type nodeEntry struct {
	ID       NodeID
	Position Vector3i
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SpatialIndex answers nearest node queries over block positions
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex creates a new spatial index
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{tree: rtreego.NewTree(3, 25, 50)} // 3D, min 25, max 50 entries per node
}

// Insert adds a node to the index.
func (si *SpatialIndex) Insert(id NodeID, position Vector3i) {
	bbox, err := boxAround(position, pointTolerance)
	if err != nil {
		return
	}
	si.tree.Insert(&nodeEntry{ID: id, Position: position, BBox: bbox})
}

// Size returns the number of indexed nodes.
func (si *SpatialIndex) Size() int {
	return si.tree.Size()
}

// Nearest returns the indexed node closest to position.
//
// The tree ranks candidates by distance to their boxes, so the first answer is
// only close to optimal. Every node inside the sphere it implies is then
// compared by exact distance.
func (si *SpatialIndex) Nearest(position Vector3i) (NodeID, bool) {
	if si.tree.Size() == 0 {
		return NoNode, false
	}

	query := rtreego.Point{float64(position.X), float64(position.Y), float64(position.Z)}
	best, ok := si.tree.NearestNeighbor(query).(*nodeEntry)
	if !ok || best == nil {
		return NoNode, false
	}
	bestDist := best.Position.Distance(position)

	region, err := rtreego.NewRect(
		rtreego.Point{query[0] - bestDist - pointTolerance, query[1] - bestDist - pointTolerance, query[2] - bestDist - pointTolerance},
		[]float64{2 * (bestDist + pointTolerance), 2 * (bestDist + pointTolerance), 2 * (bestDist + pointTolerance)},
	)
	if err != nil {
		return best.ID, true
	}

	for _, item := range si.tree.SearchIntersect(region) {
		entry := item.(*nodeEntry)
		dist := entry.Position.Distance(position)
		if dist < bestDist || (dist == bestDist && entry.ID < best.ID) {
			best = entry
			bestDist = dist
		}
	}

	return best.ID, true
}

// boxAround computes the axis-aligned box of half extent tol centred on position
func boxAround(position Vector3i, tol float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{float64(position.X) - tol, float64(position.Y) - tol, float64(position.Z) - tol},
		[]float64{2 * tol, 2 * tol, 2 * tol},
	)
}
