package pathing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// planar drops the height of a block position, keeping the X/Z plane
func planar(v Vector3i) orb.Point {
	return orb.Point{float64(v.X), float64(v.Z)}
}

// EdgesAsFeatureCollection returns every edge as a line string on the X/Z
// plane for visualization. Heights and weight go in the properties.
func EdgesAsFeatureCollection(g *Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, e := range g.edges {
		from := g.nodes[e.nodes[0]].position
		to := g.nodes[e.nodes[1]].position

		f := geojson.NewFeature(orb.LineString{planar(from), planar(to)})
		f.Properties["edge"] = int(e.id)
		f.Properties["weight"] = e.weight
		f.Properties["fromY"] = from.Y
		f.Properties["toY"] = to.Y
		fc.Append(f)
	}

	return fc
}

// PlanAsFeature returns the plan as a single feature on the X/Z plane.
// A one step plan becomes a point.
func PlanAsFeature(plan *Plan) *geojson.Feature {
	positions := plan.Positions()

	var f *geojson.Feature
	if len(positions) == 1 {
		f = geojson.NewFeature(planar(positions[0]))
	} else {
		line := make(orb.LineString, 0, len(positions))
		for _, p := range positions {
			line = append(line, planar(p))
		}
		f = geojson.NewFeature(line)
	}

	heights := make([]int, len(positions))
	for i, p := range positions {
		heights[i] = p.Y
	}
	f.Properties["heights"] = heights
	f.Properties["cost"] = plan.Cost()
	return f
}
