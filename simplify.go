package main

import (
	"math"

	"mcbot-pathing/pathing"
)

// SimplifyPath reduces the number of waypoints using the Douglas-Peucker
// algorithm. With epsilon 0 only waypoints lying exactly on a straight run
// are dropped, so the result never leaves the original route.
func SimplifyPath(path []pathing.Vector3i, epsilon float64) []pathing.Vector3i {
	if len(path) <= 2 {
		return path
	}
	return douglasPeucker(path, epsilon)
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points []pathing.Vector3i, epsilon float64) []pathing.Vector3i {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from line between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		// Combine results (removing duplicate point at index)
		result := make([]pathing.Vector3i, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points in between can be discarded
	return []pathing.Vector3i{points[0], points[end]}
}

// perpendicularDistance calculates the distance from point to the line
// through lineStart and lineEnd
func perpendicularDistance(point, lineStart, lineEnd pathing.Vector3i) float64 {
	d := lineEnd.Sub(lineStart)
	v := point.Sub(lineStart)

	mag := d.Length()
	if mag == 0 {
		return v.Length()
	}

	// |v x d| / |d|
	cx := float64(v.Y*d.Z - v.Z*d.Y)
	cy := float64(v.Z*d.X - v.X*d.Z)
	cz := float64(v.X*d.Y - v.Y*d.X)
	return math.Sqrt(cx*cx+cy*cy+cz*cz) / mag
}
