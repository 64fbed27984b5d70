package pathing

import (
	"fmt"
	"math"
)

// Vector3i is a discrete block position in the world.
type Vector3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the component-wise sum of v and o.
func (v Vector3i) Add(o Vector3i) Vector3i {
	return Vector3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vector3i) Sub(o Vector3i) Vector3i {
	return Vector3i{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Length returns the Euclidean length of v.
func (v Vector3i) Length() float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// Distance calculates Euclidean distance between two positions
func (v Vector3i) Distance(other Vector3i) float64 {
	return v.Sub(other).Length()
}

func (v Vector3i) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}
