package model

import "math"

// Point3 represents a 3D machine coordinate in program units.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Dist returns the Euclidean distance between two points.
func (p Point3) Dist(q Point3) float64 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	dz := q.Z - p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxZ float64 `json:"max_z"`
}

// EmptyBounds returns the sentinel box that contains nothing. Folding any
// box into it yields that box.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		MinX: inf, MinY: inf, MinZ: inf,
		MaxX: -inf, MaxY: -inf, MaxZ: -inf,
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY || b.MinZ > b.MaxZ
}

// Include grows the box to contain p.
func (b Bounds) Include(p Point3) Bounds {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MinZ = math.Min(b.MinZ, p.Z)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
	b.MaxZ = math.Max(b.MaxZ, p.Z)
	return b
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MinZ: math.Min(b.MinZ, o.MinZ),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
		MaxZ: math.Max(b.MaxZ, o.MaxZ),
	}
}

// Expand2D grows the box by r in X and Y only.
func (b Bounds) Expand2D(r float64) Bounds {
	if b.IsEmpty() {
		return b
	}
	b.MinX -= r
	b.MinY -= r
	b.MaxX += r
	b.MaxY += r
	return b
}

// Intersects2D reports whether the XY projections of the two boxes overlap.
// Touching edges count as overlap. Z is ignored.
func (b Bounds) Intersects2D(o Bounds) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Contains reports whether o lies entirely inside b. An empty o is
// contained in anything.
func (b Bounds) Contains(o Bounds) bool {
	if o.IsEmpty() {
		return true
	}
	if b.IsEmpty() {
		return false
	}
	return b.MinX <= o.MinX && b.MinY <= o.MinY && b.MinZ <= o.MinZ &&
		b.MaxX >= o.MaxX && b.MaxY >= o.MaxY && b.MaxZ >= o.MaxZ
}

// Width returns the X extent, or 0 for an empty box.
func (b Bounds) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns the Y extent, or 0 for an empty box.
func (b Bounds) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxY - b.MinY
}
