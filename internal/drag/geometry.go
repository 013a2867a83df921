package drag

import "math"

// Point is a pointer location in host layout coordinates. Y grows downward.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned region in host layout coordinates.
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Contains reports whether the point lies inside the rectangle. Edges count
// as inside so adjacent cell-grid regions stay reachable.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// ContainsY reports whether the Y coordinate falls within the vertical span.
func (r Rect) ContainsY(y float64) bool {
	return y >= r.MinY && y <= r.MaxY
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Area returns the covered area.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// CornerDistance returns the Euclidean distance from the point to the
// nearest corner of the rectangle.
func (r Rect) CornerDistance(p Point) float64 {
	corners := [4]Point{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MinX, Y: r.MaxY},
		{X: r.MaxX, Y: r.MaxY},
	}
	best := math.Inf(1)
	for _, corner := range corners {
		dx := p.X - corner.X
		dy := p.Y - corner.Y
		if d := math.Hypot(dx, dy); d < best {
			best = d
		}
	}
	return best
}
