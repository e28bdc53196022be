package bounce

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Colors are cosmetic: they travel with a circle for the renderer's benefit
// and play no role in the physics.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default circle tint.
var ColorWhite = Color{1, 1, 1, 1}

// DefaultPalette is the set of tints circles are drawn from when
// WorldConfig.Palette is empty.
var DefaultPalette = []Color{
	{0.96, 0.35, 0.35, 1}, // red
	{0.98, 0.69, 0.25, 1}, // orange
	{0.99, 0.90, 0.38, 1}, // yellow
	{0.42, 0.84, 0.49, 1}, // green
	{0.35, 0.62, 0.95, 1}, // blue
	{0.65, 0.46, 0.92, 1}, // violet
}

// Vec2 is a 2D vector used for positions, velocities, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Bounds is the axis-aligned rectangle circles live in. The coordinate
// system has its origin at the top-left, with Y increasing downward.
// Bounds double as the spawn region and the wall-collision planes.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Contains reports whether the point (x, y) lies inside the bounds.
// Points on the edge are considered inside.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY
}

// Inset returns the bounds shrunk by d on every side. A circle of radius r
// is fully contained exactly when its center lies within Inset(r).
func (b Bounds) Inset(d float64) Bounds {
	return Bounds{
		MinX: b.MinX + d,
		MinY: b.MinY + d,
		MaxX: b.MaxX - d,
		MaxY: b.MaxY - d,
	}
}

// Range is a general-purpose min/max range, used for spawn radii and
// initial speeds.
type Range struct {
	Min, Max float64
}

// clamp limits v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
