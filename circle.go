package bounce

// Circle is a rigid disk. Position and velocity are mutated by the World
// each step; Radius and Color are fixed at creation. Mass is derived from
// the radius and never stored, so the two can not drift apart.
type Circle struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Color  Color

	// Accumulated acceleration, applied and cleared by Integrate.
	accel Vec2
}

// NewCircle creates a circle at (x, y) with the given radius and color.
func NewCircle(x, y, radius float64, color Color) *Circle {
	return &Circle{
		Pos:    Vec2{X: x, Y: y},
		Radius: radius,
		Color:  color,
	}
}

// Mass returns the circle's mass, defined as radius squared.
func (c *Circle) Mass() float64 {
	return c.Radius * c.Radius
}

// ApplyForce accumulates an acceleration to be applied at the next
// Integrate call. Position and velocity are untouched until then.
func (c *Circle) ApplyForce(ax, ay float64) {
	c.accel.X += ax
	c.accel.Y += ay
}

// Integrate advances the circle by dt seconds using semi-implicit Euler
// (velocity first, then position) and clears the accumulated acceleration.
func (c *Circle) Integrate(dt float64) {
	c.Vel.X += c.accel.X * dt
	c.Vel.Y += c.accel.Y * dt
	c.Pos.X += c.Vel.X * dt
	c.Pos.Y += c.Vel.Y * dt
	c.accel = Vec2{}
}

// Predicted returns the circle's position dt seconds ahead at its current
// velocity. Collision detection uses predicted positions so that fast
// circles are caught before they pass through each other.
func (c *Circle) Predicted(dt float64) Vec2 {
	return Vec2{
		X: c.Pos.X + c.Vel.X*dt,
		Y: c.Pos.Y + c.Vel.Y*dt,
	}
}

// Contains reports whether the point (x, y) lies inside the disk.
// Points on the edge are considered inside.
func (c *Circle) Contains(x, y float64) bool {
	dx := x - c.Pos.X
	dy := y - c.Pos.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Overlaps reports whether c and other overlap at their current positions.
func (c *Circle) Overlaps(other *Circle) bool {
	dx := other.Pos.X - c.Pos.X
	dy := other.Pos.Y - c.Pos.Y
	minDist := c.Radius + other.Radius
	return dx*dx+dy*dy < minDist*minDist
}
