package bounce

import "math"

// minSeparationSq is the squared center distance below which a pair is
// considered coincident and skipped: there is no defined collision normal,
// so the pair is left for a later frame once positions diverge.
const minSeparationSq = 1e-9

// Resolver detects and resolves circle overlap. It is stateless between
// calls; the World owns one and feeds it pairs and walls each step.
type Resolver struct {
	// Restitution is the fraction of relative normal velocity preserved
	// in a circle-circle collision. 1 is perfectly elastic.
	Restitution float64
	// WallRestitution is the fraction of the velocity component preserved
	// when reflecting off a wall.
	WallRestitution float64
	// Slop is the penetration depth tolerated before positional
	// correction kicks in. Keeps resting contacts from jittering.
	Slop float64
	// Correction is the fraction of (penetration - Slop) removed per
	// solver pass. Values below 1 converge over passes instead of
	// over-correcting in one.
	Correction float64
}

// ResolveWalls clamps c inside bounds, reflecting the velocity component
// along each violated axis. Axes are resolved independently: a circle in a
// corner bounces off both walls.
func (r *Resolver) ResolveWalls(c *Circle, bounds Bounds) {
	if c.Pos.X-c.Radius < bounds.MinX {
		c.Pos.X = bounds.MinX + c.Radius
		c.Vel.X = math.Abs(c.Vel.X) * r.WallRestitution
	} else if c.Pos.X+c.Radius > bounds.MaxX {
		c.Pos.X = bounds.MaxX - c.Radius
		c.Vel.X = -math.Abs(c.Vel.X) * r.WallRestitution
	}

	if c.Pos.Y-c.Radius < bounds.MinY {
		c.Pos.Y = bounds.MinY + c.Radius
		c.Vel.Y = math.Abs(c.Vel.Y) * r.WallRestitution
	} else if c.Pos.Y+c.Radius > bounds.MaxY {
		c.Pos.Y = bounds.MaxY - c.Radius
		c.Vel.Y = -math.Abs(c.Vel.Y) * r.WallRestitution
	}
}

// ResolvePair resolves overlap between a and b using their positions dt
// seconds ahead for both the overlap test and the collision normal.
// Positional correction pushes the circles apart along the normal, split
// inversely by mass. When applyImpulse is true an impulse exchange is also
// applied, unless the pair is already separating. Reports whether the pair
// was overlapping.
func (r *Resolver) ResolvePair(a, b *Circle, dt float64, applyImpulse bool) bool {
	pa := a.Predicted(dt)
	pb := b.Predicted(dt)

	dx := pb.X - pa.X
	dy := pb.Y - pa.Y
	distSq := dx*dx + dy*dy
	minDist := a.Radius + b.Radius
	if distSq >= minDist*minDist || distSq < minSeparationSq {
		return false
	}

	dist := math.Sqrt(distSq)
	nx := dx / dist
	ny := dy / dist

	massA := a.Mass()
	massB := b.Mass()
	totalMass := massA + massB

	// Positional correction: heavier circle moves less.
	penetration := minDist - dist
	corr := (penetration - r.Slop) * r.Correction
	if corr > 0 {
		a.Pos.X -= nx * corr * (massB / totalMass)
		a.Pos.Y -= ny * corr * (massB / totalMass)
		b.Pos.X += nx * corr * (massA / totalMass)
		b.Pos.Y += ny * corr * (massA / totalMass)
	}

	if !applyImpulse {
		return true
	}

	// Relative velocity of b with respect to a, along the normal.
	// Positive means the pair is already separating; pulling them back
	// together would add energy, so skip.
	relVel := (b.Vel.X-a.Vel.X)*nx + (b.Vel.Y-a.Vel.Y)*ny
	if relVel > 0 {
		return true
	}

	j := -(1 + r.Restitution) * relVel / (1/massA + 1/massB)
	a.Vel.X -= j * nx / massA
	a.Vel.Y -= j * ny / massA
	b.Vel.X += j * nx / massB
	b.Vel.Y += j * ny / massB
	return true
}
