package bounce

import (
	"math"
	"math/rand/v2"
	"slices"
)

// WorldConfig controls the simulation. Zero values for the structural
// fields (SolverPasses, MaxDelta, Radius, Palette, BroadPhaseThreshold) are
// replaced with defaults by NewWorld; the physical knobs (Gravity, Damping,
// Restitution, ...) are taken literally, so a zero Damping really is no
// damping. Start from DefaultConfig for a ready-tuned toy.
type WorldConfig struct {
	// Bounds is the rectangle circles live in: spawn region and walls.
	Bounds Bounds
	// Gravity is the acceleration, in world units per second squared,
	// applied per unit of the input gravity vector.
	Gravity float64
	// Damping is the fraction of velocity lost per second.
	Damping float64
	// MaxSpeed caps circle speed in world units per second. Zero means
	// uncapped.
	MaxSpeed float64
	// Restitution is the circle-circle bounciness. 1 is perfectly elastic.
	Restitution float64
	// WallRestitution is the wall bounciness.
	WallRestitution float64
	// SolverPasses is the number of pairwise resolution passes per step.
	// Velocity impulses apply on the first pass only; later passes do
	// positional correction to settle overlaps the first pass reopened.
	SolverPasses int
	// MaxDelta is the delta-time ceiling in seconds. Large hitches (a
	// backgrounded tab, a debugger pause) are clamped to this so circles
	// can not tunnel through each other or the walls.
	MaxDelta float64
	// Radius is the range spawn radii are drawn from.
	Radius Range
	// Speed is the range of initial speeds for spawned circles.
	Speed Range
	// Palette is the set of colors circles are drawn from.
	Palette []Color
	// BroadPhaseThreshold is the circle count above which the pairwise
	// loop is replaced by the uniform-grid broad phase.
	BroadPhaseThreshold int
	// Slop and Correction tune positional correction; see Resolver.
	Slop       float64
	Correction float64
	// Seed makes spawning reproducible. Zero seeds from entropy.
	Seed uint64
}

// DefaultConfig returns a WorldConfig tuned for a pixel-scale world of the
// given bounds: lively bounces, mild damping, slight energy loss at walls.
func DefaultConfig(bounds Bounds) WorldConfig {
	return WorldConfig{
		Bounds:              bounds,
		Gravity:             900,
		Damping:             0.4,
		MaxSpeed:            1400,
		Restitution:         0.9,
		WallRestitution:     0.85,
		SolverPasses:        3,
		MaxDelta:            1.0 / 30,
		Radius:              Range{12, 40},
		Speed:               Range{0, 80},
		Palette:             DefaultPalette,
		BroadPhaseThreshold: 50,
		Correction:          0.8,
	}
}

// World owns the circles and the walls and runs the per-frame update.
// It is not safe for concurrent use: call Step, PopAt, SpawnAt, and
// BurstAt from a single goroutine, one at a time.
type World struct {
	cfg      WorldConfig
	circles  []*Circle
	resolver Resolver
	grid     *spatialGrid
	pairs    []pairKey
	rng      *rand.Rand
}

// pairKey identifies an unordered circle pair by indices with i < j.
type pairKey struct {
	i, j int
}

// NewWorld creates an empty world. Structural zero fields in cfg are
// filled with defaults; see WorldConfig.
func NewWorld(cfg WorldConfig) *World {
	if cfg.SolverPasses < 1 {
		cfg.SolverPasses = 3
	}
	if cfg.MaxDelta <= 0 {
		cfg.MaxDelta = 1.0 / 30
	}
	if cfg.Radius.Max <= 0 {
		cfg.Radius = Range{12, 40}
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}
	if cfg.BroadPhaseThreshold <= 0 {
		cfg.BroadPhaseThreshold = 50
	}
	if cfg.Correction <= 0 {
		cfg.Correction = 0.8
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	// Circles are indexed by predicted position, so a cell size of one
	// maximum diameter guarantees every colliding pair falls within the
	// 3x3 neighborhood.
	cellSize := 2 * cfg.Radius.Max

	return &World{
		cfg: cfg,
		resolver: Resolver{
			Restitution:     cfg.Restitution,
			WallRestitution: cfg.WallRestitution,
			Slop:            cfg.Slop,
			Correction:      cfg.Correction,
		},
		grid: newSpatialGrid(cfg.Bounds, cellSize),
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
}

// Circles returns the live circle slice for rendering. Treat it as
// read-only, and do not hold it across a PopAt or SpawnAt call.
func (w *World) Circles() []*Circle {
	return w.circles
}

// Count returns the number of live circles.
func (w *World) Count() int {
	return len(w.circles)
}

// Bounds returns the world bounds.
func (w *World) Bounds() Bounds {
	return w.cfg.Bounds
}

// Step advances the simulation by dt seconds under the given gravity
// direction. Gravity components are clamped to [-1, 1] and scaled by the
// configured gravity strength; dt is clamped to MaxDelta.
//
// The frame pipeline is fixed: forces → wall pass → pairwise solver ×
// SolverPasses → integrate → wall pass. The second wall pass catches
// overshoot introduced by integration, so wall containment holds exactly
// at every frame boundary.
func (w *World) Step(dt float64, gravity Vec2) {
	dt = clamp(dt, 0, w.cfg.MaxDelta)
	if dt == 0 || len(w.circles) == 0 {
		return
	}

	gx := clamp(gravity.X, -1, 1) * w.cfg.Gravity
	gy := clamp(gravity.Y, -1, 1) * w.cfg.Gravity

	damp := 1 - w.cfg.Damping*dt
	if damp < 0 {
		damp = 0
	}

	for _, c := range w.circles {
		c.ApplyForce(gx, gy)
		c.Vel.X *= damp
		c.Vel.Y *= damp
		w.clampSpeed(c)
	}

	for _, c := range w.circles {
		w.resolver.ResolveWalls(c, w.cfg.Bounds)
	}

	for pass := 0; pass < w.cfg.SolverPasses; pass++ {
		w.resolvePairs(dt, pass == 0)
	}

	for _, c := range w.circles {
		c.Integrate(dt)
	}

	for _, c := range w.circles {
		w.resolver.ResolveWalls(c, w.cfg.Bounds)
	}
}

// clampSpeed rescales the velocity to MaxSpeed when it exceeds the cap.
func (w *World) clampSpeed(c *Circle) {
	max := w.cfg.MaxSpeed
	if max <= 0 {
		return
	}
	speedSq := c.Vel.X*c.Vel.X + c.Vel.Y*c.Vel.Y
	if speedSq <= max*max {
		return
	}
	scale := max / math.Sqrt(speedSq)
	c.Vel.X *= scale
	c.Vel.Y *= scale
}

// resolvePairs runs one pairwise resolution pass over every unordered
// pair, via the grid broad phase when the circle count warrants it.
// Iteration follows the i<j convention in both paths, so each pair is
// resolved exactly once per pass and the order is deterministic.
func (w *World) resolvePairs(dt float64, applyImpulse bool) {
	n := len(w.circles)
	if n <= w.cfg.BroadPhaseThreshold {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				w.resolver.ResolvePair(w.circles[i], w.circles[j], dt, applyImpulse)
			}
		}
		return
	}

	// Broad phase. Circles are indexed by predicted position, matching
	// the metric ResolvePair detects with. Candidate pairs are collected
	// first and resolved in ascending (i, j) order so the result is
	// identical to the pairwise loop, which only differs by skipping
	// pairs too far apart to touch.
	w.grid.clear()
	for i, c := range w.circles {
		p := c.Predicted(dt)
		w.grid.insert(p.X, p.Y, i)
	}

	w.pairs = w.pairs[:0]
	for i, c := range w.circles {
		p := c.Predicted(dt)
		w.grid.forNeighbors(p.X, p.Y, func(j int) {
			if j > i {
				w.pairs = append(w.pairs, pairKey{i, j})
			}
		})
	}
	slices.SortFunc(w.pairs, func(a, b pairKey) int {
		if a.i != b.i {
			return a.i - b.i
		}
		return a.j - b.j
	})

	for _, p := range w.pairs {
		w.resolver.ResolvePair(w.circles[p.i], w.circles[p.j], dt, applyImpulse)
	}
}

// SpawnInitial places up to count circles at random non-overlapping
// positions, spending at most maxAttempts placement tries in total.
// When the bounds are too crowded to fit them all it returns however many
// were placed; running a fuller-looking toy with fewer circles beats
// failing to start.
func (w *World) SpawnInitial(count, maxAttempts int) int {
	placed := 0
	for attempts := 0; placed < count && attempts < maxAttempts; attempts++ {
		radius := w.randomIn(w.cfg.Radius)
		inner := w.cfg.Bounds.Inset(radius)
		if inner.Width() <= 0 || inner.Height() <= 0 {
			continue
		}
		x := inner.MinX + w.rng.Float64()*inner.Width()
		y := inner.MinY + w.rng.Float64()*inner.Height()

		c := NewCircle(x, y, radius, w.randomColor())
		if w.overlapsAny(c) {
			continue
		}

		speed := w.randomIn(w.cfg.Speed)
		angle := w.rng.Float64() * 2 * math.Pi
		c.Vel.X = math.Cos(angle) * speed
		c.Vel.Y = math.Sin(angle) * speed

		w.circles = append(w.circles, c)
		placed++
	}
	return placed
}

// SpawnAt inserts a new circle centered at (x, y), nudged inside the walls
// if needed. Returns nil without mutating the world when the spot is
// already occupied.
func (w *World) SpawnAt(x, y float64) *Circle {
	radius := w.randomIn(w.cfg.Radius)
	inner := w.cfg.Bounds.Inset(radius)
	if inner.Width() <= 0 || inner.Height() <= 0 {
		return nil
	}
	x = clamp(x, inner.MinX, inner.MaxX)
	y = clamp(y, inner.MinY, inner.MaxY)

	c := NewCircle(x, y, radius, w.randomColor())
	if w.overlapsAny(c) {
		return nil
	}
	w.circles = append(w.circles, c)
	return c
}

// PopAt removes and returns the first circle whose disk contains (x, y),
// or nil if the point hits nothing. Insertion order of the remaining
// circles is preserved.
func (w *World) PopAt(x, y float64) *Circle {
	for i, c := range w.circles {
		if c.Contains(x, y) {
			w.circles = slices.Delete(w.circles, i, i+1)
			return c
		}
	}
	return nil
}

// BurstAt applies a radial impulse centered at (x, y): circles within
// radius are flung outward with strength falling off linearly with
// distance, and lighter circles fly further. Circles sitting on the
// center have no outward direction and are left alone.
func (w *World) BurstAt(x, y, radius, force float64) {
	for _, c := range w.circles {
		dx := c.Pos.X - x
		dy := c.Pos.Y - y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > radius || dist < 1e-6 {
			continue
		}
		strength := force * (1 - dist/radius) / c.Mass()
		c.Vel.X += dx / dist * strength
		c.Vel.Y += dy / dist * strength
	}
}

// overlapsAny reports whether c overlaps any live circle.
func (w *World) overlapsAny(c *Circle) bool {
	for _, other := range w.circles {
		if c.Overlaps(other) {
			return true
		}
	}
	return false
}

// randomIn returns a value drawn uniformly from r using the world's rng.
func (w *World) randomIn(r Range) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + w.rng.Float64()*(r.Max-r.Min)
}

// randomColor picks a color from the configured palette.
func (w *World) randomColor() Color {
	return w.cfg.Palette[w.rng.IntN(len(w.cfg.Palette))]
}
