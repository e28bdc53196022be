package bounce

import (
	"math"
	"testing"
)

// quietConfig returns a config with no gravity, damping, or speed cap, so
// tests observe only the effect under test.
func quietConfig(bounds Bounds) WorldConfig {
	return WorldConfig{
		Bounds:          bounds,
		Restitution:     1,
		WallRestitution: 1,
		Seed:            1,
	}
}

func TestSpawnInitialPlacesRequestedCount(t *testing.T) {
	cfg := quietConfig(Bounds{MaxX: 1000, MaxY: 1000})
	cfg.Radius = Range{5, 10}
	w := NewWorld(cfg)

	placed := w.SpawnInitial(30, 10000)
	if placed != 30 {
		t.Fatalf("placed = %d, want 30", placed)
	}
	if w.Count() != 30 {
		t.Fatalf("Count() = %d, want 30", w.Count())
	}

	for i, a := range w.Circles() {
		for _, b := range w.Circles()[i+1:] {
			if a.Overlaps(b) {
				t.Fatalf("spawned circles overlap: %v and %v", a.Pos, b.Pos)
			}
		}
	}
}

func TestSpawnInitialSaturationYieldsFewer(t *testing.T) {
	// Bounds far too small for the request: spawn must stop at the
	// attempt budget and report what fit, not fail.
	cfg := quietConfig(Bounds{MaxX: 50, MaxY: 50})
	cfg.Radius = Range{10, 10}
	w := NewWorld(cfg)

	placed := w.SpawnInitial(100, 2000)
	if placed >= 100 {
		t.Fatalf("placed = %d, expected saturation below 100", placed)
	}
	if placed == 0 {
		t.Fatal("expected at least one circle to fit")
	}
	if placed != w.Count() {
		t.Errorf("placed = %d but Count() = %d", placed, w.Count())
	}
}

func TestSpawnInitialKeepsCirclesInBounds(t *testing.T) {
	bounds := Bounds{MaxX: 200, MaxY: 200}
	cfg := quietConfig(bounds)
	cfg.Radius = Range{5, 20}
	w := NewWorld(cfg)
	w.SpawnInitial(20, 10000)

	for _, c := range w.Circles() {
		if !inBounds(c, bounds) {
			t.Errorf("circle at %v radius %v spawned out of bounds", c.Pos, c.Radius)
		}
	}
}

func TestStepKeepsCirclesContained(t *testing.T) {
	bounds := Bounds{MaxX: 300, MaxY: 300}
	cfg := quietConfig(bounds)
	cfg.Gravity = 900
	cfg.Radius = Range{8, 16}
	w := NewWorld(cfg)
	w.SpawnInitial(25, 10000)

	// Long shake: gravity direction rotates each frame.
	for frame := 0; frame < 600; frame++ {
		angle := float64(frame) * 0.1
		w.Step(1.0/60, Vec2{X: math.Cos(angle), Y: math.Sin(angle)})

		for _, c := range w.Circles() {
			if !inBounds(c, bounds) {
				t.Fatalf("frame %d: circle at %v radius %v escaped bounds", frame, c.Pos, c.Radius)
			}
		}
	}
}

func TestStepNoInteractionIsIdentity(t *testing.T) {
	// Two separated, stationary circles, zero gravity and damping:
	// a step must change nothing.
	w := NewWorld(quietConfig(Bounds{MaxX: 100, MaxY: 100}))
	a := NewCircle(25, 50, 5, ColorWhite)
	b := NewCircle(75, 50, 5, ColorWhite)
	w.circles = append(w.circles, a, b)

	w.Step(1.0/60, Vec2{})

	if a.Pos != (Vec2{X: 25, Y: 50}) || a.Vel != (Vec2{}) {
		t.Errorf("a changed: pos=%v vel=%v", a.Pos, a.Vel)
	}
	if b.Pos != (Vec2{X: 75, Y: 50}) || b.Vel != (Vec2{}) {
		t.Errorf("b changed: pos=%v vel=%v", b.Pos, b.Vel)
	}
}

func TestStepClampsDelta(t *testing.T) {
	cfg := quietConfig(Bounds{MaxX: 10000, MaxY: 10000})
	cfg.MaxDelta = 1.0 / 30
	w := NewWorld(cfg)
	c := NewCircle(5000, 5000, 10, ColorWhite)
	c.Vel = Vec2{X: 300}
	w.circles = append(w.circles, c)

	// A ten-second hitch must advance at most MaxDelta's worth.
	w.Step(10, Vec2{})

	moved := c.Pos.X - 5000
	want := 300 * (1.0 / 30)
	if math.Abs(moved-want) > 1e-9 {
		t.Errorf("moved %v, want %v (dt clamped)", moved, want)
	}
}

func TestStepNegativeDeltaIgnored(t *testing.T) {
	w := NewWorld(quietConfig(Bounds{MaxX: 100, MaxY: 100}))
	c := NewCircle(50, 50, 5, ColorWhite)
	c.Vel = Vec2{X: 10}
	w.circles = append(w.circles, c)

	w.Step(-1, Vec2{})
	if c.Pos != (Vec2{X: 50, Y: 50}) {
		t.Errorf("position changed on negative dt: %v", c.Pos)
	}
}

func TestStepClampsGravityComponents(t *testing.T) {
	cfg := quietConfig(Bounds{MaxX: 1000, MaxY: 1000})
	cfg.Gravity = 100
	w := NewWorld(cfg)
	c := NewCircle(500, 500, 5, ColorWhite)
	w.circles = append(w.circles, c)

	// Component 50 must behave exactly like component 1.
	w.Step(0.01, Vec2{X: 50})
	if math.Abs(c.Vel.X-100*0.01) > 1e-9 {
		t.Errorf("Vel.X = %v, want %v (gravity component clamped to 1)", c.Vel.X, 100*0.01)
	}
}

func TestStepHeadOnCollisionThroughWorld(t *testing.T) {
	// The head-on pair run through the full pipeline: equal circles
	// closing on each other swap velocities.
	w := NewWorld(quietConfig(Bounds{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}))
	a := NewCircle(-1.05, 0, 1, ColorWhite)
	b := NewCircle(1.05, 0, 1, ColorWhite)
	a.Vel = Vec2{X: 2}
	b.Vel = Vec2{X: -2}
	w.circles = append(w.circles, a, b)

	w.Step(1.0/30, Vec2{})

	const tol = 1e-9
	if math.Abs(a.Vel.X+2) > tol {
		t.Errorf("a.Vel.X = %v, want -2", a.Vel.X)
	}
	if math.Abs(b.Vel.X-2) > tol {
		t.Errorf("b.Vel.X = %v, want 2", b.Vel.X)
	}
}

func TestBroadPhaseMatchesPairwiseSinglePass(t *testing.T) {
	// An overlapping lattice resolved once through the pairwise loop and
	// once through the grid broad phase must come out identical: the
	// candidate sets cover the same touching pairs and both paths resolve
	// them in ascending (i, j) order.
	build := func(threshold int) *World {
		cfg := quietConfig(Bounds{MaxX: 200, MaxY: 200})
		cfg.Radius = Range{6, 6}
		cfg.BroadPhaseThreshold = threshold
		w := NewWorld(cfg)
		for row := 0; row < 4; row++ {
			for col := 0; col < 5; col++ {
				// Spacing 11 with radius 6: neighbors overlap by 1.
				c := NewCircle(20+float64(col)*11, 20+float64(row)*11, 6, ColorWhite)
				w.circles = append(w.circles, c)
			}
		}
		return w
	}

	pairwise := build(1000) // stays on the O(n²) loop
	gridded := build(1)     // forced onto the grid
	pairwise.resolvePairs(1.0/60, true)
	gridded.resolvePairs(1.0/60, true)

	for i := range pairwise.circles {
		p, g := pairwise.circles[i], gridded.circles[i]
		if p.Pos != g.Pos {
			t.Fatalf("circle %d position: pairwise %v, grid %v", i, p.Pos, g.Pos)
		}
		if p.Vel != g.Vel {
			t.Fatalf("circle %d velocity: pairwise %v, grid %v", i, p.Vel, g.Vel)
		}
	}
}

func TestBroadPhaseLongRunStaysContained(t *testing.T) {
	bounds := Bounds{MaxX: 500, MaxY: 500}
	cfg := quietConfig(bounds)
	cfg.Gravity = 600
	cfg.Damping = 0.5
	cfg.Radius = Range{6, 12}
	cfg.BroadPhaseThreshold = 1 // grid path throughout
	w := NewWorld(cfg)
	w.SpawnInitial(80, 40000)

	for frame := 0; frame < 300; frame++ {
		w.Step(1.0/60, Vec2{Y: 1})
	}

	for _, c := range w.Circles() {
		if math.IsNaN(c.Pos.X) || math.IsNaN(c.Pos.Y) {
			t.Fatal("position went NaN")
		}
		if !inBounds(c, bounds) {
			t.Fatalf("circle at %v radius %v escaped bounds", c.Pos, c.Radius)
		}
	}
}

func TestPopAtRemovesHitCircle(t *testing.T) {
	w := NewWorld(quietConfig(Bounds{MaxX: 100, MaxY: 100}))
	a := NewCircle(20, 20, 5, ColorWhite)
	b := NewCircle(60, 60, 5, ColorWhite)
	w.circles = append(w.circles, a, b)

	got := w.PopAt(22, 21)
	if got != a {
		t.Fatalf("PopAt returned %v, want first circle", got)
	}
	if w.Count() != 1 || w.Circles()[0] != b {
		t.Errorf("remaining circles wrong: count=%d", w.Count())
	}

	if w.PopAt(5, 5) != nil {
		t.Error("PopAt on empty space should return nil")
	}
	if w.Count() != 1 {
		t.Errorf("Count changed on missed pop: %d", w.Count())
	}
}

func TestSpawnAtRejectsOccupiedSpot(t *testing.T) {
	cfg := quietConfig(Bounds{MaxX: 200, MaxY: 200})
	cfg.Radius = Range{10, 10}
	w := NewWorld(cfg)

	first := w.SpawnAt(100, 100)
	if first == nil {
		t.Fatal("spawn in empty world failed")
	}
	if w.SpawnAt(100, 100) != nil {
		t.Error("spawn on top of existing circle should fail")
	}
	if w.Count() != 1 {
		t.Errorf("Count = %d, want 1", w.Count())
	}
}

func TestSpawnAtNudgesInsideWalls(t *testing.T) {
	cfg := quietConfig(Bounds{MaxX: 200, MaxY: 200})
	cfg.Radius = Range{10, 10}
	w := NewWorld(cfg)

	c := w.SpawnAt(0, 0)
	if c == nil {
		t.Fatal("corner spawn failed")
	}
	if !inBounds(c, w.Bounds()) {
		t.Errorf("corner spawn left circle out of bounds: %v", c.Pos)
	}
}

func TestBurstAtFlingsOutward(t *testing.T) {
	w := NewWorld(quietConfig(Bounds{MaxX: 400, MaxY: 400}))
	near := NewCircle(210, 200, 5, ColorWhite)
	far := NewCircle(300, 200, 5, ColorWhite)
	outside := NewCircle(390, 200, 5, ColorWhite)
	w.circles = append(w.circles, near, far, outside)

	w.BurstAt(200, 200, 150, 1000)

	if near.Vel.X <= 0 {
		t.Errorf("near circle Vel.X = %v, want outward (positive)", near.Vel.X)
	}
	if far.Vel.X <= 0 {
		t.Errorf("far circle Vel.X = %v, want outward (positive)", far.Vel.X)
	}
	if near.Vel.X <= far.Vel.X {
		t.Errorf("falloff inverted: near %v <= far %v", near.Vel.X, far.Vel.X)
	}
	if outside.Vel != (Vec2{}) {
		t.Errorf("circle outside blast radius moved: %v", outside.Vel)
	}
}

func TestSeededWorldsAreReproducible(t *testing.T) {
	spawn := func() []Vec2 {
		cfg := quietConfig(Bounds{MaxX: 500, MaxY: 500})
		cfg.Seed = 42
		w := NewWorld(cfg)
		w.SpawnInitial(15, 5000)
		out := make([]Vec2, w.Count())
		for i, c := range w.Circles() {
			out[i] = c.Pos
		}
		return out
	}

	first := spawn()
	second := spawn()
	if len(first) != len(second) {
		t.Fatalf("counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("circle %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

// inBounds reports whether c lies inside b. The epsilon absorbs the
// rounding of (bound - r) + r, which can land one ulp past the bound.
func inBounds(c *Circle, b Bounds) bool {
	const eps = 1e-9
	return c.Pos.X-c.Radius >= b.MinX-eps && c.Pos.X+c.Radius <= b.MaxX+eps &&
		c.Pos.Y-c.Radius >= b.MinY-eps && c.Pos.Y+c.Radius <= b.MaxY+eps
}
