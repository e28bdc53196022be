// Package bounce is a small 2D circle-physics core: colored disks moving
// under a tunable gravity vector, bouncing off rectangular walls and
// colliding elastically with each other.
//
// The package is renderer-agnostic. It owns no window, no canvas, and no
// input device: a host drives the simulation by calling [World.Step] once
// per frame with a delta-time and the latest gravity direction, then reads
// each circle's position, radius, and color back for drawing.
//
// # Quick start
//
//	world := bounce.NewWorld(bounce.DefaultConfig(bounce.Bounds{
//		MaxX: 1280, MaxY: 720,
//	}))
//	world.SpawnInitial(40, 4000)
//
//	// each frame:
//	world.Step(dt, bounce.Vec2{X: tiltX, Y: tiltY})
//	for _, c := range world.Circles() {
//		drawDisk(c.Pos.X, c.Pos.Y, c.Radius, c.Color)
//	}
//
// # Simulation model
//
// Each circle carries a position, a velocity, a fixed radius, and a mass
// derived from that radius (m = r²). A frame runs a fixed pipeline:
// clamp dt, apply gravity and damping, resolve wall overlap, run the
// pairwise collision solver for a fixed number of passes, integrate with
// semi-implicit Euler, then resolve walls once more to catch integration
// overshoot. Pairwise collisions use predicted positions (x + v·dt) for
// detection so fast circles do not tunnel through each other, mass-weighted
// positional correction to remove interpenetration, and an impulse response
// with configurable restitution.
//
// Above a configurable circle count the solver switches from the O(n²)
// pairwise loop to a uniform spatial grid rebuilt each frame.
//
// The package performs no I/O, spawns no goroutines, and is safe for the
// usual game-loop discipline: one Step call at a time, with [World.PopAt],
// [World.SpawnAt], and [World.BurstAt] called between steps, never during.
//
// Runnable demos live under demos/: an interactive [Ebitengine] toy and a
// headless world streamed to browsers over a websocket.
//
// [Ebitengine]: https://ebitengine.org
package bounce
