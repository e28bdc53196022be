// bounce is the interactive circle toy: tilt gravity with the mouse,
// left-click to pop or spawn circles, right-click for a radial blast.
package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/bounce"
)

const (
	screenW = 1280
	screenH = 720

	circleCount = 35
	spawnTries  = 8000

	// BurstAt divides by mass (r²), so the force is sized for the
	// default 12-40px radius range.
	blastRadius = 300.0
	blastForce  = 150000.0

	popInDuration  = 0.35
	popOutDuration = 0.25
)

// popEffect is the short shockwave left behind by a popped circle: the
// ring scales up while fading out.
type popEffect struct {
	x, y, radius float64
	color        bounce.Color
	scale        *gween.Tween
	alpha        *gween.Tween
	scaleVal     float32
	alphaVal     float32
	done         bool
}

type Game struct {
	world *bounce.World

	// Scale-in tweens for freshly spawned circles, keyed by circle.
	spawnTweens map[*bounce.Circle]*gween.Tween
	spawnScales map[*bounce.Circle]float32
	pops        []*popEffect
}

func NewGame() *Game {
	world := bounce.NewWorld(bounce.DefaultConfig(bounce.Bounds{
		MaxX: screenW,
		MaxY: screenH,
	}))
	world.SpawnInitial(circleCount, spawnTries)

	return &Game{
		world:       world,
		spawnTweens: make(map[*bounce.Circle]*gween.Tween),
		spawnScales: make(map[*bounce.Circle]float32),
	}
}

func (g *Game) Update() error {
	const dt = 1.0 / 60

	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.clickAt(float64(mx), float64(my))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.world.BurstAt(float64(mx), float64(my), blastRadius, blastForce)
	}

	g.world.Step(dt, g.gravity(mx, my))
	g.updateEffects(dt)
	return nil
}

// gravity maps the cursor offset from screen center to a tilt vector in
// [-1, 1]², standing in for device orientation. With the cursor outside
// the window everything just falls straight down.
func (g *Game) gravity(mx, my int) bounce.Vec2 {
	if mx < 0 || my < 0 || mx >= screenW || my >= screenH {
		return bounce.Vec2{Y: 1}
	}
	return bounce.Vec2{
		X: (float64(mx) - screenW/2) / (screenW / 2),
		Y: (float64(my) - screenH/2) / (screenH / 2),
	}
}

// clickAt pops the circle under the cursor, or spawns a new one on empty
// space.
func (g *Game) clickAt(x, y float64) {
	if popped := g.world.PopAt(x, y); popped != nil {
		g.pops = append(g.pops, &popEffect{
			x:        popped.Pos.X,
			y:        popped.Pos.Y,
			radius:   popped.Radius,
			color:    popped.Color,
			scale:    gween.New(1, 1.8, popOutDuration, ease.OutQuad),
			alpha:    gween.New(1, 0, popOutDuration, ease.OutQuad),
			scaleVal: 1,
			alphaVal: 1,
		})
		return
	}

	if spawned := g.world.SpawnAt(x, y); spawned != nil {
		g.spawnTweens[spawned] = gween.New(0, 1, popInDuration, ease.OutBack)
		g.spawnScales[spawned] = 0
	}
}

func (g *Game) updateEffects(dt float64) {
	for c, tw := range g.spawnTweens {
		val, finished := tw.Update(float32(dt))
		g.spawnScales[c] = val
		if finished {
			delete(g.spawnTweens, c)
			delete(g.spawnScales, c)
		}
	}

	alive := g.pops[:0]
	for _, p := range g.pops {
		var finished bool
		p.scaleVal, _ = p.scale.Update(float32(dt))
		p.alphaVal, finished = p.alpha.Update(float32(dt))
		p.done = finished
		if !p.done {
			alive = append(alive, p)
		}
	}
	g.pops = alive
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 23, 255})

	for _, c := range g.world.Circles() {
		radius := c.Radius
		if scale, ok := g.spawnScales[c]; ok {
			radius *= float64(scale)
		}
		vector.DrawFilledCircle(screen,
			float32(c.Pos.X), float32(c.Pos.Y), float32(radius),
			toRGBA(c.Color, 1), true)
	}

	for _, p := range g.pops {
		vector.DrawFilledCircle(screen,
			float32(p.x), float32(p.y), float32(p.radius)*p.scaleVal,
			toRGBA(p.color, float64(p.alphaVal)), true)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nCircles: %d\nLMB pop/spawn, RMB blast, move mouse to tilt",
		ebiten.ActualFPS(), g.world.Count()))
}

func (g *Game) Layout(ow, oh int) (int, int) { return screenW, screenH }

// toRGBA converts a bounce color to a premultiplied color.RGBA with the
// extra alpha applied.
func toRGBA(c bounce.Color, alpha float64) color.RGBA {
	a := c.A * alpha
	return color.RGBA{
		R: uint8(c.R * a * 255),
		G: uint8(c.G * a * 255),
		B: uint8(c.B * a * 255),
		A: uint8(a * 255),
	}
}

func main() {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Bounce — Circles")

	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
