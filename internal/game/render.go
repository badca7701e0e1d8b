package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

const (
	preySize     = 8.0
	predatorSize = 12.0
	// wingAngle is the angle between the heading and each base corner.
	wingAngle = 2.4

	// Vertices per DrawTriangles call; indices are uint16.
	maxBatchVertices = 3 * 10000
)

// triangleBatch collects boid triangles and draws them in as few calls as
// possible.
type triangleBatch struct {
	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// boidTriangle returns the tip and the two base corners of a boid drawn
// with the given size, oriented along its velocity.
func boidTriangle(b behavior.Boid, size float64) [3]geometry.Vector2D {
	rot := b.Heading()
	return [3]geometry.Vector2D{
		geometry.NewVectorPolar(size, rot).Add(b.Pos),
		geometry.NewVectorPolar(size, rot-wingAngle).Add(b.Pos),
		geometry.NewVectorPolar(size, rot+wingAngle).Add(b.Pos),
	}
}

func (t *triangleBatch) add(b behavior.Boid, size float64) {
	base := uint16(len(t.vertices))
	r, g, bl, a := colorComponents(b.Color)
	for _, p := range boidTriangle(b, size) {
		t.vertices = append(t.vertices, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: bl, ColorA: a,
		})
	}
	t.indices = append(t.indices, base, base+1, base+2)
}

func (t *triangleBatch) flush(screen *ebiten.Image) {
	if len(t.indices) > 0 {
		screen.DrawTriangles(t.vertices, t.indices, t.white, &ebiten.DrawTrianglesOptions{})
	}
	t.vertices = t.vertices[:0]
	t.indices = t.indices[:0]
}

// draw renders prey then predators, so predators stay on top.
func (t *triangleBatch) draw(screen *ebiten.Image, snap *simulation.WorldSnapshot) {
	if t.white == nil {
		t.white = ebiten.NewImage(3, 3)
		t.white.Fill(color.White)
	}
	for _, b := range snap.Prey {
		if len(t.vertices)+3 > maxBatchVertices {
			t.flush(screen)
		}
		t.add(b, preySize)
	}
	for _, b := range snap.Predators {
		if len(t.vertices)+3 > maxBatchVertices {
			t.flush(screen)
		}
		t.add(b, predatorSize)
	}
	t.flush(screen)
}

// colorComponents converts to the premultiplied [0, 1] vertex color scale.
func colorComponents(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}
