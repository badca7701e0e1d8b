package behavior

import (
	"image/color"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
//
// A Boid is a plain value: an update never mutates it, it returns the next
// Boid instead. Fields are exported so the renderer can read them.
type Boid struct {
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	Color color.RGBA
}

// Kind selects which update rule and default color a boid gets.
type Kind int

const (
	Prey Kind = iota
	Predator
)

func (k Kind) String() string {
	switch k {
	case Prey:
		return "prey"
	case Predator:
		return "predator"
	default:
		return "unknown"
	}
}

// InitialSpeedRange bounds each velocity component of a freshly spawned boid
// to [-InitialSpeedRange, InitialSpeedRange).
const InitialSpeedRange = 50.0

var (
	DarkGray = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	Black    = color.RGBA{A: 255}
)

// DefaultColor returns the spawn color for kind.
func DefaultColor(kind Kind) color.RGBA {
	if kind == Predator {
		return Black
	}
	return DarkGray
}

// NewRandom creates a boid with a random position inside width x height and a
// random velocity. A nil rng falls back to the global math/rand/v2 source.
func NewRandom(rng *rand.Rand, kind Kind, width, height float64) Boid {
	f := rand.Float64
	if rng != nil {
		f = rng.Float64
	}
	return Boid{
		Pos: geometry.Vector2D{
			X: f() * width,
			Y: f() * height,
		},
		Vel: geometry.Vector2D{
			X: (f()*2 - 1) * InitialSpeedRange,
			Y: (f()*2 - 1) * InitialSpeedRange,
		},
		Color: DefaultColor(kind),
	}
}

// Heading returns the direction of travel in radians, used to orient the sprite.
func (b Boid) Heading() float64 {
	return b.Vel.Angle()
}
