package behavior

import (
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
)

// Tuning constants. They are empirical and only matter for the look of the
// flock, but changing them changes behavior.
const (
	NeighborCount = 6

	separationScale = 8.0
	alignmentScale  = 0.15
	cohesionScale   = 0.4

	predatorRadius        = 120.0
	predatorAvoidScale    = 0.05
	predatorCohesionScale = 0.02

	speedTargetScale = 15.0
	speedScale       = 0.4

	BoundaryMargin = 50.0
	boundaryScale  = 5.0

	forceColorScale = 0.008
	speedColorScale = 0.01
)

// Weights are the user-tunable parameters read by one step.
type Weights struct {
	SpacingGoal      float64
	SeparationWeight float64
	CohesionWeight   float64
	AlignmentWeight  float64
	TargetSpeed      float64
	SpeedWeight      float64
}

// World is the frozen pre-step state every update reads. Index was built
// from Prey positions and its payloads are offsets into Prey.
type World struct {
	Prey      []Boid
	Predators []Boid
	Index     *spatial.Index
	Width     float64
	Height    float64
}

// UpdatePrey returns the next state of self: flocking with its nearest prey,
// fleeing predators, and the common speed and boundary forces.
func UpdatePrey(self Boid, world *World, w Weights, dt float64) Boid {
	neighbors := world.Index.KNearest(self.Pos, NeighborCount)

	total := NeighborForce(self, world.Prey, neighbors, w).
		Add(PredatorForce(self, world.Predators)).
		Add(CommonForce(self, w, world.Width, world.Height))

	vel := self.Vel.Add(total.Mul(dt))
	return Boid{
		Pos:   self.Pos.Add(vel.Mul(dt)),
		Vel:   vel,
		Color: forceColor(total, self.Vel),
	}
}

// UpdatePredator returns the next state of a predator. Predators drift
// towards the prey around them and otherwise only feel the common forces.
func UpdatePredator(self Boid, world *World, w Weights, dt float64) Boid {
	var attraction geometry.Vector2D
	for _, n := range world.Index.KNearest(self.Pos, NeighborCount) {
		offset := world.Prey[n.Index].Pos.Sub(self.Pos)
		attraction = attraction.Add(offset.Mul(w.CohesionWeight * predatorCohesionScale))
	}

	total := attraction.Add(CommonForce(self, w, world.Width, world.Height))

	vel := self.Vel.Add(total.Mul(dt))
	return Boid{
		Pos:   self.Pos.Add(vel.Mul(dt)),
		Vel:   vel,
		Color: DefaultColor(Predator),
	}
}

// NeighborForce averages separation, alignment and cohesion over neighbors.
// self may appear among neighbors; its own offset is zero so it adds nothing.
func NeighborForce(self Boid, prey []Boid, neighbors []spatial.Neighbor, w Weights) geometry.Vector2D {
	var force geometry.Vector2D
	for _, n := range neighbors {
		other := prey[n.Index]
		dist := math.Sqrt(n.DistSq)
		offset := other.Pos.Sub(self.Pos)

		// separation, only closer than the spacing goal
		push := math.Min(dist-w.SpacingGoal, 0) * w.SeparationWeight * separationScale
		force = force.Add(offset.NormalizeOrZero().Mul(push))

		// alignment
		force = force.Add(other.Vel.Sub(self.Vel).Mul(w.AlignmentWeight * alignmentScale))

		// cohesion
		force = force.Add(offset.Mul(w.CohesionWeight * cohesionScale))
	}
	return force.DivOrZero(float64(len(neighbors)))
}

// PredatorForce steers self sideways out of each predator's path, averaged
// over predators. It only acts within predatorRadius.
func PredatorForce(self Boid, predators []Boid) geometry.Vector2D {
	var force geometry.Vector2D
	for _, p := range predators {
		dist := self.Pos.DistanceTo(p.Pos)

		side := p.Vel.Perp()
		if side.Dot(p.Pos.Sub(self.Pos)) <= 0 {
			side = side.Neg()
		}
		// side points from self towards the predator's track; the
		// non-positive factor flips it away.
		force = force.Add(side.Mul(math.Min(dist-predatorRadius, 0) * predatorAvoidScale))
	}
	return force.DivOrZero(float64(len(predators)))
}

// CommonForce is applied to prey and predators alike.
func CommonForce(b Boid, w Weights, width, height float64) geometry.Vector2D {
	return SpeedForce(b.Vel, w).Add(BoundaryForce(b.Pos, width, height))
}

// SpeedForce pulls the speed towards TargetSpeed along the current heading.
// A boid at rest has no heading and gets no speed force.
func SpeedForce(vel geometry.Vector2D, w Weights) geometry.Vector2D {
	delta := w.TargetSpeed*speedTargetScale - vel.Len()
	return vel.NormalizeOrZero().Mul(delta * w.SpeedWeight * speedScale)
}

// BoundaryForce pushes a boid back inside when it is within BoundaryMargin of
// an edge of the width x height viewport. It is a soft penalty, not a clamp.
func BoundaryForce(pos geometry.Vector2D, width, height float64) geometry.Vector2D {
	fx := math.Max(BoundaryMargin-pos.X, 0) + math.Min(width-BoundaryMargin-pos.X, 0)
	fy := math.Max(BoundaryMargin-pos.Y, 0) + math.Min(height-BoundaryMargin-pos.Y, 0)
	return geometry.Vector2D{X: fx, Y: fy}.Mul(boundaryScale)
}

// forceColor maps force and speed onto red and green for a quick visual
// read of how hard each boid is being steered.
func forceColor(force, vel geometry.Vector2D) color.RGBA {
	return color.RGBA{
		R: unitToByte(forceColorScale * force.Len()),
		G: unitToByte(speedColorScale * vel.Len()),
		B: 0,
		A: 255,
	}
}

func unitToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
