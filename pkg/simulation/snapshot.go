package simulation

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldSnapshot is an immutable copy of the flock pushed to the renderer.
type WorldSnapshot struct {
	Step      uint64
	Paused    bool
	Width     float64
	Height    float64
	Prey      []behavior.Boid
	Predators []behavior.Boid
}

// Population is the total number of boids in the snapshot.
func (s *WorldSnapshot) Population() int {
	if s == nil {
		return 0
	}
	return len(s.Prey) + len(s.Predators)
}

// CountsToProto encodes the step number and population sizes, the reply
// to a status query on the world actor.
func (s *WorldSnapshot) CountsToProto() *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"step":      structpb.NewNumberValue(float64(s.Step)),
			"paused":    structpb.NewBoolValue(s.Paused),
			"prey":      structpb.NewNumberValue(float64(len(s.Prey))),
			"predators": structpb.NewNumberValue(float64(len(s.Predators))),
		},
	}
}
