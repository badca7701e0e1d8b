package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"google.golang.org/protobuf/types/known/structpb"
)

// PopulationDensity is the default number of prey per square unit of viewport.
const PopulationDensity = 0.0006

// Settings is the mutable configuration read by every Step. The control
// surface edits its own copy and hands it over between steps.
type Settings struct {
	Paused   bool `json:"paused" yaml:"paused"`
	Predator bool `json:"predator" yaml:"predator"`

	// Population is the prey target; fractional values are rounded.
	Population float64 `json:"population" yaml:"population"`

	SpacingGoal      float64 `json:"spacingGoal" yaml:"spacingGoal"`
	SeparationWeight float64 `json:"separationWeight" yaml:"separationWeight"`
	CohesionWeight   float64 `json:"cohesionWeight" yaml:"cohesionWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight" yaml:"alignmentWeight"`
	TargetSpeed      float64 `json:"targetSpeed" yaml:"targetSpeed"`
	SpeedWeight      float64 `json:"speedWeight" yaml:"speedWeight"`
}

// DefaultSettings returns the start-up settings for a viewport. The flock
// starts paused.
func DefaultSettings(v Viewport) Settings {
	return Settings{
		Paused:           true,
		Predator:         true,
		Population:       DefaultPopulation(v.Width(), v.Height()),
		SpacingGoal:      40,
		SeparationWeight: 5,
		CohesionWeight:   5,
		AlignmentWeight:  5,
		TargetSpeed:      5,
		SpeedWeight:      5,
	}
}

// DefaultPopulation sizes the prey population from the viewport area.
func DefaultPopulation(width, height float64) float64 {
	return math.Round(width * height * PopulationDensity)
}

// TargetPopulation is Population rounded, with negative and non-finite
// values clamped to zero.
func (s Settings) TargetPopulation() int {
	p := math.Round(s.Population)
	if math.IsNaN(p) || p <= 0 {
		return 0
	}
	if p > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(p)
}

// PredatorCount is the predator population implied by the settings.
func (s Settings) PredatorCount() int {
	if s.Predator {
		return 1
	}
	return 0
}

// Weights extracts the force parameters.
func (s Settings) Weights() behavior.Weights {
	return behavior.Weights{
		SpacingGoal:      s.SpacingGoal,
		SeparationWeight: s.SeparationWeight,
		CohesionWeight:   s.CohesionWeight,
		AlignmentWeight:  s.AlignmentWeight,
		TargetSpeed:      s.TargetSpeed,
		SpeedWeight:      s.SpeedWeight,
	}
}

// ToProto encodes the settings as a protobuf Struct so they can be sent to
// the world actor.
func (s Settings) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"paused":           s.Paused,
		"predator":         s.Predator,
		"population":       s.Population,
		"spacingGoal":      s.SpacingGoal,
		"separationWeight": s.SeparationWeight,
		"cohesionWeight":   s.CohesionWeight,
		"alignmentWeight":  s.AlignmentWeight,
		"targetSpeed":      s.TargetSpeed,
		"speedWeight":      s.SpeedWeight,
	})
}

// MergeProto returns a copy of s with every field present in p applied.
// Fields of the wrong kind are ignored.
func (s Settings) MergeProto(p *structpb.Struct) Settings {
	for key, v := range p.GetFields() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_BoolValue:
			switch key {
			case "paused":
				s.Paused = kind.BoolValue
			case "predator":
				s.Predator = kind.BoolValue
			}
		case *structpb.Value_NumberValue:
			if f := s.numberField(key); f != nil {
				*f = kind.NumberValue
			}
		}
	}
	return s
}

func (s *Settings) numberField(key string) *float64 {
	switch key {
	case "population":
		return &s.Population
	case "spacingGoal":
		return &s.SpacingGoal
	case "separationWeight":
		return &s.SeparationWeight
	case "cohesionWeight":
		return &s.CohesionWeight
	case "alignmentWeight":
		return &s.AlignmentWeight
	case "targetSpeed":
		return &s.TargetSpeed
	case "speedWeight":
		return &s.SpeedWeight
	}
	return nil
}
