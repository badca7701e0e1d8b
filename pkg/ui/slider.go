package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float64 in [Min, Max] by dragging.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	// Integer rounds every value the slider produces.
	Integer bool
}

// NewSlider creates a slider with the default track height.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min, Max: max,
		X: x, Y: y, W: w, H: 12,
	}
	s.SetValue(value)
	return s
}

// SetValue clamps v into range and stores it.
func (s *Slider) SetValue(v float64) {
	if s.Integer {
		v = math.Round(v)
	}
	s.Value = math.Max(s.Min, math.Min(v, s.Max))
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	s.HandleInput(CursorInput())
}

// HandleInput moves the value to the pointer while it is pressed on the track.
func (s *Slider) HandleInput(p Pointer) {
	if !p.Pressed || !inRect(p, s.X, s.Y, s.W, s.H) || s.W <= 0 {
		return
	}
	ratio := (p.X - s.X) / s.W
	s.SetValue(s.Min + ratio*(s.Max-s.Min))
}

// Ratio is the filled fraction of the track.
func (s *Slider) Ratio() float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
