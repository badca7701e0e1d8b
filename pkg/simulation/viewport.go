package simulation

import (
	"math"
	"time"
)

// MaxStepDuration caps the dt of a single step so frame spikes cannot blow
// up the integration.
const MaxStepDuration = 0.1

// Viewport reports the extents of the area the flock lives in.
type Viewport interface {
	Width() float64
	Height() float64
}

// FixedViewport is a Viewport of constant size, for headless runs and tests.
type FixedViewport struct {
	W, H float64
}

func (v FixedViewport) Width() float64  { return v.W }
func (v FixedViewport) Height() float64 { return v.H }

// Clock provides the dt of the next step in seconds.
type Clock interface {
	ElapsedSinceLastStep() float64
}

// WallClock measures real time between calls. The first call returns 0.
type WallClock struct {
	last time.Time
	now  func() time.Time
}

// NewWallClock returns a Clock backed by the monotonic system clock.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) ElapsedSinceLastStep() float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	elapsed := now.Sub(c.last).Seconds()
	c.last = now
	return elapsed
}

// FixedClock always reports the same dt.
type FixedClock float64

func (c FixedClock) ElapsedSinceLastStep() float64 { return float64(c) }

// ClampStep bounds dt to [0, MaxStepDuration]; NaN becomes 0.
func ClampStep(dt float64) float64 {
	if math.IsNaN(dt) || dt <= 0 {
		return 0
	}
	return math.Min(dt, MaxStepDuration)
}
