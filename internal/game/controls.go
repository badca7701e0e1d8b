package game

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

const (
	panelWidth  = 280
	panelHeight = 520
)

// controls is the settings panel. Its widgets are the source of truth for
// the live settings; read turns them into a Settings value every frame.
type controls struct {
	panel *ui.UIPanel

	widgetStart    *ui.Checkbox
	widgetPredator *ui.Checkbox

	widgetPopulation  *ui.Slider
	widgetSpacingGoal *ui.Slider
	widgetSeparation  *ui.Slider
	widgetCohesion    *ui.Slider
	widgetAlignment   *ui.Slider
	widgetTargetSpeed *ui.Slider
	widgetSpeedWeight *ui.Slider
}

func newControls(s simulation.Settings, worldHeight float64) *controls {
	panel := ui.NewUIPanel("Boids", 10, 10, panelWidth, min(panelHeight, worldHeight-20))
	c := &controls{panel: panel}

	panel.AddSection("Simulation")
	c.widgetStart = panel.AddCheckbox("START!", !s.Paused)
	c.widgetPredator = panel.AddCheckbox("Predator", s.Predator)
	c.widgetPopulation = panel.AddIntSlider("Population", 0, 2000, s.Population)
	panel.EndSection()

	panel.AddSection("Flocking")
	c.widgetSpacingGoal = panel.AddSlider("Spacing goal", 0, 100, s.SpacingGoal)
	c.widgetSeparation = panel.AddSlider("Separation", 0, 10, s.SeparationWeight)
	c.widgetCohesion = panel.AddSlider("Cohesion", 0, 10, s.CohesionWeight)
	c.widgetAlignment = panel.AddSlider("Alignment", 0, 10, s.AlignmentWeight)
	panel.EndSection()

	panel.AddSection("Speed")
	c.widgetTargetSpeed = panel.AddSlider("Target speed", 0, 10, s.TargetSpeed)
	c.widgetSpeedWeight = panel.AddSlider("Speed weight", 0, 10, s.SpeedWeight)
	panel.EndSection()

	defaults := s
	panel.AddButton("Reset defaults", func() { c.apply(defaults) })
	return c
}

// read returns the settings currently shown by the widgets.
func (c *controls) read() simulation.Settings {
	return simulation.Settings{
		Paused:           !c.widgetStart.Value,
		Predator:         c.widgetPredator.Value,
		Population:       c.widgetPopulation.Value,
		SpacingGoal:      c.widgetSpacingGoal.Value,
		SeparationWeight: c.widgetSeparation.Value,
		CohesionWeight:   c.widgetCohesion.Value,
		AlignmentWeight:  c.widgetAlignment.Value,
		TargetSpeed:      c.widgetTargetSpeed.Value,
		SpeedWeight:      c.widgetSpeedWeight.Value,
	}
}

// apply moves every widget to s. The pause state is left alone so a reset
// does not stop a running flock.
func (c *controls) apply(s simulation.Settings) {
	c.widgetPredator.Value = s.Predator
	c.widgetPopulation.SetValue(s.Population)
	c.widgetSpacingGoal.SetValue(s.SpacingGoal)
	c.widgetSeparation.SetValue(s.SeparationWeight)
	c.widgetCohesion.SetValue(s.CohesionWeight)
	c.widgetAlignment.SetValue(s.AlignmentWeight)
	c.widgetTargetSpeed.SetValue(s.TargetSpeed)
	c.widgetSpeedWeight.SetValue(s.SpeedWeight)
}
