package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelTitleHeight   = 30.0
	sectionHeaderSpace = 25.0
	widgetLabelSpace   = 15.0
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	HandleInput(p Pointer)
	Draw(screen *ebiten.Image)
	GetHeight() float64
	// Caption is the text drawn above the widget.
	Caption() string
	setY(y float64)
}

// SliderWrapper wraps our existing Slider to implement UIWidget
type SliderWrapper struct {
	*Slider
}

func (s *SliderWrapper) GetHeight() float64 {
	return s.H + 25 // Slider height + label space
}

func (s *SliderWrapper) Caption() string {
	if s.Integer {
		return fmt.Sprintf("%s: %.0f", s.Label, s.Value)
	}
	return fmt.Sprintf("%s: %.2f", s.Label, s.Value)
}

func (s *SliderWrapper) setY(y float64) { s.Y = y }

// CheckboxWrapper wraps Checkbox to implement UIWidget
type CheckboxWrapper struct {
	*Checkbox
}

func (c *CheckboxWrapper) GetHeight() float64 {
	return c.Size + 20 // Checkbox size + label space
}

func (c *CheckboxWrapper) Caption() string { return c.Label }

func (c *CheckboxWrapper) setY(y float64) { c.Y = y }

// ButtonWrapper wraps Button to implement UIWidget
type ButtonWrapper struct {
	*Button
}

func (b *ButtonWrapper) GetHeight() float64 {
	return b.Height + 10
}

func (b *ButtonWrapper) Caption() string { return "" }

func (b *ButtonWrapper) setY(y float64) { b.Y = y }

// UIPanel manages a collection of UI widgets in a scrollable panel
type UIPanel struct {
	Title         string
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	Widgets       []UIWidget
	ScrollOffset  float64 // Current scroll position

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
}

// PanelSection groups the widgets added between AddSection and EndSection.
type PanelSection struct {
	Title      string
	StartIndex int // Widget index where this section starts
	EndIndex   int // Widget index where this section ends (exclusive)
}

// NewUIPanel creates a new UI panel
func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection adds a section header
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, PanelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   -1,
	})
}

// EndSection closes the current section
func (p *UIPanel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider adds a slider widget to the panel
func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	slider := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.add(&SliderWrapper{slider})
	return slider
}

// AddIntSlider adds a slider whose values are rounded to integers.
func (p *UIPanel) AddIntSlider(label string, min, max, value float64) *Slider {
	slider := p.AddSlider(label, min, max, value)
	slider.Integer = true
	slider.SetValue(value)
	return slider
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(p.X+10, 0, label, value)
	p.add(&CheckboxWrapper{checkbox})
	return checkbox
}

// AddButton adds a full-width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	button := NewButton(p.X+10, 0, p.Width-20, 20, label, onClick)
	p.add(&ButtonWrapper{button})
	return button
}

func (p *UIPanel) add(w UIWidget) {
	p.Widgets = append(p.Widgets, w)
	p.layout()
}

// layout places every widget at its scrolled position. Section headers come
// before the first widget of their section.
func (p *UIPanel) layout() {
	y := p.Y + panelTitleHeight - p.ScrollOffset
	for i, w := range p.Widgets {
		for _, s := range p.sections {
			if s.StartIndex == i {
				y += sectionHeaderSpace
			}
		}
		w.setY(y + widgetLabelSpace)
		y += w.GetHeight()
	}
}

// Contains reports whether the point lies inside the panel.
func (p *UIPanel) Contains(x, y float64) bool {
	return inRect(Pointer{X: x, Y: y}, p.X, p.Y, p.Width, p.Height)
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	p.HandleInput(CursorInput())
}

// HandleInput scrolls the panel and forwards the pointer to its widgets.
// A press outside the panel is not seen by any widget.
func (p *UIPanel) HandleInput(ptr Pointer) {
	inside := p.Contains(ptr.X, ptr.Y)
	if inside && ptr.WheelDY != 0 {
		p.ScrollOffset -= ptr.WheelDY * 20
		maxScroll := max(p.calculateTotalHeight()-p.Height+40, 0)
		p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
	}
	p.layout()

	if !inside {
		ptr.Pressed = false
	}
	for _, w := range p.Widgets {
		w.HandleInput(ptr)
	}
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)

	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	p.layout()
	top, bottom := p.Y+panelTitleHeight-5, p.Y+p.Height
	for i, w := range p.Widgets {
		for _, s := range p.sections {
			if s.StartIndex != i {
				continue
			}
			hy := labelY(w) - sectionHeaderSpace
			if hy >= top && hy+20 <= bottom {
				vector.FillRect(screen,
					float32(p.X+5), float32(hy),
					float32(p.Width-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+10), int(hy+3))
			}
		}

		ly := labelY(w)
		if ly < top || ly+w.GetHeight() > bottom+10 {
			continue
		}
		if c := w.Caption(); c != "" {
			ebitenutil.DebugPrintAt(screen, c, int(p.X+10), int(ly))
		}
		w.Draw(screen)
	}
}

func labelY(w UIWidget) float64 {
	switch w := w.(type) {
	case *SliderWrapper:
		return w.Y - widgetLabelSpace
	case *CheckboxWrapper:
		return w.Y - widgetLabelSpace
	case *ButtonWrapper:
		return w.Y - widgetLabelSpace
	}
	return 0
}

// calculateTotalHeight calculates the total content height
func (p *UIPanel) calculateTotalHeight() float64 {
	height := panelTitleHeight
	height += float64(len(p.sections)) * sectionHeaderSpace
	for _, widget := range p.Widgets {
		height += widget.GetHeight()
	}
	return height
}
