package ui

import "github.com/hajimehoshi/ebiten/v2"

// Pointer is the mouse state widgets react to for one frame.
type Pointer struct {
	X, Y    float64
	Pressed bool
	WheelDY float64
}

// CursorInput reads the pointer from ebiten. Only valid inside Update.
func CursorInput() Pointer {
	mx, my := ebiten.CursorPosition()
	_, dy := ebiten.Wheel()
	return Pointer{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		WheelDY: dy,
	}
}

func inRect(p Pointer, x, y, w, h float64) bool {
	return p.X >= x && p.X <= x+w && p.Y >= y && p.Y <= y+h
}
