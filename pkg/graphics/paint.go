package graphics

import "fmt"

// PaintStyle describes how shapes are filled or stroked.
type PaintStyle int

const (
	// PaintStyleFill fills the shape interior.
	PaintStyleFill PaintStyle = iota

	// PaintStyleStroke draws only the outline.
	PaintStyleStroke
)

// String returns a human-readable representation of the paint style.
func (s PaintStyle) String() string {
	switch s {
	case PaintStyleFill:
		return "fill"
	case PaintStyleStroke:
		return "stroke"
	default:
		return fmt.Sprintf("PaintStyle(%d)", int(s))
	}
}

// Paint describes how to draw a shape on the canvas.
type Paint struct {
	Color       Color
	Style       PaintStyle
	StrokeWidth float64
}

// DefaultPaint returns a basic opaque black fill paint.
func DefaultPaint() Paint {
	return Paint{
		Color:       ColorBlack,
		Style:       PaintStyleFill,
		StrokeWidth: 1,
	}
}

// FillPaint returns a fill paint of the given color.
func FillPaint(c Color) Paint {
	return Paint{Color: c, Style: PaintStyleFill, StrokeWidth: 1}
}
