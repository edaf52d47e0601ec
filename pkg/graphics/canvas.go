package graphics

import "image"

// FilterQuality controls image sampling quality during scaling.
type FilterQuality int

const (
	FilterQualityNone FilterQuality = iota // Nearest neighbor (pixelated)
	FilterQualityLow                       // Bilinear
	FilterQualityHigh                      // Catmull-Rom
)

// Canvas records or renders drawing commands.
//
// Save depth starts at 1. Save increments it and Restore decrements it,
// never below 1.
type Canvas interface {
	// Save pushes the current transform and clip state.
	Save()

	// Restore pops the most recent transform and clip state.
	Restore()

	// SaveCount returns the current depth of the save stack.
	SaveCount() int

	// RestoreToCount pops saved states until SaveCount equals count.
	// Counts below 1 are treated as 1.
	RestoreToCount(count int)

	// Translate moves the origin by the given offset.
	Translate(dx, dy float64)

	// Scale scales the coordinate system by the given factors.
	Scale(sx, sy float64)

	// ClipRect restricts future drawing to the given rectangle.
	ClipRect(rect Rect)

	// ClipRRect restricts future drawing to the given rounded rectangle.
	ClipRRect(rrect RRect)

	// Clear fills the entire canvas with the given color, ignoring transform and clip.
	Clear(color Color)

	// DrawRect draws a rectangle with the provided paint.
	DrawRect(rect Rect, paint Paint)

	// DrawRRect draws a rounded rectangle with the provided paint.
	DrawRRect(rrect RRect, paint Paint)

	// DrawImageRect draws an image from srcRect to dstRect with sampling quality.
	// srcRect selects the source region (zero rect = entire image).
	DrawImageRect(img image.Image, srcRect, dstRect Rect, quality FilterQuality)

	// Size returns the size of the canvas in pixels.
	Size() Size
}

// SaveGuard restores a canvas to the depth it had when the guard was taken.
type SaveGuard struct {
	canvas Canvas
	count  int
}

// Save records the canvas save depth, then pushes a new state.
// The returned guard's Restore rewinds to the recorded depth and is
// safe to call from a defer on every exit path.
func Save(canvas Canvas) SaveGuard {
	g := SaveGuard{canvas: canvas, count: canvas.SaveCount()}
	canvas.Save()
	return g
}

// Restore rewinds the canvas to the depth recorded by Save.
func (g SaveGuard) Restore() {
	if g.canvas == nil {
		return
	}
	g.canvas.RestoreToCount(g.count)
}

// Count returns the depth the guard restores to.
func (g SaveGuard) Count() int {
	return g.count
}
