package graphics

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/go-drift/frost/pkg/errors"
)

// RasterCanvas is a software Canvas backed by a gg drawing context.
//
// gg applies path clips to fills but draws images without consulting the
// clip stack, so RasterCanvas keeps its own device-space clip list and
// masks image pixels against it.
type RasterCanvas struct {
	dc     *gg.Context
	clips  []RRect // device space
	states []int   // len(clips) at each Save
}

// NewRasterCanvas allocates a width x height canvas cleared to transparent.
func NewRasterCanvas(width, height int) *RasterCanvas {
	return &RasterCanvas{dc: gg.NewContext(width, height)}
}

// Save pushes the current transform and clip state.
func (c *RasterCanvas) Save() {
	c.dc.Push()
	c.states = append(c.states, len(c.clips))
}

// Restore pops the most recent transform and clip state.
func (c *RasterCanvas) Restore() {
	if len(c.states) == 0 {
		return
	}
	c.dc.Pop()
	n := c.states[len(c.states)-1]
	c.states = c.states[:len(c.states)-1]
	c.clips = c.clips[:n]
}

// SaveCount returns the current depth of the save stack.
func (c *RasterCanvas) SaveCount() int {
	return len(c.states) + 1
}

// RestoreToCount pops saved states until SaveCount equals count.
func (c *RasterCanvas) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	for c.SaveCount() > count {
		c.Restore()
	}
}

// Translate moves the origin by the given offset.
func (c *RasterCanvas) Translate(dx, dy float64) {
	c.dc.Translate(dx, dy)
}

// Scale scales the coordinate system by the given factors.
func (c *RasterCanvas) Scale(sx, sy float64) {
	c.dc.Scale(sx, sy)
}

// ClipRect restricts future drawing to the given rectangle.
func (c *RasterCanvas) ClipRect(rect Rect) {
	c.dc.ClipRect(rect.Left, rect.Top, rect.Width(), rect.Height())
	c.clips = append(c.clips, RRect{Rect: c.deviceRect(rect)})
}

// ClipRRect restricts future drawing to the given rounded rectangle.
func (c *RasterCanvas) ClipRRect(rrect RRect) {
	r := rrect.Rect
	c.dc.DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), rrect.UniformRadius())
	c.dc.Clip()

	m := c.dc.GetTransform()
	sx, sy := math.Abs(m.A), math.Abs(m.E)
	scale := func(rad Radius) Radius { return Radius{X: rad.X * sx, Y: rad.Y * sy} }
	c.clips = append(c.clips, RRect{
		Rect:        c.deviceRect(r),
		TopLeft:     scale(rrect.TopLeft),
		TopRight:    scale(rrect.TopRight),
		BottomRight: scale(rrect.BottomRight),
		BottomLeft:  scale(rrect.BottomLeft),
	})
}

// Clear fills the entire canvas with the given color.
func (c *RasterCanvas) Clear(color Color) {
	c.dc.ClearWithColor(gg.FromColor(color.NRGBA()))
}

// DrawRect draws a rectangle with the provided paint.
func (c *RasterCanvas) DrawRect(rect Rect, paint Paint) {
	c.dc.DrawRectangle(rect.Left, rect.Top, rect.Width(), rect.Height())
	c.finishPath(paint)
}

// DrawRRect draws a rounded rectangle with the provided paint.
func (c *RasterCanvas) DrawRRect(rrect RRect, paint Paint) {
	r := rrect.Rect
	c.dc.DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), rrect.UniformRadius())
	c.finishPath(paint)
}

func (c *RasterCanvas) finishPath(paint Paint) {
	c.dc.SetColor(paint.Color.NRGBA())
	if paint.Style == PaintStyleStroke {
		c.dc.SetLineWidth(paint.StrokeWidth)
		reportDrawError("graphics.RasterCanvas.stroke", c.dc.Stroke())
		return
	}
	reportDrawError("graphics.RasterCanvas.fill", c.dc.Fill())
}

// reportDrawError surfaces a failed gg draw call. Drawing continues; the
// affected shape is simply missing from the surface.
func reportDrawError(op string, err error) {
	if err == nil {
		return
	}
	errors.Report(&errors.Error{Op: op, Kind: errors.KindRender, Err: err})
}

// DrawImageRect draws an image from srcRect to dstRect with sampling quality.
func (c *RasterCanvas) DrawImageRect(img image.Image, srcRect, dstRect Rect, quality FilterQuality) {
	if img == nil || dstRect.IsEmpty() {
		return
	}
	src := img.Bounds()
	if !srcRect.IsEmpty() {
		src = image.Rect(
			src.Min.X+int(srcRect.Left), src.Min.Y+int(srcRect.Top),
			src.Min.X+int(srcRect.Right), src.Min.Y+int(srcRect.Bottom),
		).Intersect(src)
	}
	if src.Empty() {
		return
	}

	dev := c.deviceRect(dstRect)
	x0, y0 := int(math.Round(dev.Left)), int(math.Round(dev.Top))
	w, h := int(math.Round(dev.Right))-x0, int(math.Round(dev.Bottom))-y0
	if w <= 0 || h <= 0 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler(quality).Scale(scaled, scaled.Bounds(), img, src, xdraw.Src, nil)
	c.maskToClips(scaled, x0, y0)

	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImageEx(gg.ImageBufFromImage(scaled), gg.DrawImageOptions{
		X:             float64(x0),
		Y:             float64(y0),
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
	c.dc.Pop()
}

// maskToClips clears pixels of img (placed at x0,y0 in device space) that
// fall outside any active clip.
func (c *RasterCanvas) maskToClips(img *image.RGBA, x0, y0 int) {
	if len(c.clips) == 0 {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := Offset{X: float64(x0+x) + 0.5, Y: float64(y0+y) + 0.5}
			for _, clip := range c.clips {
				if !clip.Contains(p) {
					i := img.PixOffset(x, y)
					img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
					break
				}
			}
		}
	}
}

func scaler(quality FilterQuality) xdraw.Scaler {
	switch quality {
	case FilterQualityNone:
		return xdraw.NearestNeighbor
	case FilterQualityHigh:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// deviceRect maps a rect through the current transform.
func (c *RasterCanvas) deviceRect(r Rect) Rect {
	x1, y1 := c.dc.TransformPoint(r.Left, r.Top)
	x2, y2 := c.dc.TransformPoint(r.Right, r.Bottom)
	return Rect{
		Left:   math.Min(x1, x2),
		Top:    math.Min(y1, y2),
		Right:  math.Max(x1, x2),
		Bottom: math.Max(y1, y2),
	}
}

// Size returns the size of the canvas in pixels.
func (c *RasterCanvas) Size() Size {
	return Size{Width: float64(c.dc.Width()), Height: float64(c.dc.Height())}
}

// Transform returns the current transformation matrix.
func (c *RasterCanvas) Transform() gg.Matrix {
	return c.dc.GetTransform()
}

// Pixels returns an image view sharing the canvas pixel memory.
// The view is invalidated by Resize.
func (c *RasterCanvas) Pixels() *image.RGBA {
	pm := c.dc.ResizeTarget()
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}

// Resize reallocates the pixel buffer. Saved states are discarded.
func (c *RasterCanvas) Resize(width, height int) error {
	c.RestoreToCount(1)
	c.clips = c.clips[:0]
	return c.dc.Resize(width, height)
}

// EncodePNG writes the canvas as PNG.
func (c *RasterCanvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Close releases the drawing context.
func (c *RasterCanvas) Close() error {
	return c.dc.Close()
}
