package frost

import (
	"fmt"
	"image"

	"github.com/go-drift/frost/pkg/graphics"
)

// OnDraw paints the stored blur result stretched over the view's bounds,
// then the tint, inside a rounded clip when CornerRadius is set. It never
// captures. With a zero radius only the tint is drawn; with a positive
// radius and no result yet nothing is drawn.
func (b *BlurView) OnDraw(canvas graphics.Canvas) {
	size := b.Size()
	b.dst = graphics.RectFromLTWH(0, 0, size.Width, size.Height)
	if b.dst.IsEmpty() {
		return
	}

	drawImage := b.cfg.BlurRadius > 0 && b.ready && b.blurred != nil
	drawTint := b.cfg.OverlayColor.Alpha8() != 0
	if b.cfg.BlurRadius > 0 && !drawImage {
		return
	}
	if !drawImage && !drawTint {
		return
	}

	if b.cfg.CornerRadius > 0 {
		guard := graphics.Save(canvas)
		defer guard.Restore()
		canvas.ClipRRect(graphics.RRectFromRectAndRadius(b.dst, graphics.CircularRadius(b.cfg.CornerRadius)))
	}
	if drawImage {
		b.src = graphics.RectFromLTWH(0, 0, float64(b.bufW), float64(b.bufH))
		canvas.DrawImageRect(b.blurred, b.src, b.dst, graphics.FilterQualityLow)
	}
	if drawTint {
		canvas.DrawRect(b.dst, graphics.FillPaint(b.cfg.OverlayColor))
	}
}

// BufferSize returns the current capture buffer dimensions, or zeros when
// no buffer has been allocated.
func (b *BlurView) BufferSize() (width, height int) {
	if b.capture == nil {
		return 0, 0
	}
	return b.bufW, b.bufH
}

// Blurred returns the stored blur result, or nil when none is ready.
// The image is owned by the view and overwritten by the next capture.
func (b *BlurView) Blurred() *image.RGBA {
	if !b.ready {
		return nil
	}
	return b.blurred
}

// DescribeProperties reports the view's configuration and state for
// debugging and snapshots.
func (b *BlurView) DescribeProperties() map[string]any {
	bw, bh := b.BufferSize()
	props := map[string]any{
		"state":           b.State(),
		"blurRadius":      b.cfg.BlurRadius,
		"overlayColor":    b.cfg.OverlayColor,
		"downscaleFactor": b.cfg.DownscaleFactor,
		"cornerRadius":    b.cfg.CornerRadius,
		"bufferWidth":     bw,
		"bufferHeight":    bh,
		"ready":           b.ready,
	}
	if s, ok := b.engine.(fmt.Stringer); ok {
		props["engine"] = s.String()
	}
	return props
}
