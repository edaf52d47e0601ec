package frost

import (
	"image"
	"log/slog"
	"math"

	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

// captureFrame snapshots the target into the capture buffer and blurs it.
func (b *BlurView) captureFrame() {
	if b.cfg.BlurRadius == 0 {
		b.stats.Skipped++
		return
	}
	target := b.Target()
	if target == nil || !target.Node().IsAttached() {
		b.stats.Skipped++
		return
	}
	canvas, ok := b.prepare()
	if !ok {
		b.stats.Skipped++
		return
	}

	offset := b.LocationOnScreen().Sub(target.Node().LocationOnScreen())
	if !b.snapshot(canvas, target, offset) {
		b.stats.Failed++
		return
	}
	if !b.blur(canvas) {
		b.stats.Failed++
		return
	}
	b.stats.Captured++
	if b.failing {
		b.failing = false
		Logger().Info("frost: capture recovered", slog.Uint64("view", uint64(b.ID())))
	}
}

// prepare returns the canvas to capture into this frame, sized to the
// view's current bounds. It returns false when either dimension rounds
// down to zero.
//
// While a blurred result is on screen, a size change captures into a
// staging canvas instead; blur swaps it in together with a new blurred
// buffer only once the capture at the new size succeeds.
func (b *BlurView) prepare() (*graphics.RasterCanvas, bool) {
	size := b.Size()
	w := int(math.Floor(size.Width / b.cfg.DownscaleFactor))
	h := int(math.Floor(size.Height / b.cfg.DownscaleFactor))
	if w <= 0 || h <= 0 {
		Logger().Debug("frost: zero-area capture skipped",
			slog.Float64("width", size.Width), slog.Float64("height", size.Height))
		return nil, false
	}
	if b.capture != nil && w == b.bufW && h == b.bufH {
		return b.capture, true
	}

	if !b.ready {
		if err := sizeCanvas(&b.capture, w, h); err != nil {
			Logger().Warn("frost: capture buffer resize failed", slog.Any("err", err))
			return nil, false
		}
		b.blurred = image.NewRGBA(image.Rect(0, 0, w, h))
		b.bufW, b.bufH = w, h
		Logger().Debug("frost: buffers allocated", slog.Int("width", w), slog.Int("height", h))
		return b.capture, true
	}
	if err := sizeCanvas(&b.staged, w, h); err != nil {
		Logger().Warn("frost: staging buffer resize failed", slog.Any("err", err))
		return nil, false
	}
	return b.staged, true
}

// sizeCanvas allocates *c or resizes it to w x h.
func sizeCanvas(c **graphics.RasterCanvas, w, h int) error {
	if *c == nil {
		*c = graphics.NewRasterCanvas(w, h)
		return nil
	}
	if r := (*c).Pixels().Rect; r.Dx() == w && r.Dy() == h {
		return nil
	}
	return (*c).Resize(w, h)
}

// snapshot renders target into canvas through a downscale and an offset
// that lines the target up with this view, excluding this view's own
// subtree. The canvas save depth is restored on every exit path and a
// panic from the target's drawing is swallowed and reported.
func (b *BlurView) snapshot(canvas *graphics.RasterCanvas, target view.View, offset graphics.Offset) (ok bool) {
	canvas.Clear(graphics.ColorTransparent)

	guard := graphics.Save(canvas)
	defer func() {
		guard.Restore()
		if r := recover(); r != nil {
			b.reportPanic("frost.capture", r)
			ok = false
		}
	}()

	scale := 1 / b.cfg.DownscaleFactor
	canvas.Scale(scale, scale)
	canvas.Translate(-offset.X, -offset.Y)
	view.DrawTree(target, canvas, b.ID())
	return true
}

// blur runs the engine over canvas and stores the result. A staging
// canvas becomes the capture buffer here, with a blurred buffer of its
// size, so both buffers always change together.
func (b *BlurView) blur(canvas *graphics.RasterCanvas) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.reportPanic("frost.blur", r)
			ok = false
		}
	}()

	src := canvas.Pixels()
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := b.engine.Blur(src, b.cfg.BlurRadius, true)
	if out == nil || out.Rect.Dx() != w || out.Rect.Dy() != h {
		b.reportError("frost.blur", errors.ErrBufferSize)
		return false
	}
	if canvas != b.capture {
		b.capture, b.staged = canvas, b.capture
		b.blurred = image.NewRGBA(image.Rect(0, 0, w, h))
		b.bufW, b.bufH = w, h
		Logger().Debug("frost: buffers allocated", slog.Int("width", w), slog.Int("height", h))
	}
	for y := 0; y < h; y++ {
		row := out.Pix[out.PixOffset(out.Rect.Min.X, out.Rect.Min.Y+y):]
		copy(b.blurred.Pix[y*b.blurred.Stride:y*b.blurred.Stride+w*4], row[:w*4])
	}
	b.ready = true
	return true
}

// reportPanic surfaces the first failure of a streak through the errors
// package; repeats are logged at debug level only.
func (b *BlurView) reportPanic(op string, value any) {
	if b.streak(op, value) {
		return
	}
	errors.ReportPanic(errors.NewPanicError(op, value))
}

func (b *BlurView) reportError(op string, err error) {
	if b.streak(op, err) {
		return
	}
	errors.Report(&errors.Error{
		Op:   op,
		Kind: errors.KindCapture,
		Err:  err,
	})
}

// streak marks the view as failing and reports whether it already was.
func (b *BlurView) streak(op string, value any) bool {
	if b.failing {
		Logger().Debug("frost: capture still failing", slog.String("op", op), slog.Any("value", value))
		return true
	}
	b.failing = true
	return false
}
