package view

import (
	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/graphics"
)

// Window owns a view tree and drives its frames.
//
// The frame sequence in DrawFrame is:
//  1. layout - the decor view is sized to the window
//  2. posted actions queued before the frame run
//  3. pre-draw listeners run; any of them may cancel the frame
//  4. the tree is painted onto the surface canvas
//
// A Window is not safe for concurrent use; all calls happen on the thread
// that draws frames.
type Window struct {
	origin     graphics.Offset
	size       graphics.Size
	background graphics.Color
	decor      *Box
	observer   *TreeObserver
	posted     []func()
	frames     uint64
	needsFrame bool
	closed     bool
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithOrigin places the window on screen.
func WithOrigin(x, y float64) WindowOption {
	return func(w *Window) {
		w.origin = graphics.Offset{X: x, Y: y}
	}
}

// WithBackground sets the color the surface is cleared to each frame.
func WithBackground(c graphics.Color) WindowOption {
	return func(w *Window) {
		w.background = c
	}
}

// NewWindow creates a window of the given size with an attached decor view.
func NewWindow(size graphics.Size, opts ...WindowOption) *Window {
	w := &Window{
		size:       size,
		background: graphics.ColorWhite,
		observer:   NewTreeObserver(),
		needsFrame: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.decor = NewBox(nil)
	w.decor.SetFrame(graphics.RectFromLTWH(0, 0, size.Width, size.Height))
	w.decor.SetBackground(w.background)
	w.decor.attach(w)
	return w
}

// DecorView returns the root of the window's view tree.
func (w *Window) DecorView() View {
	return w.decor
}

// Observer returns the window's tree observer.
func (w *Window) Observer() *TreeObserver {
	return w.observer
}

// Origin returns the window's position on screen.
func (w *Window) Origin() graphics.Offset {
	return w.origin
}

// Size returns the window size.
func (w *Window) Size() graphics.Size {
	return w.size
}

// SetSize resizes the window; the decor view follows at the next layout.
func (w *Window) SetSize(size graphics.Size) {
	w.size = size
	w.needsFrame = true
}

// AddView adds v as a child of the decor view.
func (w *Window) AddView(v View) {
	w.decor.AddChild(v)
}

// SetContent replaces the decor view's children with v.
// A v without a frame fills the window.
func (w *Window) SetContent(v View) {
	for _, child := range append([]View(nil), w.decor.children...) {
		w.decor.RemoveChild(child)
	}
	if v.Node().Frame().IsEmpty() {
		v.Node().SetFrame(graphics.RectFromLTWH(0, 0, w.size.Width, w.size.Height))
	}
	w.decor.AddChild(v)
}

// Post queues fn to run at the start of the next frame, after layout.
func (w *Window) Post(fn func()) {
	if fn == nil || w.closed {
		return
	}
	w.posted = append(w.posted, fn)
	w.needsFrame = true
}

// NeedsFrame reports whether anything requested a frame since the last one.
func (w *Window) NeedsFrame() bool {
	return w.needsFrame
}

// FrameCount returns the number of frames presented.
func (w *Window) FrameCount() uint64 {
	return w.frames
}

// DrawFrame runs one frame onto canvas. It returns false if the window is
// closed or a pre-draw listener cancelled presentation.
func (w *Window) DrawFrame(canvas graphics.Canvas) bool {
	if w.closed {
		return false
	}
	w.needsFrame = false
	w.layout()
	w.runPosted()

	if !w.observer.DispatchOnPreDraw() {
		w.needsFrame = true
		return false
	}

	guard := graphics.Save(canvas)
	defer guard.Restore()
	canvas.Clear(w.background)
	DrawTree(w.decor, canvas, 0)
	w.frames++
	return true
}

// Close detaches the view tree. Later frames are not drawn.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.decor.detach()
	w.posted = nil
	w.closed = true
}

func (w *Window) layout() {
	w.decor.SetFrame(graphics.RectFromLTWH(0, 0, w.size.Width, w.size.Height))
}

// runPosted drains the actions queued before this frame. Actions posted
// while draining run next frame.
func (w *Window) runPosted() {
	if len(w.posted) == 0 {
		return
	}
	actions := w.posted
	w.posted = nil
	for _, fn := range actions {
		runAction(fn)
	}
}

func runAction(fn func()) {
	defer errors.Recover("view.Window.post")
	fn()
}
