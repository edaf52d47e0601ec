package testing

import (
	"testing"

	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

const (
	// DefaultTestWidth is the default width of the test window.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default height of the test window.
	DefaultTestHeight = 600
)

// WindowTester drives a headless window frame by frame. Frames are drawn
// onto a recording canvas instead of a surface.
type WindowTester struct {
	window   *view.Window
	activity *view.Activity
	recorder *graphics.PictureRecorder
	last     *graphics.DisplayList
}

// NewWindowTester creates a tester around a new window. A zero size uses
// the default test size. Call Cleanup() when done, or use
// NewWindowTesterWithT() instead.
func NewWindowTester(size graphics.Size, opts ...view.WindowOption) *WindowTester {
	if size.Width == 0 && size.Height == 0 {
		size = graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight}
	}
	w := view.NewWindow(size, opts...)
	return &WindowTester{
		window:   w,
		activity: view.NewActivity(w),
		recorder: &graphics.PictureRecorder{},
	}
}

// NewWindowTesterWithT creates a tester that closes its window via
// t.Cleanup(). This is the recommended constructor for tests.
func NewWindowTesterWithT(t *testing.T, size graphics.Size, opts ...view.WindowOption) *WindowTester {
	tester := NewWindowTester(size, opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup closes the window, detaching its view tree.
func (t *WindowTester) Cleanup() {
	t.window.Close()
}

// Window returns the window under test.
func (t *WindowTester) Window() *view.Window {
	return t.window
}

// Context returns an activity context owning the window.
func (t *WindowTester) Context() view.Context {
	return t.activity
}

// Add places v at frame inside the window's decor view.
func (t *WindowTester) Add(v view.View, frame graphics.Rect) {
	v.Node().SetFrame(frame)
	t.window.AddView(v)
}

// Pump runs one frame. It returns false if the frame was not presented.
// The recorded operations replace those of the previous frame only when
// the frame was presented.
func (t *WindowTester) Pump() bool {
	canvas := t.recorder.BeginRecording(t.window.Size())
	drawn := t.window.DrawFrame(canvas)
	list := t.recorder.EndRecording()
	if drawn {
		t.last = list
	}
	return drawn
}

// PumpFrames runs n frames and returns how many were presented.
func (t *WindowTester) PumpFrames(n int) int {
	drawn := 0
	for range n {
		if t.Pump() {
			drawn++
		}
	}
	return drawn
}

// DisplayList returns the operations of the last presented frame, or nil
// before the first one.
func (t *WindowTester) DisplayList() *graphics.DisplayList {
	return t.last
}

// Ops returns the serialized operations of the last presented frame.
func (t *WindowTester) Ops() []graphics.DisplayOp {
	if t.last == nil {
		return nil
	}
	return t.last.Ops()
}

// Find evaluates f against the window's view tree.
func (t *WindowTester) Find(f Finder) FinderResult {
	return FinderResult{views: f.Evaluate(t.window.DecorView()), finder: f}
}
