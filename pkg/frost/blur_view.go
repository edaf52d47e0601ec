// Package frost implements a real-time frosted-glass view.
//
// A BlurView samples the view tree behind it once per frame, just before
// the window presents, and paints a blurred, tinted copy in its own draw
// pass:
//
//	pre-draw hook -> capture (downscaled, self excluded) -> blur -> stored result
//	draw pass     -> upscale stored result -> tint -> rounded clip
//
// All work happens on the thread that draws frames. Capture failures never
// propagate to the host; the previous result stays on screen until a
// capture succeeds again.
package frost

import (
	"fmt"
	"image"
	"log/slog"
	"weak"

	"github.com/go-drift/frost/pkg/blur"
	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

// State describes a BlurView's attachment and hook status.
type State int

const (
	// StateUnattached means the view is not in a window.
	StateUnattached State = iota
	// StateAttachedNoTarget means the view is attached but has no live hook.
	StateAttachedNoTarget
	// StateAttachedHooked means a pre-draw hook is registered on the target.
	StateAttachedHooked
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttachedNoTarget:
		return "attached-no-target"
	case StateAttachedHooked:
		return "attached-hooked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats counts pre-draw hook outcomes.
type Stats struct {
	// Captured is the number of frames captured and blurred.
	Captured uint64
	// Skipped is the number of frames with nothing to capture
	// (zero radius, no live target, zero-area buffer).
	Skipped uint64
	// Failed is the number of frames whose capture or blur panicked.
	Failed uint64
}

var _ view.View = (*BlurView)(nil)

// BlurView displays a blurred, tinted snapshot of the content behind it.
type BlurView struct {
	view.Base

	cfg    Config
	engine blur.Engine

	// target is never owned; it may be collected or detached at any time.
	target   weak.Pointer[view.Node]
	explicit bool

	hook     *view.Subscription
	hookedID view.ID
	moved    *view.Subscription // re-registers when the target is attached again

	capture *graphics.RasterCanvas // CaptureBuffer
	blurred *image.RGBA            // BlurredBuffer
	staged  *graphics.RasterCanvas // capture at a new size, pending success
	bufW    int
	bufH    int
	ready   bool // blurred holds a result for the current buffer size

	// geometry cache
	src graphics.Rect
	dst graphics.Rect

	failing bool
	stats   Stats
}

// New creates a BlurView. ctx is used at attach time to find the hosting
// window when no target has been bound. Invalid configuration is rejected
// here, never at draw time.
func New(ctx view.Context, opts ...Option) (*BlurView, error) {
	s := settings{config: DefaultConfig(), engine: blur.Box()}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("frost: %w", err)
	}
	b := &BlurView{cfg: s.config, engine: s.engine}
	b.SetSelf(b)
	b.SetContext(ctx)
	return b, nil
}

// Config returns the view's configuration.
func (b *BlurView) Config() Config {
	return b.cfg
}

// Stats returns hook outcome counters.
func (b *BlurView) Stats() Stats {
	return b.stats
}

// Bind sets the view to sample target instead of the window's decor view.
// Any current hook is torn down; the new one is registered after the
// current layout pass. The most recent Bind wins. Bind(nil) clears the
// explicit target. It returns b for chaining.
func (b *BlurView) Bind(target view.View) *BlurView {
	b.unhook()
	if target == nil {
		b.target = weak.Pointer[view.Node]{}
		b.explicit = false
		return b
	}
	b.target = weak.Make(target.Node())
	b.explicit = true
	b.Post(b.register)
	return b
}

// Target returns the live target, or nil if none is set or it was collected.
func (b *BlurView) Target() view.View {
	n := b.target.Value()
	if n == nil {
		return nil
	}
	return n.Self()
}

// State reports attachment and hook status.
func (b *BlurView) State() State {
	switch {
	case !b.IsAttached():
		return StateUnattached
	case b.hook.Active():
		return StateAttachedHooked
	default:
		return StateAttachedNoTarget
	}
}

// OnAttachedToWindow resolves the target and registers the hook.
func (b *BlurView) OnAttachedToWindow() {
	if !b.explicit {
		b.target = weak.Pointer[view.Node]{}
		if owner, ok := view.FindWindowOwner(b.Context(), view.DefaultResolveDepth); ok {
			b.target = weak.Make(owner.Window().DecorView().Node())
		}
	}
	b.register()
}

// OnDetachedFromWindow removes the hook. No capture runs after this returns.
func (b *BlurView) OnDetachedFromWindow() {
	b.unhook()
}

// register registers the pre-draw hook on the current target's observer.
// It is idempotent per target and observer, and does nothing while
// detached. If the target later moves to another window, its attach
// listener calls register again and the hook follows it.
func (b *BlurView) register() {
	if !b.IsAttached() {
		return
	}
	target := b.Target()
	if target == nil {
		b.unhook()
		Logger().Debug("frost: no target", slog.Uint64("view", uint64(b.ID())))
		return
	}
	tn := target.Node()
	observer := tn.TreeObserver()
	if b.hook.Active() && b.hookedID == tn.ID() && observer.Contains(b.hook) {
		return
	}
	b.unhook()
	b.hook = observer.AddPreDrawListener(b.onPreDraw)
	b.hookedID = tn.ID()
	b.moved = tn.AddAttachListener(b.register)
	Logger().Info("frost: hooked",
		slog.Uint64("view", uint64(b.ID())),
		slog.Uint64("target", uint64(tn.ID())))
}

func (b *BlurView) unhook() {
	b.moved.Dispose()
	b.moved = nil
	if b.hook == nil {
		return
	}
	b.hook.Dispose()
	b.hook = nil
	b.hookedID = 0
}

// onPreDraw is the frame hook. It never cancels the host's frame.
func (b *BlurView) onPreDraw() bool {
	if b.IsAttached() {
		b.captureFrame()
	}
	return true
}
