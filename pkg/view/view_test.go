package view

import (
	"image"
	"testing"

	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/graphics"
)

type attachRecorder struct {
	Base
	events []string
}

func newAttachRecorder() *attachRecorder {
	v := &attachRecorder{}
	v.SetSelf(v)
	return v
}

func (v *attachRecorder) OnDraw(graphics.Canvas) {}
func (v *attachRecorder) OnAttachedToWindow()    { v.events = append(v.events, "attach") }
func (v *attachRecorder) OnDetachedFromWindow()  { v.events = append(v.events, "detach") }

type panicHandler struct {
	panics []*errors.PanicError
}

func (h *panicHandler) HandleError(*errors.Error)          {}
func (h *panicHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }

func imageOfSize(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func recordFrame(w *Window) (*graphics.DisplayList, bool) {
	recorder := &graphics.PictureRecorder{}
	ok := w.DrawFrame(recorder.BeginRecording(w.Size()))
	return recorder.EndRecording(), ok
}

func TestNode_AttachDetach(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 100, Height: 100})
	parent := newAttachRecorder()
	child := newAttachRecorder()
	parent.AddChild(child)

	if child.IsAttached() {
		t.Fatal("expected child detached before parent is added")
	}
	w.AddView(parent)
	if !parent.IsAttached() || !child.IsAttached() {
		t.Fatal("expected subtree attached")
	}
	if child.Window() != w {
		t.Error("expected child window to be w")
	}

	w.DecorView().Node().RemoveChild(parent)
	if parent.IsAttached() || child.IsAttached() {
		t.Error("expected subtree detached")
	}
	if got := child.events; len(got) != 2 || got[0] != "attach" || got[1] != "detach" {
		t.Errorf("unexpected child events %v", got)
	}
	if child.Parent() != View(parent) {
		t.Error("expected child to keep its parent")
	}
}

func TestNode_AddChildReparents(t *testing.T) {
	a := NewBox(nil)
	b := NewBox(nil)
	c := NewBox(nil)
	a.AddChild(c)
	b.AddChild(c)
	if len(a.Children()) != 0 {
		t.Errorf("expected c removed from a, got %d children", len(a.Children()))
	}
	if c.Parent() != View(b) {
		t.Error("expected c parented to b")
	}
}

func TestNode_Locations(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 200, Height: 200}, WithOrigin(10, 20))
	outer := NewBox(nil)
	outer.SetFrame(graphics.RectFromLTWH(30, 40, 100, 100))
	inner := NewBox(nil)
	inner.SetFrame(graphics.RectFromLTWH(5, 6, 10, 10))
	outer.AddChild(inner)

	if got := inner.LocationOnScreen(); got != (graphics.Offset{X: 35, Y: 46}) {
		t.Errorf("expected detached screen location (35,46), got %v", got)
	}
	w.AddView(outer)
	if got := inner.LocationInWindow(); got != (graphics.Offset{X: 35, Y: 46}) {
		t.Errorf("expected window location (35,46), got %v", got)
	}
	if got := inner.LocationOnScreen(); got != (graphics.Offset{X: 45, Y: 66}) {
		t.Errorf("expected screen location (45,66), got %v", got)
	}
}

func TestNode_IDsAreUnique(t *testing.T) {
	a, b := NewBox(nil), NewBox(nil)
	if a.ID() == 0 || a.ID() == b.ID() {
		t.Errorf("expected distinct non-zero IDs, got %d and %d", a.ID(), b.ID())
	}
	if a.ID() != a.ID() {
		t.Error("expected stable ID")
	}
}

func TestNode_FloatingObserverMergesOnAttach(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	box := NewBox(nil)
	calls := 0
	sub := box.TreeObserver().AddPreDrawListener(func() bool {
		calls++
		return true
	})

	w.AddView(box)
	if !w.Observer().Contains(sub) {
		t.Fatal("expected listener moved to the window observer")
	}
	if box.TreeObserver() != w.Observer() {
		t.Error("expected attached node to report the window observer")
	}
	recordFrame(w)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	sub.Dispose()
	if w.Observer().PreDrawListenerCount() != 0 {
		t.Error("expected Dispose to remove the moved listener")
	}
}

func TestNode_PostBeforeAttach(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	box := NewBox(nil)
	ran := false
	box.Post(func() { ran = true })
	recordFrame(w)
	if ran {
		t.Fatal("expected pending action held until attach")
	}
	w.AddView(box)
	recordFrame(w)
	if !ran {
		t.Error("expected pending action to run after attach")
	}
}

func TestTreeObserver_DisposeIsIdempotent(t *testing.T) {
	o := NewTreeObserver()
	sub := o.AddPreDrawListener(func() bool { return true })
	if !sub.Active() {
		t.Fatal("expected active subscription")
	}
	sub.Dispose()
	sub.Dispose()
	o.RemovePreDrawListener(sub)
	if sub.Active() || o.PreDrawListenerCount() != 0 {
		t.Error("expected listener removed")
	}
	if o.AddPreDrawListener(nil).Active() {
		t.Error("expected nil listener to yield a disposed subscription")
	}
}

func TestTreeObserver_DisposeDuringDispatch(t *testing.T) {
	o := NewTreeObserver()
	var second *Subscription
	secondCalls := 0
	o.AddPreDrawListener(func() bool {
		second.Dispose()
		return true
	})
	second = o.AddPreDrawListener(func() bool {
		secondCalls++
		return true
	})
	if !o.DispatchOnPreDraw() {
		t.Fatal("expected dispatch to proceed")
	}
	if secondCalls != 0 {
		t.Errorf("expected disposed listener skipped, got %d calls", secondCalls)
	}
}

func TestTreeObserver_Cancel(t *testing.T) {
	o := NewTreeObserver()
	calls := 0
	o.AddPreDrawListener(func() bool { calls++; return false })
	o.AddPreDrawListener(func() bool { calls++; return true })
	if o.DispatchOnPreDraw() {
		t.Error("expected dispatch to report cancellation")
	}
	if calls != 2 {
		t.Errorf("expected every listener to run, got %d", calls)
	}
}

func TestFindWindowOwner(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	act := NewActivity(w)

	wrap := func(ctx Context, n int) Context {
		for i := 0; i < n; i++ {
			ctx = NewWrapper(ctx)
		}
		return ctx
	}
	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{"activity", act, true},
		{"wrapped at max depth", wrap(act, DefaultResolveDepth), true},
		{"wrapped too deep", wrap(act, DefaultResolveDepth+1), false},
		{"background", Background{}, false},
		{"wrapped background", wrap(Background{}, 2), false},
		{"nil", nil, false},
		{"activity without window", NewActivity(nil), false},
	}
	for _, tt := range tests {
		owner, ok := FindWindowOwner(tt.ctx, DefaultResolveDepth)
		if ok != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, ok)
			continue
		}
		if ok && owner.Window() != w {
			t.Errorf("%s: expected owner of w", tt.name)
		}
	}
}

func TestWindow_DrawFrame(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 50, Height: 50}, WithBackground(graphics.ColorBlack))
	box := NewBox(nil)
	box.SetFrame(graphics.RectFromLTWH(10, 10, 20, 20))
	box.SetBackground(graphics.ColorRed)
	w.AddView(box)

	list, ok := recordFrame(w)
	if !ok {
		t.Fatal("expected frame to be drawn")
	}
	ops := list.Ops()
	if ops[1].Op != "clear" || ops[1].Params["color"] != "#FF000000" {
		t.Errorf("expected clear to window background, got %v", ops[1])
	}
	found := false
	for i, op := range ops {
		if op.Op == "drawRect" && op.Params["color"] == "#FFFF0000" {
			found = true
			if prev := ops[i-1]; prev.Op != "translate" || prev.Params["dx"] != 10.0 {
				t.Errorf("expected child translated by its frame, got %v", prev)
			}
		}
	}
	if !found {
		t.Error("expected child background drawn")
	}
	if w.FrameCount() != 1 {
		t.Errorf("expected 1 frame, got %d", w.FrameCount())
	}
}

func TestWindow_CancelledFrame(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	w.Observer().AddPreDrawListener(func() bool { return false })
	list, ok := recordFrame(w)
	if ok {
		t.Error("expected cancelled frame")
	}
	if list.Len() != 0 {
		t.Errorf("expected nothing drawn, got %d ops", list.Len())
	}
	if !w.NeedsFrame() {
		t.Error("expected cancelled frame to request another")
	}
}

func TestWindow_PostedPanicIsReported(t *testing.T) {
	h := &panicHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	w.Post(func() { panic("bad action") })
	if _, ok := recordFrame(w); !ok {
		t.Fatal("expected frame to survive a panicking action")
	}
	if len(h.panics) != 1 || h.panics[0].Op != "view.Window.post" {
		t.Errorf("unexpected reported panics %v", h.panics)
	}
}

func TestWindow_CloseDetaches(t *testing.T) {
	w := NewWindow(graphics.Size{Width: 10, Height: 10})
	v := newAttachRecorder()
	w.AddView(v)
	w.Close()
	if v.IsAttached() {
		t.Error("expected view detached after Close")
	}
	if _, ok := recordFrame(w); ok {
		t.Error("expected closed window not to draw")
	}
}

func TestDrawTree_Exclude(t *testing.T) {
	root := NewBox(nil)
	root.SetFrame(graphics.RectFromLTWH(0, 0, 10, 10))
	skipped := NewBox(nil)
	skipped.SetFrame(graphics.RectFromLTWH(0, 0, 5, 5))
	skipped.SetBackground(graphics.ColorRed)
	kept := NewBox(nil)
	kept.SetFrame(graphics.RectFromLTWH(5, 5, 5, 5))
	kept.SetBackground(graphics.ColorBlue)
	root.AddChild(skipped)
	root.AddChild(kept)

	recorder := &graphics.PictureRecorder{}
	DrawTree(root, recorder.BeginRecording(graphics.Size{Width: 10, Height: 10}), skipped.ID())
	for _, op := range recorder.EndRecording().Ops() {
		if op.Params["color"] == "#FFFF0000" {
			t.Error("expected excluded subtree not drawn")
		}
	}
}

func TestImageView_DrawsScaled(t *testing.T) {
	img := imageOfSize(4, 2)
	v := NewImageView(nil, img)
	v.SetFrame(graphics.RectFromLTWH(0, 0, 40, 20))
	recorder := &graphics.PictureRecorder{}
	DrawTree(v, recorder.BeginRecording(graphics.Size{Width: 40, Height: 20}), 0)
	ops := recorder.EndRecording().Ops()
	if len(ops) != 1 || ops[0].Op != "drawImageRect" {
		t.Fatalf("unexpected ops %v", ops)
	}
	if ops[0].Params["width"] != 4 {
		t.Errorf("expected source width 4, got %v", ops[0].Params["width"])
	}
}

// badge is a user-defined view built the way applications define theirs.
type badge struct {
	Base
	drawn int
}

func (b *badge) OnDraw(canvas graphics.Canvas) {
	b.drawn++
	canvas.DrawRect(graphics.RectFromLTWH(0, 0, 4, 4), graphics.FillPaint(graphics.ColorGreen))
}

func TestBase_EmbeddingSatisfiesView(t *testing.T) {
	b := &badge{}
	b.SetSelf(b)
	b.SetFrame(graphics.RectFromLTWH(5, 5, 10, 10))

	var v View = b
	if v.Node() != &b.Base {
		t.Fatal("expected Node to return the embedded base")
	}
	w := NewWindow(graphics.Size{Width: 20, Height: 20})
	w.AddView(v)
	if !b.IsAttached() {
		t.Fatal("expected badge attached")
	}
	list, ok := recordFrame(w)
	if !ok {
		t.Fatal("expected frame to be drawn")
	}
	if b.drawn != 1 {
		t.Errorf("expected 1 draw, got %d", b.drawn)
	}
	found := false
	for _, op := range list.Ops() {
		if op.Op == "drawRect" && op.Params["color"] == graphics.ColorGreen.String() {
			found = true
		}
	}
	if !found {
		t.Error("expected badge content in the frame")
	}
}

func TestNode_AttachListener(t *testing.T) {
	w1 := NewWindow(graphics.Size{Width: 10, Height: 10})
	w2 := NewWindow(graphics.Size{Width: 10, Height: 10})
	box := NewBox(nil)

	var windows []*Window
	sub := box.AddAttachListener(func() { windows = append(windows, box.Window()) })
	if !sub.Active() {
		t.Fatal("expected active subscription")
	}

	w1.AddView(box)
	w1.DecorView().Node().RemoveChild(box)
	w2.AddView(box)
	if len(windows) != 2 || windows[0] != w1 || windows[1] != w2 {
		t.Fatalf("expected attach to w1 then w2, got %v", windows)
	}

	sub.Dispose()
	w2.DecorView().Node().RemoveChild(box)
	w1.AddView(box)
	if len(windows) != 2 {
		t.Errorf("expected no calls after Dispose, got %d", len(windows))
	}

	if box.AddAttachListener(nil).Active() {
		t.Error("expected nil listener to be inactive")
	}
}
