package view

import (
	"slices"
	"sync/atomic"

	"github.com/go-drift/frost/pkg/graphics"
)

// ID identifies a node. The zero ID never names a node.
type ID uint64

var lastID atomic.Uint64

func newID() ID {
	return ID(lastID.Add(1))
}

// View is a node in the view tree.
type View interface {
	// Node returns the embedded tree node.
	Node() *Node
	// OnDraw paints the view's own content in its local coordinate space.
	// Background has already been painted; children are painted afterwards.
	OnDraw(canvas graphics.Canvas)
}

// AttachListener is implemented by views that react to entering or
// leaving a window.
type AttachListener interface {
	OnAttachedToWindow()
	OnDetachedFromWindow()
}

// Node provides tree structure, geometry and window attachment for a View.
// Views embed it through Base and call SetSelf with the outer value before
// use.
type Node struct {
	id         ID
	self       View
	ctx        Context
	parent     *Node
	children   []View
	frame      graphics.Rect
	background graphics.Color
	window     *Window
	floating   *TreeObserver // observer handed out before attach
	pending    []func()      // actions posted before attach
	onAttach   []*Subscription
}

// Base is the embeddable form of Node. Embedding Base rather than Node
// keeps the promoted Node method visible, so the outer type satisfies View:
//
//	type Badge struct {
//	    view.Base
//	}
type Base = Node

// SetSelf records the outer View embedding this node.
func (n *Node) SetSelf(self View) {
	n.self = self
}

// SetContext sets the context used to resolve the hosting window.
func (n *Node) SetContext(ctx Context) {
	n.ctx = ctx
}

// Node returns n, satisfying the first half of View for embedders.
func (n *Node) Node() *Node {
	return n
}

// ID returns the node identifier, allocating it on first use.
func (n *Node) ID() ID {
	if n.id == 0 {
		n.id = newID()
	}
	return n.id
}

// Self returns the View embedding this node.
func (n *Node) Self() View {
	return n.self
}

// Context returns the node's context, or nil.
func (n *Node) Context() Context {
	return n.ctx
}

// Parent returns the parent view, or nil for a root.
func (n *Node) Parent() View {
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

// Children returns the child views in paint order.
func (n *Node) Children() []View {
	return n.children
}

// SetFrame positions the node inside its parent.
func (n *Node) SetFrame(frame graphics.Rect) {
	if n.frame == frame {
		return
	}
	n.frame = frame
	n.Invalidate()
}

// Frame returns the node's rectangle in parent coordinates.
func (n *Node) Frame() graphics.Rect {
	return n.frame
}

// Size returns the node's size.
func (n *Node) Size() graphics.Size {
	return n.frame.Size()
}

// SetBackground sets a solid color painted behind OnDraw.
func (n *Node) SetBackground(c graphics.Color) {
	n.background = c
	n.Invalidate()
}

// Background returns the background color.
func (n *Node) Background() graphics.Color {
	return n.background
}

// AddChild appends child, detaching it from any previous parent.
func (n *Node) AddChild(child View) {
	cn := child.Node()
	if cn.self == nil {
		cn.self = child
	}
	if cn.parent != nil {
		cn.parent.RemoveChild(child)
	}
	cn.parent = n
	n.children = append(n.children, child)
	if n.window != nil {
		cn.attach(n.window)
	}
	n.Invalidate()
}

// RemoveChild removes child and detaches its subtree from the window.
func (n *Node) RemoveChild(child View) {
	cn := child.Node()
	i := slices.IndexFunc(n.children, func(v View) bool { return v.Node() == cn })
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	if cn.window != nil {
		cn.detach()
	}
	cn.parent = nil
	n.Invalidate()
}

// Window returns the window this node is attached to, or nil.
func (n *Node) Window() *Window {
	return n.window
}

// IsAttached reports whether the node is attached to a window.
func (n *Node) IsAttached() bool {
	return n.window != nil
}

// TreeObserver returns the window's observer when attached. Before attach
// it returns a floating observer whose listeners move to the window's
// observer on attach.
func (n *Node) TreeObserver() *TreeObserver {
	if n.window != nil {
		return n.window.observer
	}
	if n.floating == nil {
		n.floating = NewTreeObserver()
	}
	return n.floating
}

// AddAttachListener registers fn to run every time n is attached to a
// window, after n's own AttachListener and before its children attach.
// Dispose the returned subscription to stop notifications.
func (n *Node) AddAttachListener(fn func()) *Subscription {
	if fn == nil {
		return &Subscription{disposed: true}
	}
	s := &Subscription{fn: func() bool { fn(); return true }}
	n.onAttach = append(n.onAttach, s)
	return s
}

// Post runs fn at the start of the next frame, after layout. Actions
// posted before attach are held until the node is attached.
func (n *Node) Post(fn func()) {
	if fn == nil {
		return
	}
	if n.window != nil {
		n.window.Post(fn)
		return
	}
	n.pending = append(n.pending, fn)
}

// LocationInWindow returns the node's origin in window coordinates.
func (n *Node) LocationInWindow() graphics.Offset {
	var loc graphics.Offset
	for cur := n; cur != nil; cur = cur.parent {
		loc = loc.Add(cur.frame.TopLeft())
	}
	return loc
}

// LocationOnScreen returns the node's origin in screen coordinates.
func (n *Node) LocationOnScreen() graphics.Offset {
	loc := n.LocationInWindow()
	if n.window != nil {
		loc = loc.Add(n.window.origin)
	}
	return loc
}

// Invalidate requests a new frame from the hosting window.
func (n *Node) Invalidate() {
	if n.window != nil {
		n.window.needsFrame = true
	}
}

func (n *Node) attach(w *Window) {
	n.window = w
	if n.floating != nil {
		w.observer.merge(n.floating)
		n.floating = nil
	}
	for _, fn := range n.pending {
		w.Post(fn)
	}
	n.pending = nil
	if l, ok := n.self.(AttachListener); ok {
		l.OnAttachedToWindow()
	}
	n.onAttach = slices.DeleteFunc(n.onAttach, func(s *Subscription) bool { return s.disposed })
	for _, s := range slices.Clone(n.onAttach) {
		if !s.disposed {
			s.fn()
		}
	}
	for _, child := range n.children {
		child.Node().attach(w)
	}
}

func (n *Node) detach() {
	for _, child := range n.children {
		child.Node().detach()
	}
	if l, ok := n.self.(AttachListener); ok {
		l.OnDetachedFromWindow()
	}
	n.window = nil
}

// DrawTree paints v and its descendants in v's local coordinate space.
// The subtree rooted at the node with ID exclude is skipped; pass 0 to
// paint everything.
func DrawTree(v View, canvas graphics.Canvas, exclude ID) {
	n := v.Node()
	if exclude != 0 && n.ID() == exclude {
		return
	}
	if n.background.Alpha8() != 0 {
		size := n.Size()
		canvas.DrawRect(graphics.RectFromLTWH(0, 0, size.Width, size.Height), graphics.FillPaint(n.background))
	}
	v.OnDraw(canvas)
	for _, child := range n.children {
		cn := child.Node()
		if exclude != 0 && cn.ID() == exclude {
			continue
		}
		guard := graphics.Save(canvas)
		canvas.Translate(cn.frame.Left, cn.frame.Top)
		DrawTree(child, canvas, exclude)
		guard.Restore()
	}
}
