package view

// DefaultResolveDepth bounds how many wrappers FindWindowOwner unwraps.
const DefaultResolveDepth = 4

// Context is a link in the chain a view uses to find its hosting window.
type Context interface {
	// BaseContext returns the wrapped context, or nil at the end of the chain.
	BaseContext() Context
}

// WindowOwner is a context that owns a top-level window.
type WindowOwner interface {
	Context
	Window() *Window
}

// Wrapper decorates another context.
type Wrapper struct {
	Base Context
}

// NewWrapper wraps base.
func NewWrapper(base Context) *Wrapper {
	return &Wrapper{Base: base}
}

// BaseContext returns the wrapped context.
func (w *Wrapper) BaseContext() Context {
	if w == nil {
		return nil
	}
	return w.Base
}

// Activity is the window-owning context.
type Activity struct {
	window *Window
}

// NewActivity returns a context owning w.
func NewActivity(w *Window) *Activity {
	return &Activity{window: w}
}

// BaseContext returns nil; an activity ends the chain.
func (a *Activity) BaseContext() Context {
	return nil
}

// Window returns the owned window.
func (a *Activity) Window() *Window {
	if a == nil {
		return nil
	}
	return a.window
}

// Background is a root context with no window, such as an application
// or service context.
type Background struct{}

// BaseContext returns nil.
func (Background) BaseContext() Context {
	return nil
}

// FindWindowOwner unwraps ctx at most maxDepth times looking for a
// WindowOwner.
func FindWindowOwner(ctx Context, maxDepth int) (WindowOwner, bool) {
	for i := 0; i < maxDepth && ctx != nil; i++ {
		if _, ok := ctx.(WindowOwner); ok {
			break
		}
		ctx = ctx.BaseContext()
	}
	owner, ok := ctx.(WindowOwner)
	if !ok || owner.Window() == nil {
		return nil, false
	}
	return owner, true
}
