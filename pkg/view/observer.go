package view

import "slices"

// PreDrawListener runs once per frame before the window presents.
// Returning false cancels presentation of that frame.
type PreDrawListener func() bool

// Subscription is the handle returned by AddPreDrawListener and
// Node.AddAttachListener. Dispose removes the listener; it is idempotent.
type Subscription struct {
	observer *TreeObserver
	fn       PreDrawListener
	disposed bool
}

// Dispose removes the listener from whichever observer currently holds it.
// A disposed listener never fires again, including later in a dispatch
// that is already running.
func (s *Subscription) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true
	if s.observer != nil {
		s.observer.remove(s)
	}
	s.observer = nil
}

// Active reports whether the listener is still registered.
func (s *Subscription) Active() bool {
	return s != nil && !s.disposed
}

// TreeObserver dispatches frame lifecycle callbacks for a window.
type TreeObserver struct {
	preDraw []*Subscription
}

// NewTreeObserver returns an empty observer.
func NewTreeObserver() *TreeObserver {
	return &TreeObserver{}
}

// AddPreDrawListener registers fn and returns its subscription.
// A nil fn yields an already disposed subscription.
func (o *TreeObserver) AddPreDrawListener(fn PreDrawListener) *Subscription {
	if fn == nil {
		return &Subscription{disposed: true}
	}
	s := &Subscription{observer: o, fn: fn}
	o.preDraw = append(o.preDraw, s)
	return s
}

// RemovePreDrawListener disposes sub if this observer holds it.
func (o *TreeObserver) RemovePreDrawListener(sub *Subscription) {
	if sub != nil && sub.observer == o {
		sub.Dispose()
	}
}

// Contains reports whether sub is registered with this observer.
func (o *TreeObserver) Contains(sub *Subscription) bool {
	return sub != nil && slices.Contains(o.preDraw, sub)
}

// PreDrawListenerCount returns the number of registered listeners.
func (o *TreeObserver) PreDrawListenerCount() int {
	return len(o.preDraw)
}

// DispatchOnPreDraw notifies every listener registered when the dispatch
// starts. It returns false if any listener cancelled the frame.
func (o *TreeObserver) DispatchOnPreDraw() bool {
	if len(o.preDraw) == 0 {
		return true
	}
	snapshot := slices.Clone(o.preDraw)
	proceed := true
	for _, s := range snapshot {
		if s.disposed {
			continue
		}
		if !s.fn() {
			proceed = false
		}
	}
	return proceed
}

func (o *TreeObserver) remove(s *Subscription) {
	o.preDraw = slices.DeleteFunc(o.preDraw, func(x *Subscription) bool { return x == s })
}

// merge moves every listener of from into o.
func (o *TreeObserver) merge(from *TreeObserver) {
	if from == nil || from == o {
		return
	}
	for _, s := range from.preDraw {
		s.observer = o
		o.preDraw = append(o.preDraw, s)
	}
	from.preDraw = nil
}
