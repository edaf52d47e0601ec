package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

// Finder locates views in a view tree.
type Finder interface {
	// Evaluate returns all matching views under root (depth-first pre-order).
	Evaluate(root view.View) []view.View
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	views  []view.View
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() view.View {
	if len(r.views) == 0 {
		panic(fmt.Sprintf("Finder found no views: %s", r.describe()))
	}
	return r.views[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() view.View {
	if len(r.views) == 0 {
		return nil
	}
	return r.views[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) view.View {
	if index < 0 || index >= len(r.views) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.views), r.describe()))
	}
	return r.views[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []view.View {
	return r.views
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.views)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.views) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// typeFinder matches views of the specified dynamic type.
type typeFinder struct {
	viewType reflect.Type
}

func (f *typeFinder) Evaluate(root view.View) []view.View {
	return collectMatches(root, func(v view.View) bool {
		return reflect.TypeOf(v) == f.viewType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.viewType)
}

// ByType returns a finder that matches views of type T.
func ByType[T view.View]() Finder {
	return &typeFinder{viewType: reflect.TypeFor[T]()}
}

// idFinder matches the view with the given node ID.
type idFinder struct {
	id view.ID
}

func (f *idFinder) Evaluate(root view.View) []view.View {
	return collectMatches(root, func(v view.View) bool {
		return v.Node().ID() == f.id
	})
}

func (f *idFinder) Description() string {
	return fmt.Sprintf("ByID(%d)", f.id)
}

// ByID returns a finder that matches the view with node ID id.
func ByID(id view.ID) Finder {
	return &idFinder{id: id}
}

// backgroundFinder matches views painting the given background color.
type backgroundFinder struct {
	color graphics.Color
}

func (f *backgroundFinder) Evaluate(root view.View) []view.View {
	return collectMatches(root, func(v view.View) bool {
		return v.Node().Background() == f.color
	})
}

func (f *backgroundFinder) Description() string {
	return fmt.Sprintf("ByBackground(%s)", f.color)
}

// ByBackground returns a finder that matches views whose background is c.
func ByBackground(c graphics.Color) Finder {
	return &backgroundFinder{color: c}
}

// predicateFinder matches views satisfying an arbitrary function.
type predicateFinder struct {
	fn   func(view.View) bool
	desc string
}

func (f *predicateFinder) Evaluate(root view.View) []view.View {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches views for which fn returns true.
func ByPredicate(desc string, fn func(view.View) bool) Finder {
	return &predicateFinder{fn: fn, desc: desc}
}

// collectMatches walks the tree depth-first pre-order.
func collectMatches(root view.View, match func(view.View) bool) []view.View {
	var out []view.View
	var walk func(v view.View)
	walk = func(v view.View) {
		if match(v) {
			out = append(out, v)
		}
		for _, child := range v.Node().Children() {
			walk(child)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
