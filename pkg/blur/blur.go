// Package blur provides the blur engines used by frosted-glass views.
//
// An Engine is a pure function over pixel buffers: the output always has
// the dimensions of the input. Box is the default; it approximates a
// Gaussian at a fraction of the cost, which is what a per-frame pipeline
// needs. Gaussian is available when quality matters more than speed.
package blur

import (
	"fmt"
	"image"
	"strings"

	bildblur "github.com/anthonynsimon/bild/blur"
)

// Engine blurs a buffer.
type Engine interface {
	// Blur returns a blurred copy of src with the same bounds.
	// When preserveAlpha is true the result keeps src's alpha channel.
	Blur(src *image.RGBA, radius float64, preserveAlpha bool) *image.RGBA
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(src *image.RGBA, radius float64, preserveAlpha bool) *image.RGBA

// Blur calls f.
func (f EngineFunc) Blur(src *image.RGBA, radius float64, preserveAlpha bool) *image.RGBA {
	return f(src, radius, preserveAlpha)
}

type bildEngine struct {
	name string
	fn   func(image.Image, float64) *image.RGBA
}

// Box returns the box blur engine.
func Box() Engine {
	return bildEngine{name: "box", fn: bildblur.Box}
}

// Gaussian returns the Gaussian blur engine.
func Gaussian() Engine {
	return bildEngine{name: "gaussian", fn: bildblur.Gaussian}
}

func (e bildEngine) String() string {
	return e.name
}

func (e bildEngine) Blur(src *image.RGBA, radius float64, preserveAlpha bool) *image.RGBA {
	if src == nil {
		return nil
	}
	if radius <= 0 || src.Rect.Empty() {
		return clone(src)
	}
	out := normalize(e.fn(src, radius), src.Rect)
	if preserveAlpha {
		copyAlpha(out, src)
	}
	return out
}

// ByName returns the engine called name ("box" or "gaussian").
// The empty name selects Box.
func ByName(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "box":
		return Box(), nil
	case "gaussian":
		return Gaussian(), nil
	default:
		return nil, fmt.Errorf("unknown blur engine %q", name)
	}
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(src.Rect.Min.X, y):dst.PixOffset(src.Rect.Max.X, y)],
			src.Pix[src.PixOffset(src.Rect.Min.X, y):src.PixOffset(src.Rect.Max.X, y)])
	}
	return dst
}

// normalize rebases img onto bounds; bild returns zero-origin images.
func normalize(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	if img.Rect == bounds {
		return img
	}
	img.Rect = bounds
	return img
}

// copyAlpha replaces dst's alpha with src's, clamping color channels so
// dst stays valid premultiplied RGBA.
func copyAlpha(dst, src *image.RGBA) {
	r := src.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := dst.PixOffset(x, y)
			a := src.Pix[src.PixOffset(x, y)+3]
			dst.Pix[i+3] = a
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = min(dst.Pix[i+c], a)
			}
		}
	}
}
