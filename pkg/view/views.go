package view

import (
	"image"

	"github.com/go-drift/frost/pkg/graphics"
)

var (
	_ View = (*Box)(nil)
	_ View = (*ImageView)(nil)
)

// Box is a plain container; it paints only its background.
type Box struct {
	Base
}

// NewBox returns a box bound to ctx.
func NewBox(ctx Context) *Box {
	b := &Box{}
	b.SetSelf(b)
	b.SetContext(ctx)
	return b
}

// OnDraw implements View.
func (b *Box) OnDraw(graphics.Canvas) {}

// ImageView paints an image scaled to its bounds.
type ImageView struct {
	Base
	img     image.Image
	quality graphics.FilterQuality
}

// NewImageView returns a view displaying img.
func NewImageView(ctx Context, img image.Image) *ImageView {
	v := &ImageView{img: img, quality: graphics.FilterQualityLow}
	v.SetSelf(v)
	v.SetContext(ctx)
	return v
}

// SetImage replaces the displayed image.
func (v *ImageView) SetImage(img image.Image) {
	v.img = img
	v.Invalidate()
}

// SetFilterQuality sets the scaling quality.
func (v *ImageView) SetFilterQuality(q graphics.FilterQuality) {
	v.quality = q
}

// OnDraw implements View.
func (v *ImageView) OnDraw(canvas graphics.Canvas) {
	if v.img == nil {
		return
	}
	size := v.Size()
	canvas.DrawImageRect(v.img, graphics.Rect{}, graphics.RectFromLTWH(0, 0, size.Width, size.Height), v.quality)
}
