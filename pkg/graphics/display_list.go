package graphics

import (
	"image"
	"math"
)

// DisplayList is an immutable list of drawing operations.
// It can be replayed onto any Canvas implementation.
type DisplayList struct {
	ops  []displayOp
	size Size
}

// Paint replays the recorded operations onto the provided canvas.
func (d *DisplayList) Paint(canvas Canvas) {
	for _, op := range d.ops {
		op.execute(canvas)
	}
}

// Size returns the size recorded when the display list was created.
func (d *DisplayList) Size() Size {
	return d.size
}

// Len returns the number of recorded operations.
func (d *DisplayList) Len() int {
	return len(d.ops)
}

// Ops returns a serializable description of every recorded operation.
func (d *DisplayList) Ops() []DisplayOp {
	out := make([]DisplayOp, 0, len(d.ops))
	for _, op := range d.ops {
		out = append(out, op.describe())
	}
	return out
}

// DisplayOp represents a serialized canvas drawing operation.
type DisplayOp struct {
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// PictureRecorder records drawing commands into a display list.
type PictureRecorder struct {
	ops       []displayOp
	recording bool
	size      Size
}

// BeginRecording starts a new recording session.
func (r *PictureRecorder) BeginRecording(size Size) Canvas {
	r.ops = r.ops[:0]
	r.recording = true
	r.size = size
	return &recordingCanvas{recorder: r, size: size, depth: 1}
}

// EndRecording finishes the recording and returns a display list.
func (r *PictureRecorder) EndRecording() *DisplayList {
	if !r.recording {
		return &DisplayList{size: r.size}
	}
	r.recording = false
	ops := make([]displayOp, len(r.ops))
	copy(ops, r.ops)
	return &DisplayList{
		ops:  ops,
		size: r.size,
	}
}

func (r *PictureRecorder) append(op displayOp) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

type displayOp interface {
	execute(canvas Canvas)
	describe() DisplayOp
}

type recordingCanvas struct {
	recorder *PictureRecorder
	size     Size
	depth    int
}

func (c *recordingCanvas) Save() {
	c.depth++
	c.recorder.append(opSave{})
}

func (c *recordingCanvas) Restore() {
	if c.depth <= 1 {
		return
	}
	c.depth--
	c.recorder.append(opRestore{})
}

func (c *recordingCanvas) SaveCount() int {
	return c.depth
}

func (c *recordingCanvas) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	for c.depth > count {
		c.Restore()
	}
}

func (c *recordingCanvas) Translate(dx, dy float64) {
	c.recorder.append(opTranslate{dx: dx, dy: dy})
}

func (c *recordingCanvas) Scale(sx, sy float64) {
	c.recorder.append(opScale{sx: sx, sy: sy})
}

func (c *recordingCanvas) ClipRect(rect Rect) {
	c.recorder.append(opClipRect{rect: rect})
}

func (c *recordingCanvas) ClipRRect(rrect RRect) {
	c.recorder.append(opClipRRect{rrect: rrect})
}

func (c *recordingCanvas) Clear(color Color) {
	c.recorder.append(opClear{color: color})
}

func (c *recordingCanvas) DrawRect(rect Rect, paint Paint) {
	c.recorder.append(opRect{rect: rect, paint: paint})
}

func (c *recordingCanvas) DrawRRect(rrect RRect, paint Paint) {
	c.recorder.append(opRRect{rrect: rrect, paint: paint})
}

func (c *recordingCanvas) DrawImageRect(img image.Image, srcRect, dstRect Rect, quality FilterQuality) {
	c.recorder.append(opImageRect{image: img, src: srcRect, dst: dstRect, quality: quality})
}

func (c *recordingCanvas) Size() Size {
	return c.size
}

type opSave struct{}

func (opSave) execute(canvas Canvas) { canvas.Save() }
func (opSave) describe() DisplayOp   { return DisplayOp{Op: "save"} }

type opRestore struct{}

func (opRestore) execute(canvas Canvas) { canvas.Restore() }
func (opRestore) describe() DisplayOp   { return DisplayOp{Op: "restore"} }

type opTranslate struct {
	dx, dy float64
}

func (o opTranslate) execute(canvas Canvas) { canvas.Translate(o.dx, o.dy) }
func (o opTranslate) describe() DisplayOp {
	return DisplayOp{Op: "translate", Params: map[string]any{"dx": round2(o.dx), "dy": round2(o.dy)}}
}

type opScale struct {
	sx, sy float64
}

func (o opScale) execute(canvas Canvas) { canvas.Scale(o.sx, o.sy) }
func (o opScale) describe() DisplayOp {
	return DisplayOp{Op: "scale", Params: map[string]any{"sx": round2(o.sx), "sy": round2(o.sy)}}
}

type opClipRect struct {
	rect Rect
}

func (o opClipRect) execute(canvas Canvas) { canvas.ClipRect(o.rect) }
func (o opClipRect) describe() DisplayOp {
	return DisplayOp{Op: "clipRect", Params: map[string]any{"rect": serializeRect(o.rect)}}
}

type opClipRRect struct {
	rrect RRect
}

func (o opClipRRect) execute(canvas Canvas) { canvas.ClipRRect(o.rrect) }
func (o opClipRRect) describe() DisplayOp {
	return DisplayOp{Op: "clipRRect", Params: map[string]any{
		"rect":   serializeRect(o.rrect.Rect),
		"radius": round2(o.rrect.UniformRadius()),
	}}
}

type opClear struct {
	color Color
}

func (o opClear) execute(canvas Canvas) { canvas.Clear(o.color) }
func (o opClear) describe() DisplayOp {
	return DisplayOp{Op: "clear", Params: map[string]any{"color": o.color.String()}}
}

type opRect struct {
	rect  Rect
	paint Paint
}

func (o opRect) execute(canvas Canvas) { canvas.DrawRect(o.rect, o.paint) }
func (o opRect) describe() DisplayOp {
	return DisplayOp{Op: "drawRect", Params: map[string]any{
		"rect":  serializeRect(o.rect),
		"color": o.paint.Color.String(),
	}}
}

type opRRect struct {
	rrect RRect
	paint Paint
}

func (o opRRect) execute(canvas Canvas) { canvas.DrawRRect(o.rrect, o.paint) }
func (o opRRect) describe() DisplayOp {
	return DisplayOp{Op: "drawRRect", Params: map[string]any{
		"rect":   serializeRect(o.rrect.Rect),
		"radius": round2(o.rrect.UniformRadius()),
		"color":  o.paint.Color.String(),
	}}
}

type opImageRect struct {
	image   image.Image
	src     Rect
	dst     Rect
	quality FilterQuality
}

func (o opImageRect) execute(canvas Canvas) {
	canvas.DrawImageRect(o.image, o.src, o.dst, o.quality)
}

func (o opImageRect) describe() DisplayOp {
	params := map[string]any{
		"src":     serializeRect(o.src),
		"dst":     serializeRect(o.dst),
		"quality": int(o.quality),
	}
	if o.image != nil {
		b := o.image.Bounds()
		params["width"] = b.Dx()
		params["height"] = b.Dy()
	}
	return DisplayOp{Op: "drawImageRect", Params: params}
}

func serializeRect(r Rect) []float64 {
	return []float64{round2(r.Left), round2(r.Top), round2(r.Right), round2(r.Bottom)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
