package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/go-drift/frost/pkg/blur"
	"github.com/go-drift/frost/pkg/frost"
	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

// Scene is a built window and its named views.
type Scene struct {
	Window   *view.Window
	Activity *view.Activity
	Blurs    []*frost.BlurView

	nodes map[string]view.View
}

// Node returns the view declared with id.
func (s *Scene) Node(id string) (view.View, bool) {
	v, ok := s.nodes[id]
	return v, ok
}

// Build creates the window and views described by doc. Relative image
// paths are resolved against baseDir.
func Build(doc *Document, baseDir string) (*Scene, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	engine, err := blur.ByName(doc.Engine)
	if err != nil {
		return nil, configError("engine", doc.Engine, err.Error())
	}

	opts := []view.WindowOption{view.WithOrigin(doc.Window.Origin.X, doc.Window.Origin.Y)}
	if doc.Window.Background != "" {
		bg, _ := graphics.ParseColor(doc.Window.Background)
		opts = append(opts, view.WithBackground(bg))
	}
	w := view.NewWindow(graphics.Size{Width: doc.Window.Width, Height: doc.Window.Height}, opts...)

	b := &builder{
		baseDir: baseDir,
		engine:  engine,
		scene: &Scene{
			Window:   w,
			Activity: view.NewActivity(w),
			nodes:    make(map[string]view.View),
		},
		images: make(map[string]image.Image),
	}

	// Views are created detached and attached in one step, so blur views
	// with explicit targets see every node regardless of file order.
	root := view.NewBox(b.scene.Activity)
	for i := range doc.Nodes {
		v, err := b.build(fmt.Sprintf("nodes[%d]", i), &doc.Nodes[i])
		if err != nil {
			return nil, err
		}
		root.AddChild(v)
	}
	for _, bind := range b.binds {
		bind.view.Bind(b.scene.nodes[bind.target])
	}
	w.SetContent(root)
	return b.scene, nil
}

type pendingBind struct {
	view   *frost.BlurView
	target string
}

type builder struct {
	baseDir string
	engine  blur.Engine
	scene   *Scene
	images  map[string]image.Image
	binds   []pendingBind
}

func (b *builder) build(path string, n *NodeSpec) (view.View, error) {
	ctx := b.scene.Activity
	var v view.View

	switch strings.ToLower(n.Kind) {
	case KindBox:
		v = view.NewBox(ctx)
	case KindImage:
		img, err := b.loadImage(n.Src)
		if err != nil {
			return nil, fmt.Errorf("%s.src: %w", path, err)
		}
		iv := view.NewImageView(ctx, img)
		q, _ := parseQuality(n.Quality)
		iv.SetFilterQuality(q)
		v = iv
	case KindBlur:
		opts, err := blurOptions(path, n.Blur)
		if err != nil {
			return nil, err
		}
		bv, err := frost.New(ctx, append(opts, frost.WithEngine(b.engine))...)
		if err != nil {
			return nil, fmt.Errorf("%s.blur: %w", path, err)
		}
		if n.Target != "" {
			b.binds = append(b.binds, pendingBind{view: bv, target: n.Target})
		}
		b.scene.Blurs = append(b.scene.Blurs, bv)
		v = bv
	}

	node := v.Node()
	node.SetFrame(n.rect())
	if n.Color != "" {
		c, _ := graphics.ParseColor(n.Color)
		node.SetBackground(c)
	}
	if n.ID != "" {
		b.scene.nodes[n.ID] = v
	}
	for i := range n.Children {
		child, err := b.build(fmt.Sprintf("%s.children[%d]", path, i), &n.Children[i])
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}
	return v, nil
}

func blurOptions(path string, spec *BlurSpec) ([]frost.Option, error) {
	if spec == nil {
		return nil, nil
	}
	var opts []frost.Option
	if spec.BlurRadius != nil {
		opts = append(opts, frost.WithBlurRadius(*spec.BlurRadius))
	}
	if spec.OverlayColor != "" {
		c, err := graphics.ParseColor(spec.OverlayColor)
		if err != nil {
			return nil, configError(path+".blur.overlayColor", spec.OverlayColor, err.Error())
		}
		opts = append(opts, frost.WithOverlayColor(c))
	}
	if spec.DownscaleFactor != nil {
		opts = append(opts, frost.WithDownscaleFactor(*spec.DownscaleFactor))
	}
	if spec.CornerRadius != nil {
		opts = append(opts, frost.WithCornerRadius(*spec.CornerRadius))
	}
	return opts, nil
}

// loadImage decodes src once per build; png, jpeg, bmp and webp are supported.
func (b *builder) loadImage(src string) (image.Image, error) {
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.baseDir, path)
	}
	if img, ok := b.images[path]; ok {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	frost.Logger().Debug("scene: image decoded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	b.images[path] = img
	return img, nil
}

// DrawFrames draws n frames onto canvas and returns how many were presented.
func (s *Scene) DrawFrames(canvas graphics.Canvas, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		if s.Window.DrawFrame(canvas) {
			drawn++
		}
	}
	return drawn
}
