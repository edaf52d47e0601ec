// Package scene builds windows of frosted-glass views from YAML documents.
//
// A document describes one window and a tree of nodes:
//
//	version: v1.0.0
//	window: {width: 400, height: 800, background: "#FFFFFFFF"}
//	engine: box
//	nodes:
//	  - {id: photo, kind: image, frame: [0, 0, 400, 800], src: photo.png}
//	  - kind: blur
//	    frame: [20, 100, 360, 200]
//	    blur: {blurRadius: 16, overlayColor: "0x04000000", cornerRadius: 12}
//
// Blur nodes sample the window's decor view unless target names another node.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	frosterrors "github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/graphics"
)

// FormatVersion is the newest document format this package reads.
// Documents declaring a different major version are rejected.
const FormatVersion = "v1.0.0"

// Node kinds.
const (
	KindBox   = "box"
	KindImage = "image"
	KindBlur  = "blur"
)

// Document is the decoded form of a scene file.
type Document struct {
	Version string     `yaml:"version,omitempty"`
	Window  WindowSpec `yaml:"window"`
	Engine  string     `yaml:"engine,omitempty"`
	Nodes   []NodeSpec `yaml:"nodes"`
}

// WindowSpec describes the hosting window.
type WindowSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background,omitempty"`
	Origin     Point   `yaml:"origin,omitempty"`
}

// Point is a screen position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// NodeSpec describes one view and its children. Frame is [left, top,
// width, height] in parent coordinates.
type NodeSpec struct {
	ID       string     `yaml:"id,omitempty"`
	Kind     string     `yaml:"kind"`
	Frame    []float64  `yaml:"frame"`
	Color    string     `yaml:"color,omitempty"`
	Src      string     `yaml:"src,omitempty"`
	Quality  string     `yaml:"quality,omitempty"`
	Blur     *BlurSpec  `yaml:"blur,omitempty"`
	Target   string     `yaml:"target,omitempty"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// BlurSpec holds blur attributes. Unset fields take frost defaults.
type BlurSpec struct {
	BlurRadius      *float64 `yaml:"blurRadius,omitempty"`
	OverlayColor    string   `yaml:"overlayColor,omitempty"`
	DownscaleFactor *float64 `yaml:"downscaleFactor,omitempty"`
	CornerRadius    *float64 `yaml:"cornerRadius,omitempty"`
}

// Load reads and parses the scene file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a scene document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's structure. Image files and blur
// configuration values are checked by Build.
func (d *Document) Validate() error {
	if d.Version != "" {
		if !semver.IsValid(d.Version) {
			return configError("version", d.Version, "must be a semantic version")
		}
		if semver.Major(d.Version) != semver.Major(FormatVersion) {
			return configError("version", d.Version, "unsupported major version, want "+semver.Major(FormatVersion))
		}
	}
	if d.Window.Width <= 0 || d.Window.Height <= 0 {
		return configError("window", fmt.Sprintf("%vx%v", d.Window.Width, d.Window.Height), "size must be positive")
	}
	if d.Window.Background != "" {
		if _, err := graphics.ParseColor(d.Window.Background); err != nil {
			return configError("window.background", d.Window.Background, err.Error())
		}
	}

	ids := make(map[string]bool)
	var walk func(prefix string, nodes []NodeSpec) error
	walk = func(prefix string, nodes []NodeSpec) error {
		for i := range nodes {
			n := &nodes[i]
			path := fmt.Sprintf("%s[%d]", prefix, i)
			if err := n.validate(path); err != nil {
				return err
			}
			if n.ID != "" {
				if ids[n.ID] {
					return configError(path+".id", n.ID, "duplicate id")
				}
				ids[n.ID] = true
			}
			if err := walk(path+".children", n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("nodes", d.Nodes); err != nil {
		return err
	}

	// Targets may reference nodes declared later in the file.
	var check func(prefix string, nodes []NodeSpec) error
	check = func(prefix string, nodes []NodeSpec) error {
		for i, n := range nodes {
			path := fmt.Sprintf("%s[%d]", prefix, i)
			if n.Target != "" && !ids[n.Target] {
				return configError(path+".target", n.Target, "unknown node id")
			}
			if n.Target != "" && n.Target == n.ID {
				return configError(path+".target", n.Target, "a blur node cannot target itself")
			}
			if err := check(path+".children", n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check("nodes", d.Nodes)
}

func (n *NodeSpec) validate(path string) error {
	switch strings.ToLower(n.Kind) {
	case KindBox, KindBlur:
	case KindImage:
		if n.Src == "" {
			return configError(path+".src", n.Src, "image nodes need a source file")
		}
	default:
		return configError(path+".kind", n.Kind, "want box, image or blur")
	}
	if len(n.Frame) != 4 {
		return configError(path+".frame", n.Frame, "want [left, top, width, height]")
	}
	if n.Frame[2] < 0 || n.Frame[3] < 0 {
		return configError(path+".frame", n.Frame, "width and height must not be negative")
	}
	if n.Color != "" {
		if _, err := graphics.ParseColor(n.Color); err != nil {
			return configError(path+".color", n.Color, err.Error())
		}
	}
	if _, err := parseQuality(n.Quality); err != nil {
		return configError(path+".quality", n.Quality, err.Error())
	}
	if n.Target != "" && !strings.EqualFold(n.Kind, KindBlur) {
		return configError(path+".target", n.Target, "only blur nodes have a target")
	}
	if n.Blur != nil && !strings.EqualFold(n.Kind, KindBlur) {
		return configError(path+".blur", n.Kind, "only blur nodes take blur attributes")
	}
	return nil
}

func (n *NodeSpec) rect() graphics.Rect {
	return graphics.RectFromLTWH(n.Frame[0], n.Frame[1], n.Frame[2], n.Frame[3])
}

func parseQuality(s string) (graphics.FilterQuality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low", "bilinear":
		return graphics.FilterQualityLow, nil
	case "none", "nearest":
		return graphics.FilterQualityNone, nil
	case "high", "bicubic":
		return graphics.FilterQualityHigh, nil
	default:
		return 0, errors.New("want none, low or high")
	}
}

func configError(field string, value any, reason string) error {
	return &frosterrors.ConfigError{Field: field, Value: value, Reason: reason}
}
