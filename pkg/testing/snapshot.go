package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

// UpdateSnapshotsEnv names the environment variable that switches
// MatchesFile into update mode when set to "1".
const UpdateSnapshotsEnv = "FROST_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// PropertyDescriber is implemented by views that contribute properties
// to snapshots.
type PropertyDescriber interface {
	DescribeProperties() map[string]any
}

// Snapshot captures the view tree structure and the last frame's
// display operations.
type Snapshot struct {
	Window     WindowInfo           `json:"window"`
	ViewTree   *ViewNode            `json:"viewTree"`
	DisplayOps []graphics.DisplayOp `json:"displayOps,omitempty"`
}

// WindowInfo describes the window a snapshot was taken from.
type WindowInfo struct {
	Size   [2]float64 `json:"size"`
	Origin [2]float64 `json:"origin"`
}

// ViewNode represents a node in the serialized view tree.
type ViewNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Frame      [4]float64     `json:"frame"`
	Background string         `json:"background,omitempty"`
	Properties map[string]any `json:"props,omitempty"`
	Children   []*ViewNode    `json:"children,omitempty"`
}

// CaptureSnapshot captures the current view tree and the operations of
// the last presented frame.
func (t *WindowTester) CaptureSnapshot() *Snapshot {
	w := t.window
	size, origin := w.Size(), w.Origin()
	return &Snapshot{
		Window: WindowInfo{
			Size:   [2]float64{round2(size.Width), round2(size.Height)},
			Origin: [2]float64{round2(origin.X), round2(origin.Y)},
		},
		ViewTree:   captureViewNode(w.DecorView(), &typeCounter{}),
		DisplayOps: t.Ops(),
	}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When FROST_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// typeCounter assigns stable IDs like "Box#0", "Box#1". Node IDs are
// process-wide and differ between runs, so they are not serialized.
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureViewNode(v view.View, counter *typeCounter) *ViewNode {
	typeName := viewTypeName(v)
	n := v.Node()
	frame := n.Frame()

	node := &ViewNode{
		ID:    counter.next(typeName),
		Type:  typeName,
		Frame: [4]float64{round2(frame.Left), round2(frame.Top), round2(frame.Right), round2(frame.Bottom)},
	}
	if bg := n.Background(); bg.Alpha8() != 0 {
		node.Background = bg.String()
	}
	if d, ok := v.(PropertyDescriber); ok {
		if props := normalizeProperties(d.DescribeProperties()); len(props) > 0 {
			node.Properties = props
		}
	}
	for _, child := range n.Children() {
		node.Children = append(node.Children, captureViewNode(child, counter))
	}
	return node
}

func viewTypeName(v view.View) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if len(name) > 0 {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

// normalizeProperties rounds floats and stringifies colors so that a
// snapshot compares equal to its own JSON round trip.
func normalizeProperties(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case fmt.Stringer:
			out[k] = val.String()
		case float64:
			out[k] = round2(val)
		case float32:
			out[k] = round2(float64(val))
		case int:
			out[k] = float64(val)
		case uint64:
			out[k] = float64(val)
		default:
			out[k] = val
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}
	return buf.String()
}
