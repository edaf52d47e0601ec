package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/frost"
	"github.com/go-drift/frost/pkg/graphics"
)

const testScene = `
window: {width: 80, height: 60, background: "#FFFFFFFF"}
nodes:
  - {kind: box, frame: [0, 0, 80, 30], color: "#FFFF0000"}
  - kind: blur
    frame: [10, 10, 60, 40]
    blur: {blurRadius: 4, downscaleFactor: 2, cornerRadius: 6}
`

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		frost.SetLogger(nil)
		errors.SetHandler(nil)
	})
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("expected version %q in output, got %q", Version, out)
	}
}

func TestRenderCommand(t *testing.T) {
	path := writeScene(t, testScene)
	dir := filepath.Dir(path)
	out := filepath.Join(dir, "out.png")
	ops := filepath.Join(dir, "ops.json")

	if _, err := runCLI(t, "render", path, "-o", out, "--frames", "2", "--dump-ops", ops); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("expected output PNG: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
		t.Errorf("expected 80x60, got %v", b)
	}

	data, err := os.ReadFile(ops)
	if err != nil {
		t.Fatalf("expected ops file: %v", err)
	}
	var decoded []graphics.DisplayOp
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ops JSON: %v", err)
	}
	var sawImage, sawClip bool
	for _, op := range decoded {
		switch op.Op {
		case "drawImageRect":
			sawImage = true
		case "clipRRect":
			sawClip = true
		}
	}
	if !sawImage || !sawClip {
		t.Errorf("expected blurred image inside a rounded clip, got %v", decoded)
	}
}

func TestRenderCommand_DefaultOutput(t *testing.T) {
	path := writeScene(t, testScene)
	if _, err := runCLI(t, "render", path); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".yaml") + ".png"); err != nil {
		t.Errorf("expected default output next to the scene: %v", err)
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	path := writeScene(t, testScene)
	bad := writeScene(t, "window: {width: 0, height: 0}\n")
	tests := []struct {
		name string
		args []string
	}{
		{"missing arg", []string{"render"}},
		{"zero frames", []string{"render", path, "--frames", "0"}},
		{"invalid scene", []string{"render", bad}},
		{"unknown engine", []string{"render", path, "--engine", "kawase"}},
		{"missing file", []string{"render", filepath.Join(t.TempDir(), "nope.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatchScene_RendersAndStops(t *testing.T) {
	path := writeScene(t, testScene)
	out := filepath.Join(filepath.Dir(path), "watch.png")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := watchScene(ctx, path, &renderOptions{output: out, frames: 1}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected initial render: %v", err)
	}
}

func TestRenderOptions_OutputPath(t *testing.T) {
	o := &renderOptions{}
	if got := o.outputPath("/tmp/a/scene.yml"); got != "/tmp/a/scene.png" {
		t.Errorf("expected /tmp/a/scene.png, got %q", got)
	}
	o.output = "x.png"
	if got := o.outputPath("/tmp/a/scene.yml"); got != "x.png" {
		t.Errorf("expected x.png, got %q", got)
	}
}
