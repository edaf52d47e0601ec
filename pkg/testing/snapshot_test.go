package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/view"
)

func pumpBox(t *testing.T, frame graphics.Rect, c graphics.Color) *WindowTester {
	t.Helper()
	tester := NewWindowTesterWithT(t, graphics.Size{Width: 200, Height: 100})
	box := view.NewBox(tester.Context())
	box.SetBackground(c)
	tester.Add(box, frame)
	tester.Pump()
	return tester
}

func TestCaptureSnapshot_ViewTree(t *testing.T) {
	tester := pumpBox(t, graphics.RectFromLTWH(10, 20, 30, 40), graphics.RGB(255, 0, 0))
	snap := tester.CaptureSnapshot()

	root := snap.ViewTree
	if root == nil || root.ID != "Box#0" {
		t.Fatalf("expected decor view Box#0, got %+v", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	child := root.Children[0]
	if child.ID != "Box#1" {
		t.Errorf("expected Box#1, got %s", child.ID)
	}
	if child.Frame != [4]float64{10, 20, 40, 60} {
		t.Errorf("expected frame [10 20 40 60], got %v", child.Frame)
	}
	if child.Background != graphics.RGB(255, 0, 0).String() {
		t.Errorf("expected red background, got %q", child.Background)
	}
	if snap.Window.Size != [2]float64{200, 100} {
		t.Errorf("expected window size [200 100], got %v", snap.Window.Size)
	}
	if len(snap.DisplayOps) == 0 {
		t.Error("expected display ops from the pumped frame")
	}
}

func TestSnapshot_Diff_Equal(t *testing.T) {
	tester := pumpBox(t, graphics.RectFromLTWH(0, 0, 50, 50), graphics.RGB(0, 255, 0))
	a := tester.CaptureSnapshot()
	tester.Pump()
	b := tester.CaptureSnapshot()

	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff for identical frames, got:\n%s", diff)
	}
}

func TestSnapshot_Diff_Different(t *testing.T) {
	a := pumpBox(t, graphics.RectFromLTWH(0, 0, 50, 50), graphics.RGB(255, 0, 0)).CaptureSnapshot()
	b := pumpBox(t, graphics.RectFromLTWH(0, 0, 60, 50), graphics.RGB(0, 255, 0)).CaptureSnapshot()

	diff := a.Diff(b)
	if diff == "" {
		t.Fatal("expected diff for different snapshots")
	}
	if !strings.HasPrefix(diff, "--- expected\n+++ actual\n") {
		t.Errorf("expected diff header, got:\n%s", diff)
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	snap := pumpBox(t, graphics.RectFromLTWH(0, 0, 80, 40), graphics.RGB(0, 0, 255)).CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "testdata", "box.snapshot.json")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("snapshot file should exist after UpdateFile")
	}

	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	snap := pumpBox(t, graphics.RectFromLTWH(0, 0, 50, 50), graphics.RGB(0, 0, 0)).CaptureSnapshot()

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, filepath.Join(t.TempDir(), "missing.json"))

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	first := pumpBox(t, graphics.RectFromLTWH(0, 0, 50, 50), graphics.RGB(255, 0, 0)).CaptureSnapshot()
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := first.UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	second := pumpBox(t, graphics.RectFromLTWH(0, 0, 99, 99), graphics.RGB(0, 0, 255)).CaptureSnapshot()
	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	second.MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	snap := pumpBox(t, graphics.RectFromLTWH(0, 0, 60, 30), graphics.RGB(1, 2, 3)).CaptureSnapshot()
	path := filepath.Join(t.TempDir(), "update.snapshot.json")

	t.Setenv(UpdateSnapshotsEnv, "1")
	snap.MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
