package frost_test

import (
	"path/filepath"
	"testing"

	"github.com/go-drift/frost/pkg/frost"
	"github.com/go-drift/frost/pkg/graphics"
	frosttest "github.com/go-drift/frost/pkg/testing"
	"github.com/go-drift/frost/pkg/view"
)

func newGlassScene(t *testing.T) (*frosttest.WindowTester, *frost.BlurView) {
	t.Helper()
	tester := frosttest.NewWindowTesterWithT(t, graphics.Size{Width: 120, Height: 80})
	stripe := view.NewBox(tester.Context())
	stripe.SetBackground(graphics.RGB(255, 0, 0))
	tester.Add(stripe, graphics.RectFromLTWH(0, 0, 120, 40))

	glass, err := frost.New(tester.Context(),
		frost.WithBlurRadius(4),
		frost.WithDownscaleFactor(2),
		frost.WithCornerRadius(6))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tester.Add(glass, graphics.RectFromLTWH(20, 20, 80, 40))
	return tester, glass
}

func TestBlurViewSnapshotIsStable(t *testing.T) {
	tester, glass := newGlassScene(t)
	if !tester.Pump() {
		t.Fatal("expected first frame")
	}
	first := tester.CaptureSnapshot()
	tester.PumpFrames(2)
	second := tester.CaptureSnapshot()

	if diff := first.Diff(second); diff != "" {
		t.Errorf("expected identical frames for a static scene, got:\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "glass.snapshot.json")
	if err := first.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	t.Setenv(frosttest.UpdateSnapshotsEnv, "")
	second.MatchesFile(t, path)

	if got := glass.Stats().Captured; got != 3 {
		t.Errorf("expected 3 captures, got %d", got)
	}
}

func TestBlurViewSnapshotProperties(t *testing.T) {
	tester, _ := newGlassScene(t)
	tester.Pump()

	found := tester.Find(frosttest.ByType[*frost.BlurView]())
	if found.Count() != 1 {
		t.Fatalf("expected 1 blur view, got %d", found.Count())
	}

	snap := tester.CaptureSnapshot()
	node := snap.ViewTree.Children[1]
	if node.Type != "BlurView" {
		t.Fatalf("expected BlurView node, got %s", node.Type)
	}
	want := map[string]any{
		"state":        frost.StateAttachedHooked.String(),
		"blurRadius":   4.0,
		"bufferWidth":  40.0,
		"bufferHeight": 20.0,
		"cornerRadius": 6.0,
		"ready":        true,
		"engine":       "box",
	}
	for k, v := range want {
		if node.Properties[k] != v {
			t.Errorf("expected %s=%v, got %v", k, v, node.Properties[k])
		}
	}
}
