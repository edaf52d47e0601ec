// Package testing provides a headless window harness for view tests.
//
// # Quick Start
//
// Create a tester, add views, pump frames and make assertions:
//
//	func TestGlass(t *testing.T) {
//	    tester := frosttest.NewWindowTesterWithT(t, graphics.Size{Width: 200, Height: 100})
//	    glass, _ := frost.New(tester.Context(), frost.WithCornerRadius(8))
//	    tester.Add(glass, graphics.RectFromLTWH(0, 0, 200, 50))
//	    tester.Pump()
//
//	    if !tester.Find(frosttest.ByType[*frost.BlurView]()).Exists() {
//	        t.Error("expected a blur view")
//	    }
//	}
//
// Each Pump runs one window frame onto a recording canvas, so pre-draw
// listeners fire exactly as they do on screen and the drawing operations
// of the last frame can be inspected.
//
// # Snapshot Testing
//
// Capture and compare view tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/glass.snapshot.json")
//
// Update snapshots with:
//
//	FROST_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import frosttest "github.com/go-drift/frost/pkg/testing"
package testing
