package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/telemetry"
)

func newTestGame(t *testing.T, scenario []config.ScenarioEvent, outputDir string) *Game {
	t.Helper()
	cfg := config.Default()
	cfg.Scenario = scenario
	g, err := NewGameWithOptions(cfg, Options{OutputDir: outputDir})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	return g
}

func run(g *Game, frames int) {
	for i := 0; i < frames; i++ {
		g.UpdateHeadless()
	}
}

func TestRunWalksAndReplicates(t *testing.T) {
	g := newTestGame(t, []config.ScenarioEvent{
		{Frame: 5, Kind: "key", Key: "W", Pressed: true},
		{Frame: 65, Kind: "key", Key: "W", Pressed: false},
	}, "")

	run(g, 65)
	name := g.cfg.Scene.AvatarName
	if got := g.Client().Entity(name).AnimationController().AnimationState(); got != "Walk" {
		t.Fatalf("client state = %q, want Walk", got)
	}
	if vx := g.Server().Entity(name).RigidBody().LinearVelocity().X(); vx < 3 {
		t.Errorf("forward velocity = %v, want near 3.5", vx)
	}

	run(g, 10)
	if got := g.Client().Entity(name).AnimationController().AnimationState(); got != "Stand" {
		t.Errorf("client state = %q, want Stand", got)
	}

	s := g.Summary()
	if s.Frames != 75 || g.Tick() != 75 {
		t.Errorf("frames = %d, tick = %d, want 75", s.Frames, g.Tick())
	}
	if s.Actions != 2 {
		t.Errorf("actions = %d, want 2", s.Actions)
	}
	if s.Transitions != 2 {
		t.Errorf("transitions = %d, want 2", s.Transitions)
	}
	if s.StateFrames["Walk"] != 60 {
		t.Errorf("walk frames = %d, want 60", s.StateFrames["Walk"])
	}
	if s.Distance <= 0 {
		t.Error("expected the avatar to cover some distance")
	}
}

func TestInputIgnoredWhileFreeCameraActive(t *testing.T) {
	g := newTestGame(t, []config.ScenarioEvent{
		{Frame: 2, Kind: "camera", Key: "FreeLookCamera"},
		{Frame: 4, Kind: "key", Key: "W", Pressed: true},
		{Frame: 6, Kind: "camera", Key: "AvatarCamera"},
		{Frame: 6, Kind: "camera", Key: "NoSuchCamera"},
	}, "")

	run(g, 12)
	if s := g.Summary(); s.Actions != 0 {
		t.Errorf("actions = %d, want 0", s.Actions)
	}
	if !g.Viewer().CameraActive() {
		t.Error("avatar camera should be active again")
	}
	if g.scenario.Remaining() != 0 {
		t.Errorf("remaining events = %d, want 0", g.scenario.Remaining())
	}
}

func TestUnloadWritesOutput(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, nil, dir)
	run(g, 20)

	summary, err := g.Unload()
	if err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if summary.Frames != 20 {
		t.Errorf("summary frames = %d, want 20", summary.Frames)
	}

	f, err := os.Open(filepath.Join(dir, "trace.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var rows []telemetry.TraceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 20 {
		t.Errorf("trace rows = %d, want 20", len(rows))
	}
	if rows[len(rows)-1].ClientAnim != "Stand" {
		t.Errorf("last client state = %q, want Stand", rows[len(rows)-1].ClientAnim)
	}

	for _, name := range []string{"summary.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	if n := g.Server().ListenerCount(); n != 0 {
		t.Errorf("server listeners after unload = %d, want 0", n)
	}
}

func TestCameraNameCollision(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.FreeCamera = cfg.Scene.AvatarName
	if _, err := NewGameWithOptions(cfg, Options{}); err == nil {
		t.Error("expected an error when the scene camera takes the avatar's name")
	}
}

func TestOutputFailureBeforeAttach(t *testing.T) {
	// A regular file where the output directory should go
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	g, err := NewGameWithOptions(config.Default(), Options{OutputDir: filepath.Join(blocker, "run")})
	if err == nil || g != nil {
		t.Fatalf("expected setup error, got game=%v err=%v", g, err)
	}
}

func TestSpawnFailureAfterOutputSetup(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Scene.FreeCamera = cfg.Scene.AvatarName
	if _, err := NewGameWithOptions(cfg, Options{OutputDir: dir}); err == nil {
		t.Fatal("expected spawn error")
	}
	// Config snapshot was written before the failed attach
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml missing: %v", err)
	}
}

func TestScenarioOrdersByFrame(t *testing.T) {
	s := NewScenario([]config.ScenarioEvent{
		{Frame: 9, Kind: "key", Key: "B"},
		{Frame: 3, Kind: "key", Key: "A"},
		{Frame: 9, Kind: "key", Key: "C"},
	})
	if s.events[0].Key != "A" || s.events[1].Key != "B" || s.events[2].Key != "C" {
		t.Errorf("unexpected order: %+v", s.events)
	}
	if s.Remaining() != 3 {
		t.Errorf("remaining = %d, want 3", s.Remaining())
	}
}
