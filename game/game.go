// Package game runs an authoritative scene and an observing scene side by
// side in a single process, with the owning user's input scripted by a
// scenario.
package game

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/avatar"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/replication"
	"github.com/pthm-cable/avatar/systems"
	"github.com/pthm-cable/avatar/telemetry"
)

// Options configures a runner.
type Options struct {
	OutputDir  string // empty disables CSV output
	LogStats   bool   // log perf stats every PerfWindow frames
	PerfWindow int
	Logger     *slog.Logger
}

// Game holds both sides of a run.
type Game struct {
	cfg *config.Config
	log *slog.Logger

	server *systems.Scene
	client *systems.Scene

	auth   *avatar.Authority
	viewer *avatar.Viewer

	// Client to server action channel and server to client state channel
	queue    action.Queue
	boundary *replication.Boundary

	scenario *Scenario

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	perfWindow    int

	frame int
}

// NewGameWithOptions builds both scenes, spawns the avatar on each and
// attaches its controllers.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	perfWindow := opts.PerfWindow
	if perfWindow < 1 {
		perfWindow = 60
	}

	g := &Game{
		cfg:           cfg,
		log:           log,
		server:        systems.NewScene(systems.Authority, cfg.Scene.ServerHeadless, cfg.Physics, log.With("side", "server")),
		client:        systems.NewScene(systems.Observer, cfg.Scene.ClientHeadless, cfg.Physics, log.With("side", "client")),
		boundary:      replication.NewBoundary(),
		scenario:      NewScenario(cfg.Scenario),
		collector:     telemetry.NewCollector(cfg.Telemetry.TraceEvery, cfg.Derived.DT32),
		perfCollector: telemetry.NewPerfCollector(perfWindow),
		logStats:      opts.LogStats,
		perfWindow:    perfWindow,
	}

	// Nothing is attached yet if output setup fails
	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	g.outputManager = om

	if err := g.spawn(); err != nil {
		om.Close()
		return nil, err
	}

	return g, nil
}

// spawn creates the avatar on both sides and attaches its controllers.
func (g *Game) spawn() error {
	name := g.cfg.Scene.AvatarName

	clips := make(map[string]float32, len(g.cfg.Scene.AvatarClips))
	for clip, length := range g.cfg.Scene.AvatarClips {
		clips[clip] = float32(length)
	}
	spec := systems.AvatarSpec{
		Name:           name,
		Pos:            mgl32.Vec3{0, 0, float32(g.cfg.Scene.SpawnHeight)},
		Clips:          clips,
		MeshLoadFrames: g.cfg.Scene.MeshLoadFrames,
	}
	for _, s := range []*systems.Scene{g.server, g.client} {
		if _, err := s.SpawnAvatar(spec); err != nil {
			return fmt.Errorf("spawning on %s: %w", s.Role(), err)
		}
	}

	// The scene's own camera is live until the viewer takes over
	if free := g.cfg.Scene.FreeCamera; free != "" {
		cam := g.client.CreateCamera(free)
		if cam == nil {
			return fmt.Errorf("creating camera %q", free)
		}
		cam.SetActive()
	}

	var err error
	if g.auth, err = avatar.Attach(g.server, name, g.cfg, g.log.With("side", "server")); err != nil {
		return err
	}
	if g.viewer, err = avatar.AttachViewer(g.client, name, true, &g.queue, g.cfg, g.log.With("side", "client")); err != nil {
		g.auth.Detach()
		return err
	}
	return nil
}

// UpdateHeadless advances both sides by one frame.
func (g *Game) UpdateHeadless() {
	dt := g.cfg.Derived.DT32

	g.perfCollector.StartFrame()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.scenario.Apply(g.frame, g.viewer, g.client, g.log)
	handled := 0
	g.queue.Drain(func(a action.Action) {
		handled++
		g.auth.Handle(a)
	})

	g.perfCollector.StartPhase(telemetry.PhaseServerStep)
	g.server.Step(dt)

	g.perfCollector.StartPhase(telemetry.PhaseServerFrame)
	g.server.Frame(dt)

	g.perfCollector.StartPhase(telemetry.PhaseReplicate)
	g.boundary.Publish(g.server.Snapshot()...)
	g.boundary.Deliver(func(st replication.State) { g.client.Apply(st) })

	g.perfCollector.StartPhase(telemetry.PhaseClientFrame)
	g.client.Step(dt)
	g.client.Frame(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordTelemetry(handled)

	g.perfCollector.EndFrame()

	g.frame++
	if g.logStats && g.frame%g.perfWindow == 0 {
		g.perfCollector.Stats().LogStats(g.log)
	}
}

// Tick returns the number of frames run so far.
func (g *Game) Tick() int {
	return g.frame
}

// Server returns the authoritative scene.
func (g *Game) Server() *systems.Scene {
	return g.server
}

// Client returns the observing scene.
func (g *Game) Client() *systems.Scene {
	return g.client
}

// Authority returns the authoritative avatar controller.
func (g *Game) Authority() *avatar.Authority {
	return g.auth
}

// Viewer returns the owning client's avatar viewer.
func (g *Game) Viewer() *avatar.Viewer {
	return g.viewer
}

// Unload detaches the controllers, writes the run summary and closes output files.
func (g *Game) Unload() (telemetry.RunSummary, error) {
	g.viewer.Detach()
	g.auth.Detach()

	summary := g.Summary()
	if err := g.flushTelemetry(); err != nil {
		g.outputManager.Close()
		return summary, err
	}
	if err := g.outputManager.WriteSummary(summary); err != nil {
		g.outputManager.Close()
		return summary, err
	}
	return summary, g.outputManager.Close()
}
