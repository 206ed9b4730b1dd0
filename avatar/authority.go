// Package avatar attaches per-avatar controllers to a host. Authority owns
// motion on the simulating side; Viewer owns camera, input and clip playback
// on a viewing side.
package avatar

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/anim"
	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
	"github.com/pthm-cable/avatar/locomotion"
	"github.com/pthm-cable/avatar/motion"
)

// Authority is the authoritative controller for one avatar. It receives
// actions, steps locomotion and writes the replicated animation state.
type Authority struct {
	host   host.Host
	name   string
	loco   *locomotion.Locomotion
	driver *anim.Driver
	log    *slog.Logger

	intent motion.Intent
	flight motion.FlightState

	cancels []func()
}

// Attach creates the controller for the named entity, reshapes its body into
// an upright capsule and registers for physics, frame and collision events.
func Attach(h host.Host, name string, cfg *config.Config, log *slog.Logger) (*Authority, error) {
	if log == nil {
		log = slog.Default()
	}
	ent := h.Entity(name)
	if ent == nil {
		return nil, fmt.Errorf("attaching authority: entity %q not found", name)
	}

	a := &Authority{
		host:   h,
		name:   name,
		loco:   locomotion.New(cfg.Locomotion),
		driver: anim.NewDriver(cfg, h.Headless(), log.With("avatar", name)),
		log:    log.With("avatar", name),
	}

	if body := ent.RigidBody(); body != nil {
		def := components.DefaultAvatarBody(cfg.Locomotion)
		body.SetShape(def.Shape, def.Size)
		body.SetMass(def.Mass)
		body.SetAngularFactor(mgl32.Vec3{})
	} else {
		a.log.Warn("avatar has no rigid body, locomotion disabled")
	}
	a.reselect()

	a.cancels = append(a.cancels,
		h.OnPhysicsStep(a),
		h.OnFrame(a),
		h.OnCollision(name, a),
	)
	a.log.Info("authority attached")
	return a, nil
}

// Detach unregisters every listener. The controller must not be used afterwards.
func (a *Authority) Detach() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
	a.log.Info("authority detached")
}

// Name returns the controlled entity's name.
func (a *Authority) Name() string {
	return a.name
}

// Intent returns the current motion intent.
func (a *Authority) Intent() motion.Intent {
	return a.intent
}

// Flight returns the current flight state.
func (a *Authority) Flight() motion.FlightState {
	return a.flight
}

// entity fetches the component handles for this tick; any may be nil.
func (a *Authority) entity() (host.Placeable, host.RigidBody, host.AnimationController) {
	ent := a.host.Entity(a.name)
	if ent == nil {
		return nil, nil, nil
	}
	return ent.Placeable(), ent.RigidBody(), ent.AnimationController()
}

// Handle applies one action. Viewer-only actions are ignored.
func (a *Authority) Handle(act action.Action) {
	place, body, ctrl := a.entity()

	switch act.Kind {
	case action.Move:
		if a.intent.Start(act.Dir) {
			a.reselect()
		}
	case action.Stop:
		if a.intent.Stop(act.Dir) {
			a.reselect()
		}
	case action.ToggleFly:
		a.loco.ToggleFly(&a.intent, &a.flight, body, place)
		a.log.Debug("flight toggled", "flying", a.flight.Flying)
		a.reselect()
	case action.Rotate:
		a.intent.StartRotate(act.Dir)
	case action.StopRotate:
		a.intent.StopRotate(act.Dir)
	case action.MouseLookX:
		a.loco.MouseLook(body, act.Amount)
	case action.Gesture:
		if act.Gesture == action.Wave {
			anim.Apply(ctrl, anim.Wave)
		}
	case action.MouseLookY, action.Zoom, action.ToggleTripod, action.MouseScroll:
		// Camera actions run on the viewer
	}
}

// Exec implements input.Sink so a viewer in the same process can drive the
// authority directly.
func (a *Authority) Exec(act action.Action) {
	a.Handle(act)
}

// PhysicsStep implements host.StepListener.
func (a *Authority) PhysicsStep(dt float32) {
	place, body, _ := a.entity()
	if a.loco.Step(&a.intent, &a.flight, body, place) {
		a.reselect()
	}
}

// Frame implements host.FrameListener.
func (a *Authority) Frame(dt float32) {
	_, body, ctrl := a.entity()
	a.loco.Turn(&a.intent, body, dt)
	a.driver.Tick(ctrl, body)
}

// Collision implements host.CollisionListener.
func (a *Authority) Collision(c host.Collision) {
	if locomotion.Land(&a.flight, c) {
		a.log.Debug("landed", "other", c.Other)
		a.reselect()
	}
}

// reselect recomputes the locomotion animation and writes it if it changed.
func (a *Authority) reselect() {
	_, _, ctrl := a.entity()
	name := anim.Select(a.intent, a.flight)
	if anim.Apply(ctrl, name) {
		a.log.Debug("animation state", "state", name.String())
	}
}
