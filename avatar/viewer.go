package avatar

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/anim"
	"github.com/pthm-cable/avatar/camera"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
	"github.com/pthm-cable/avatar/input"
)

// Viewer is the viewing-side controller for one avatar. Every viewer plays
// the replicated animation; only the owning client's viewer also runs the
// camera rig and input routing.
type Viewer struct {
	host   host.Host
	name   string
	own    bool
	driver *anim.Driver
	rig    *camera.Rig
	router *input.Router
	log    *slog.Logger

	cancels []func()
}

// AttachViewer creates a viewer for the named entity. When own is set, the
// avatar camera is created and activated and input is routed to remote.
func AttachViewer(h host.Host, name string, own bool, remote input.Sink, cfg *config.Config, log *slog.Logger) (*Viewer, error) {
	if log == nil {
		log = slog.Default()
	}
	if h.Entity(name) == nil {
		return nil, fmt.Errorf("attaching viewer: entity %q not found", name)
	}

	v := &Viewer{
		host:   h,
		name:   name,
		own:    own,
		driver: anim.NewDriver(cfg, h.Headless(), log.With("avatar", name)),
		log:    log.With("avatar", name),
	}

	if own {
		cam := h.CreateCamera(cfg.Camera.Name)
		if cam == nil {
			return nil, fmt.Errorf("attaching viewer: cannot create camera %q", cfg.Camera.Name)
		}
		v.rig = camera.New(cam, cfg.Camera)
		v.rig.Activate()

		router, err := input.New(cfg.Input, remote, v, v, v.log)
		if err != nil {
			return nil, fmt.Errorf("attaching viewer: %w", err)
		}
		v.router = router
		v.router.SetEnabled(v.rig.Active())
	}

	v.cancels = append(v.cancels, h.OnFrame(v))
	v.log.Info("viewer attached", "own", own)
	return v, nil
}

// Detach unregisters the viewer's listeners.
func (v *Viewer) Detach() {
	for _, cancel := range v.cancels {
		cancel()
	}
	v.cancels = nil
	v.log.Info("viewer detached")
}

// Own reports whether this viewer belongs to the local user.
func (v *Viewer) Own() bool {
	return v.own
}

// Rig returns the camera rig, or nil for viewers of other users' avatars.
func (v *Viewer) Rig() *camera.Rig {
	return v.rig
}

// Driver returns the animation driver.
func (v *Viewer) Driver() *anim.Driver {
	return v.driver
}

// Frame implements host.FrameListener.
func (v *Viewer) Frame(dt float32) {
	ent := v.host.Entity(v.name)
	if ent == nil {
		return
	}
	if v.own {
		v.router.SetEnabled(v.rig.Active())
		v.rig.Update(ent.Placeable())
	}
	v.driver.Tick(ent.AnimationController(), ent.RigidBody())
}

// HandleKey routes a key event. Returns whether it was consumed.
func (v *Viewer) HandleKey(ev input.KeyEvent) bool {
	if !v.own {
		return false
	}
	return v.router.HandleKey(ev)
}

// Pointer routes a relative pointer motion.
func (v *Viewer) Pointer(dx, dy float32) {
	if v.own {
		v.router.Pointer(dx, dy)
	}
}

// Wheel routes a mouse wheel delta.
func (v *Viewer) Wheel(delta float32) {
	if v.own {
		v.router.Wheel(delta)
	}
}

// Pan routes a pan gesture. Returns whether it was accepted.
func (v *Viewer) Pan(ev input.PanEvent) bool {
	return v.own && v.router.Pan(ev)
}

// Pinch routes a pinch gesture. Returns whether it was accepted.
func (v *Viewer) Pinch(ev input.PinchEvent) bool {
	return v.own && v.router.Pinch(ev)
}

// HandleLocal implements input.LocalHandler.
func (v *Viewer) HandleLocal(a action.Action) {
	if v.rig == nil {
		return
	}
	switch a.Kind {
	case action.ToggleTripod:
		if v.rig.ToggleTripod() {
			v.log.Debug("tripod toggled", "tripod", v.rig.Tripod())
		}
	case action.Zoom:
		v.rig.KeyboardZoom(a.Zoom)
	case action.MouseScroll:
		v.rig.Scroll(a.Amount)
	case action.MouseLookX:
		v.rig.Look(a.Amount, 0)
	case action.MouseLookY:
		v.rig.Look(0, a.Amount)
	case action.Move, action.Stop, action.ToggleFly, action.Rotate, action.StopRotate, action.Gesture:
		// Avatar actions run on the authority
	}
}

// CameraActive implements input.View.
func (v *Viewer) CameraActive() bool {
	return v.rig != nil && v.rig.Active()
}

// Walking implements input.View.
func (v *Viewer) Walking() bool {
	ent := v.host.Entity(v.name)
	if ent == nil {
		return false
	}
	ctrl := ent.AnimationController()
	return ctrl != nil && anim.ParseName(ctrl.AnimationState()) == anim.Walk
}
