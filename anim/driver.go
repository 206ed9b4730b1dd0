package anim

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
)

// Driver resolves canonical names to engine clips and keeps the selected
// clip playing. One driver per avatar per side.
type Driver struct {
	clips     map[Name]string // configured engine clip per name
	resolved  map[Name]string // "" marks a name disabled for the session
	detected  bool
	speeds    map[Name]float32
	walkSpeed float32
	fade      float32
	headless  bool
	log       *slog.Logger
}

// NewDriver creates a driver. headless disables every playback call.
func NewDriver(cfg *config.Config, headless bool, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	d := &Driver{
		clips:     make(map[Name]string, len(All)),
		resolved:  make(map[Name]string, len(All)),
		speeds:    make(map[Name]float32, len(cfg.Derived.Speeds32)),
		walkSpeed: float32(cfg.Animation.WalkAnimSpeed),
		fade:      float32(cfg.Animation.FadeTime),
		headless:  headless,
		log:       log,
	}
	for _, n := range All {
		d.clips[n] = cfg.Derived.ClipNames[n.String()]
	}
	for s, speed := range cfg.Derived.Speeds32 {
		if n := ParseName(s); n != None {
			d.speeds[n] = speed
		}
	}
	return d
}

// Detected reports whether clip resolution has completed.
func (d *Driver) Detected() bool {
	return d.detected
}

// Clip returns the resolved engine clip for n, or "" if unresolved or disabled.
func (d *Driver) Clip(n Name) string {
	return d.resolved[n]
}

// Resolve matches every canonical name against the controller's clips. It is
// a no-op until the controller reports a non-empty clip list, then latches.
// Names without a matching clip stay disabled for the session.
func (d *Driver) Resolve(ctrl host.AnimationController) bool {
	if d.detected {
		return true
	}
	if ctrl == nil {
		return false
	}
	available := ctrl.AvailableAnimations()
	if len(available) == 0 {
		return false
	}

	have := make(map[string]struct{}, len(available))
	for _, clip := range available {
		have[clip] = struct{}{}
	}
	for _, n := range All {
		clip := d.clips[n]
		if _, ok := have[clip]; !ok {
			d.log.Warn("animation clip not found, disabling", "animation", n.String(), "clip", clip)
			clip = ""
		}
		d.resolved[n] = clip
	}
	d.detected = true
	return true
}

// Tick keeps the selected clip playing and couples walk speed to the body's
// horizontal velocity. On observers the velocity is the replicated value.
func (d *Driver) Tick(ctrl host.AnimationController, body host.RigidBody) {
	if ctrl == nil || !d.Resolve(ctrl) {
		return
	}
	if body == nil || d.headless {
		return
	}

	name := ParseName(ctrl.AnimationState())
	if name == None {
		return
	}

	if clip := d.resolved[name]; clip != "" {
		if !ctrl.IsAnimationActive(clip) {
			if name == Wave {
				// Gestures overlay the locomotion clip and play once
				ctrl.EnableAnimation(clip, false, d.fade, d.fade, false)
			} else {
				ctrl.EnableExclusiveAnimation(clip, true, d.fade, d.fade, false)
			}
		}
		if speed, ok := d.speeds[name]; ok {
			ctrl.SetAnimationSpeed(clip, speed)
		}
	}

	if walk := d.resolved[Walk]; walk != "" && ctrl.IsAnimationActive(walk) {
		ctrl.SetAnimationSpeed(walk, WalkSpeed(body.LinearVelocity(), d.walkSpeed))
	}
}

// WalkSpeed is the walk clip playback speed for a velocity. Vertical velocity is ignored.
func WalkSpeed(v mgl32.Vec3, factor float32) float32 {
	return math32.Hypot(v.X(), v.Y()) * factor
}
