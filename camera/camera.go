// Package camera provides the third-person camera rig that follows the avatar
// on the viewing side.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
)

// Rig places a camera behind and above the avatar. In tripod mode the camera
// stays where it is and only pointer look rotates it.
type Rig struct {
	cam host.Camera

	// Distance behind the avatar, clamped to [MinDistance, MaxDistance]
	distance float32
	height   float32

	// Zoom constraints
	MinDistance, MaxDistance float32

	pitch       float32
	yawOffset   float32
	sensitivity float32
	largeScroll float32
	zoomStep    float32

	tripod bool
}

// New creates a rig for the given camera entity using default distance.
func New(cam host.Camera, cfg config.CameraConfig) *Rig {
	r := &Rig{
		cam:         cam,
		height:      float32(cfg.Height),
		MinDistance: float32(cfg.MinDistance),
		MaxDistance: float32(cfg.MaxDistance),
		pitch:       float32(cfg.Pitch),
		yawOffset:   float32(cfg.YawOffset),
		sensitivity: float32(cfg.LookSensitivity),
		largeScroll: float32(cfg.LargeScroll),
		zoomStep:    float32(cfg.KeyboardZoomStep),
	}
	r.SetDistance(float32(cfg.Distance))
	return r
}

// Camera returns the camera entity the rig drives.
func (r *Rig) Camera() host.Camera {
	return r.cam
}

// Active reports whether the rig's camera is the active one.
func (r *Rig) Active() bool {
	return r.cam != nil && r.cam.IsActive()
}

// Activate makes the rig's camera the active camera.
func (r *Rig) Activate() {
	if r.cam != nil {
		r.cam.SetActive()
	}
}

// Distance returns the current follow distance.
func (r *Rig) Distance() float32 {
	return r.distance
}

// SetDistance sets the follow distance, clamped to min/max.
func (r *Rig) SetDistance(d float32) {
	r.distance = clamp(d, r.MinDistance, r.MaxDistance)
}

// Tripod reports whether the camera is detached from the avatar.
func (r *Rig) Tripod() bool {
	return r.tripod
}

// Update positions the camera relative to the avatar. Does nothing in tripod
// mode or when either side is missing.
func (r *Rig) Update(avatar host.Placeable) {
	if r.cam == nil || avatar == nil || r.tripod {
		return
	}
	at := avatar.Transform()

	offset := at.RelativeVector(mgl32.Vec3{-r.distance, 0, r.height})
	ct := r.cam.Transform()
	ct.Pos = at.Pos.Add(offset)
	ct.Rot = mgl32.Vec3{r.pitch, 0, at.Yaw() - r.yawOffset}
	r.cam.SetTransform(ct)
}

// ToggleTripod switches between following and free-look. Rejected while the
// camera is not active; returns whether the mode changed.
func (r *Rig) ToggleTripod() bool {
	if !r.Active() {
		return false
	}
	r.tripod = !r.tripod
	return true
}

// Look rotates the camera by a pointer delta. Only applies in tripod mode.
func (r *Rig) Look(dx, dy float32) {
	if !r.tripod || (dx == 0 && dy == 0) {
		return
	}
	ct := r.cam.Transform()
	ct.Rot[2] -= r.sensitivity * dx
	ct.Rot[0] -= r.sensitivity * dy
	r.cam.SetTransform(ct)
}

// Scroll zooms by a wheel delta. Negative moves the camera away, positive
// moves it closer; large deltas step twice as far.
func (r *Rig) Scroll(relative float32) {
	if relative == 0 || !r.Active() {
		return
	}
	step := float32(1)
	if math32.Abs(relative) > r.largeScroll {
		step = 2
	}
	if relative < 0 && r.distance < r.MaxDistance {
		r.SetDistance(r.distance + step)
	} else if relative > 0 && r.distance > r.MinDistance {
		r.SetDistance(r.distance - step)
	}
}

// KeyboardZoom zooms by one key press worth of scroll.
func (r *Rig) KeyboardZoom(dir action.ZoomDirection) {
	switch dir {
	case action.ZoomIn:
		r.Scroll(r.zoomStep)
	case action.ZoomOut:
		r.Scroll(-r.zoomStep)
	}
}

// Reset returns the rig to following at the given distance.
func (r *Rig) Reset(distance float32) {
	r.tripod = false
	r.SetDistance(distance)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
