// Package locomotion turns motion intent into rigid-body impulses and
// kinematic flight on the authoritative side.
package locomotion

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
	"github.com/pthm-cable/avatar/motion"
)

// Locomotion holds movement tuning. It keeps no per-avatar state; intent and
// flight flags are passed in by the owning controller.
type Locomotion struct {
	moveForce   float32
	damping     float32
	jumpImpulse float32
	flySpeed    float32
	flyExit     float32
	mass        float32
	rotateSpeed float32
	mouseSens   float32
	tiltLimit   float32
	tiltStep    float32
	tiltLift    float32
}

// New creates a locomotion stepper from config.
func New(cfg config.LocomotionConfig) *Locomotion {
	return &Locomotion{
		moveForce:   float32(cfg.MoveForce),
		damping:     float32(cfg.DampingForce),
		jumpImpulse: float32(cfg.JumpImpulse),
		flySpeed:    float32(cfg.FlySpeedFactor),
		flyExit:     float32(cfg.FlyExitImpulse),
		mass:        float32(cfg.AvatarMass),
		rotateSpeed: float32(cfg.RotateSpeed),
		mouseSens:   float32(cfg.MouseRotateSensitivity),
		tiltLimit:   float32(cfg.TiltLimit),
		tiltStep:    float32(cfg.TiltStep),
		tiltLift:    float32(cfg.TiltLift),
	}
}

// Mass returns the nominal avatar mass restored when flight ends.
func (l *Locomotion) Mass() float32 {
	return l.mass
}

// Step runs one physics step. Returns true if a jump was initiated, which
// changes the flight state the animation selection depends on.
func (l *Locomotion) Step(in *motion.Intent, fs *motion.FlightState, body host.RigidBody, place host.Placeable) bool {
	if place == nil {
		return false
	}
	if fs.Flying {
		l.fly(in, place)
		return false
	}
	if body == nil {
		return false
	}

	if in.Moving() {
		fb, st := float32(in.ForwardBack), float32(in.Strafe)
		// Normalize so diagonal input is not faster
		inv := 1 / math32.Sqrt(fb*fb+st*st)
		impulse := mgl32.Vec3{inv * l.moveForce * fb, -inv * l.moveForce * st, 0}
		body.ApplyImpulse(place.Transform().RelativeVector(impulse))
	}

	// Damping is skipped for sleeping bodies so it never wakes them
	if body.IsActive() {
		v := body.LinearVelocity()
		body.ApplyImpulse(mgl32.Vec3{-l.damping * v.X(), -l.damping * v.Y(), 0})
	}

	if in.Vertical == 1 && !fs.Falling {
		body.ApplyImpulse(mgl32.Vec3{0, 0, l.jumpImpulse})
		in.Vertical = 0
		fs.Falling = true
		return true
	}
	return false
}

// fly moves the placeable directly. No collision checks are made.
func (l *Locomotion) fly(in *motion.Intent, place host.Placeable) {
	tr := place.Transform()
	fb, st, vert := float32(in.ForwardBack), float32(in.Strafe), float32(in.Vertical)

	move := mgl32.Vec3{fb * l.flySpeed, -st * l.flySpeed, vert * l.flySpeed}
	tr.Pos = tr.Pos.Add(tr.RelativeVector(move))

	// Bank into turns while strafing forward, lifting slightly with the tilt
	roll := tr.Rot.X()
	if in.ForwardBack != 0 && in.Strafe != 0 {
		roll = clamp(roll+st*l.tiltStep, -l.tiltLimit, l.tiltLimit)
		tr.Pos[2] += math32.Abs(roll) * l.tiltLift
	}
	if in.Strafe == 0 {
		roll = towardZero(roll, l.tiltStep)
	}
	tr.Rot[0] = roll

	place.SetTransform(tr)
}

// ToggleFly flips flight mode. Entering flight zeroes the body mass; leaving
// it restores the mass, levels the avatar and pushes it along the held
// direction so it does not stall against whatever it flew into.
func (l *Locomotion) ToggleFly(in *motion.Intent, fs *motion.FlightState, body host.RigidBody, place host.Placeable) {
	fs.Flying = !fs.Flying
	if body == nil {
		return
	}
	if fs.Flying {
		body.SetMass(0)
		return
	}

	var tr components.Transform
	if place != nil {
		tr = place.Transform()
		if tr.Rot.X() != 0 {
			tr.Rot[0] = 0
			place.SetTransform(tr)
		}
	}

	body.SetMass(l.mass)

	push := mgl32.Vec3{
		float32(in.ForwardBack) * l.flyExit,
		-float32(in.Strafe) * l.flyExit,
		float32(in.Vertical) * l.flyExit,
	}
	if push.Len() == 0 {
		return
	}
	if place != nil {
		push = tr.RelativeVector(push)
	}
	body.ApplyImpulse(push)
}

// Turn applies held keyboard rotation for one frame.
func (l *Locomotion) Turn(in *motion.Intent, body host.RigidBody, dt float32) {
	if in.Rotate == 0 || body == nil {
		return
	}
	body.Rotate(mgl32.Vec3{0, 0, -l.rotateSpeed * float32(in.Rotate) * dt})
}

// MouseLook rotates the avatar by a pointer delta.
func (l *Locomotion) MouseLook(body host.RigidBody, amount float32) {
	if body == nil || amount == 0 {
		return
	}
	body.Rotate(mgl32.Vec3{0, 0, -l.mouseSens * amount})
}

// Land clears the falling flag on a new ground contact. Continuous contact
// does not count. Returns true if the flight state changed.
func Land(fs *motion.FlightState, c host.Collision) bool {
	if !fs.Falling || !c.NewCollision {
		return false
	}
	fs.Falling = false
	return true
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// towardZero moves x toward 0 by step without crossing it.
func towardZero(x, step float32) float32 {
	switch {
	case x > 0:
		return math32.Max(x-step, 0)
	case x < 0:
		return math32.Min(x+step, 0)
	}
	return x
}
