package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a position plus Euler rotation in degrees. Z is up; at zero
// rotation the local frame has +X forward and +Y to the left.
// Rot.X() is roll (used for flight banking) and Rot.Z() is yaw.
type Transform struct {
	Pos   mgl32.Vec3
	Rot   mgl32.Vec3
	Scale mgl32.Vec3
}

// NewTransform returns a unit-scale transform at pos.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{Pos: pos, Scale: mgl32.Vec3{1, 1, 1}}
}

// Orientation returns the rotation as a quaternion (yaw, then pitch, then roll).
func (t Transform) Orientation() mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(t.Rot.Z()),
		mgl32.DegToRad(t.Rot.Y()),
		mgl32.DegToRad(t.Rot.X()),
		mgl32.ZYX,
	)
}

// RelativeVector rotates a local-frame vector into world space.
func (t Transform) RelativeVector(v mgl32.Vec3) mgl32.Vec3 {
	return t.Orientation().Rotate(v)
}

// Yaw returns the heading in degrees.
func (t Transform) Yaw() float32 {
	return t.Rot.Z()
}
