package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/config"
)

// DefaultAvatarBody returns an upright capsule body from locomotion settings.
func DefaultAvatarBody(cfg config.LocomotionConfig) RigidBody {
	return RigidBody{
		Mass:  float32(cfg.AvatarMass),
		Shape: ShapeCapsule,
		Size: mgl32.Vec3{
			float32(cfg.BodySize[0]),
			float32(cfg.BodySize[1]),
			float32(cfg.BodySize[2]),
		},
		AngularFactor: mgl32.Vec3{},
		Active:        true,
	}
}
