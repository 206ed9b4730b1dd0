// Package systems implements a reference avatar host on an ECS world:
// rigid-body integration with a ground plane, clip playback, cameras and
// replication snapshots.
package systems

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
)

// GroundName is the Other entity reported for ground contacts.
const GroundName = "Ground"

// Contact is a collision reported for a named entity during a step.
type Contact struct {
	Entity    string
	Collision host.Collision
}

// PhysicsSystem integrates dynamic bodies against gravity and a flat ground.
type PhysicsSystem struct {
	filter     ecs.Filter3[components.Placeable, components.RigidBody, components.Name]
	gravity    float32
	groundZ    float32
	sleepSpeed float32
	sleepDelay float32

	contacts []Contact
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, cfg config.PhysicsConfig) *PhysicsSystem {
	return &PhysicsSystem{
		filter:     *ecs.NewFilter3[components.Placeable, components.RigidBody, components.Name](w),
		gravity:    float32(cfg.Gravity),
		groundZ:    float32(cfg.GroundZ),
		sleepSpeed: float32(cfg.SleepSpeed),
		sleepDelay: float32(cfg.SleepDelay),
	}
}

// Update advances every awake dynamic body by dt and returns the contacts
// found. The returned slice is reused by the next call.
func (s *PhysicsSystem) Update(dt float32) []Contact {
	s.contacts = s.contacts[:0]

	query := s.filter.Query()
	for query.Next() {
		place, body, name := query.Get()

		// Kinematic bodies are moved by their owner, never by the solver
		if !body.Dynamic() || !body.Active {
			continue
		}

		v := body.LinearVelocity
		v[2] += s.gravity * dt
		tr := &place.Transform
		tr.Pos = tr.Pos.Add(v.Mul(dt))

		// Body origin is its center
		rest := s.groundZ + body.Size.Z()/2
		if tr.Pos.Z() <= rest {
			var impulse float32
			if v.Z() < 0 {
				impulse = -v.Z() * body.Mass
				v[2] = 0
			}
			tr.Pos[2] = rest
			s.contacts = append(s.contacts, Contact{
				Entity: name.Value,
				Collision: host.Collision{
					Other:        GroundName,
					Position:     mgl32.Vec3{tr.Pos.X(), tr.Pos.Y(), s.groundZ},
					Normal:       mgl32.Vec3{0, 0, 1},
					Impulse:      impulse,
					NewCollision: !body.Grounded,
				},
			})
			body.Grounded = true
		} else {
			body.Grounded = false
		}
		body.LinearVelocity = v

		// Grounded bodies that stay slow fall asleep
		if body.Grounded && v.Len() < s.sleepSpeed {
			body.SleepTime += dt
			if body.SleepTime >= s.sleepDelay {
				body.Active = false
				body.LinearVelocity = mgl32.Vec3{}
			}
		} else {
			body.SleepTime = 0
		}
	}
	return s.contacts
}

// applyImpulse changes a body's velocity immediately and wakes it.
// Impulses on kinematic bodies are ignored.
func applyImpulse(body *components.RigidBody, impulse mgl32.Vec3) {
	if !body.Dynamic() {
		return
	}
	body.LinearVelocity = body.LinearVelocity.Add(impulse.Mul(1 / body.Mass))
	wake(body)
}

func wake(body *components.RigidBody) {
	body.Active = true
	body.SleepTime = 0
}

// setMass changes a body's mass. Zero makes it kinematic: velocity is cleared
// and it no longer rests on the ground.
func setMass(body *components.RigidBody, mass float32) {
	body.Mass = math32.Max(mass, 0)
	if body.Mass == 0 {
		body.LinearVelocity = mgl32.Vec3{}
		body.Grounded = false
	}
	wake(body)
}
