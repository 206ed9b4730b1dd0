// Package host declares the capabilities the avatar controller consumes from
// the engine it runs in. Accessors return nil when the component is absent;
// callers skip the tick rather than fail.
package host

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/components"
)

// Placeable exposes an entity's transform.
type Placeable interface {
	Transform() components.Transform
	SetTransform(t components.Transform)
}

// RigidBody exposes a physics body.
type RigidBody interface {
	ApplyImpulse(impulse mgl32.Vec3)
	// Rotate adds Euler degrees to the owning entity's rotation.
	Rotate(degrees mgl32.Vec3)
	LinearVelocity() mgl32.Vec3
	// IsActive reports whether the body is awake.
	IsActive() bool
	Mass() float32
	SetMass(mass float32)
	SetShape(shape components.ShapeType, size mgl32.Vec3)
	SetAngularFactor(factor mgl32.Vec3)
}

// AnimationController exposes clip playback and the replicated animation-state field.
type AnimationController interface {
	AvailableAnimations() []string
	EnableAnimation(name string, looped bool, fadeIn, fadeOut float32, highPriority bool) bool
	// EnableExclusiveAnimation starts name and fades out every other exclusive clip.
	EnableExclusiveAnimation(name string, looped bool, fadeIn, fadeOut float32, highPriority bool) bool
	SetAnimationSpeed(name string, speed float32) bool
	IsAnimationActive(name string) bool
	AnimationState() string
	SetAnimationState(name string)
}

// Camera is a camera entity.
type Camera interface {
	Placeable
	IsActive() bool
	SetActive()
}

// Entity gives access to an entity's components.
type Entity interface {
	Name() string
	Placeable() Placeable
	RigidBody() RigidBody
	AnimationController() AnimationController
}

// Collision describes a contact reported for a rigid body.
type Collision struct {
	Other    string
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Distance float32
	Impulse  float32
	// NewCollision is true only on the first step of a contact.
	NewCollision bool
}

// StepListener is invoked once per physics step, before integration.
type StepListener interface {
	PhysicsStep(dt float32)
}

// FrameListener is invoked once per rendered (or simulated) frame.
type FrameListener interface {
	Frame(dt float32)
}

// CollisionListener is invoked for contacts of the entity it was registered on.
type CollisionListener interface {
	Collision(c Collision)
}

// Host is the scene the controller is attached to.
type Host interface {
	// Entity returns nil if no entity has the name.
	Entity(name string) Entity
	// Camera returns nil if no camera entity has the name.
	Camera(name string) Camera
	// CreateCamera returns the named camera, creating a local, non-replicated one if needed.
	CreateCamera(name string) Camera
	// Headless reports that nothing is rendered on this side.
	Headless() bool

	OnPhysicsStep(l StepListener) (cancel func())
	OnFrame(l FrameListener) (cancel func())
	OnCollision(entity string, l CollisionListener) (cancel func())
}
