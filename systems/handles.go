package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/host"
)

// Handles give the host interfaces access to one entity's components. They
// are cheap and meant to be fetched per tick; a handle to a removed entity
// becomes inert.

type entityHandle struct {
	scene *Scene
	e     ecs.Entity
	name  string
}

func (h *entityHandle) Name() string {
	return h.name
}

func (h *entityHandle) Placeable() host.Placeable {
	if !h.scene.world.Alive(h.e) || !h.scene.placeMap.Has(h.e) {
		return nil
	}
	return &placeableHandle{scene: h.scene, e: h.e}
}

func (h *entityHandle) RigidBody() host.RigidBody {
	if !h.scene.world.Alive(h.e) || !h.scene.bodyMap.Has(h.e) {
		return nil
	}
	return &bodyHandle{scene: h.scene, e: h.e}
}

func (h *entityHandle) AnimationController() host.AnimationController {
	if !h.scene.world.Alive(h.e) || !h.scene.animMap.Has(h.e) {
		return nil
	}
	return &animHandle{scene: h.scene, e: h.e}
}

type placeableHandle struct {
	scene *Scene
	e     ecs.Entity
}

func (h *placeableHandle) get() *components.Placeable {
	if !h.scene.world.Alive(h.e) {
		return nil
	}
	return h.scene.placeMap.Get(h.e)
}

func (h *placeableHandle) Transform() components.Transform {
	if p := h.get(); p != nil {
		return p.Transform
	}
	return components.Transform{}
}

func (h *placeableHandle) SetTransform(t components.Transform) {
	if p := h.get(); p != nil {
		p.Transform = t
	}
}

type bodyHandle struct {
	scene *Scene
	e     ecs.Entity
}

func (h *bodyHandle) get() *components.RigidBody {
	if !h.scene.world.Alive(h.e) {
		return nil
	}
	return h.scene.bodyMap.Get(h.e)
}

func (h *bodyHandle) ApplyImpulse(impulse mgl32.Vec3) {
	if b := h.get(); b != nil {
		applyImpulse(b, impulse)
	}
}

func (h *bodyHandle) Rotate(degrees mgl32.Vec3) {
	b := h.get()
	if b == nil || !h.scene.placeMap.Has(h.e) {
		return
	}
	p := h.scene.placeMap.Get(h.e)
	p.Transform.Rot = p.Transform.Rot.Add(degrees)
	wake(b)
}

func (h *bodyHandle) LinearVelocity() mgl32.Vec3 {
	if b := h.get(); b != nil {
		return b.LinearVelocity
	}
	return mgl32.Vec3{}
}

func (h *bodyHandle) IsActive() bool {
	b := h.get()
	return b != nil && b.Active
}

func (h *bodyHandle) Mass() float32 {
	if b := h.get(); b != nil {
		return b.Mass
	}
	return 0
}

func (h *bodyHandle) SetMass(mass float32) {
	if b := h.get(); b != nil {
		setMass(b, mass)
	}
}

func (h *bodyHandle) SetShape(shape components.ShapeType, size mgl32.Vec3) {
	if b := h.get(); b != nil {
		b.Shape = shape
		b.Size = size
		wake(b)
	}
}

func (h *bodyHandle) SetAngularFactor(factor mgl32.Vec3) {
	if b := h.get(); b != nil {
		b.AngularFactor = factor
	}
}

type animHandle struct {
	scene *Scene
	e     ecs.Entity
}

func (h *animHandle) get() *components.AnimationController {
	if !h.scene.world.Alive(h.e) {
		return nil
	}
	return h.scene.animMap.Get(h.e)
}

func (h *animHandle) AvailableAnimations() []string {
	c := h.get()
	if c == nil {
		return nil
	}
	out := make([]string, len(c.Available))
	copy(out, c.Available)
	return out
}

func (h *animHandle) EnableAnimation(name string, looped bool, fadeIn, fadeOut float32, highPriority bool) bool {
	c := h.get()
	return c != nil && enableClip(c, name, looped, fadeIn, fadeOut, false)
}

func (h *animHandle) EnableExclusiveAnimation(name string, looped bool, fadeIn, fadeOut float32, highPriority bool) bool {
	c := h.get()
	return c != nil && enableClip(c, name, looped, fadeIn, fadeOut, true)
}

func (h *animHandle) SetAnimationSpeed(name string, speed float32) bool {
	c := h.get()
	if c == nil || !c.HasClip(name) {
		return false
	}
	ensureClip(c, name).Speed = speed
	return true
}

func (h *animHandle) IsAnimationActive(name string) bool {
	c := h.get()
	return c != nil && clipActive(c, name)
}

func (h *animHandle) AnimationState() string {
	if c := h.get(); c != nil {
		return c.State
	}
	return ""
}

func (h *animHandle) SetAnimationState(name string) {
	if c := h.get(); c != nil {
		c.State = name
	}
}

type cameraHandle struct {
	scene *Scene
	e     ecs.Entity
}

func (h *cameraHandle) alive() bool {
	return h.scene.world.Alive(h.e) && h.scene.camMap.Has(h.e)
}

func (h *cameraHandle) Transform() components.Transform {
	if !h.alive() || !h.scene.placeMap.Has(h.e) {
		return components.Transform{}
	}
	return h.scene.placeMap.Get(h.e).Transform
}

func (h *cameraHandle) SetTransform(t components.Transform) {
	if h.alive() && h.scene.placeMap.Has(h.e) {
		h.scene.placeMap.Get(h.e).Transform = t
	}
}

func (h *cameraHandle) IsActive() bool {
	return h.alive() && h.scene.camMap.Get(h.e).Active
}

// SetActive makes this the scene's only active camera.
func (h *cameraHandle) SetActive() {
	if h.alive() {
		h.scene.activateCamera(h.e)
	}
}
