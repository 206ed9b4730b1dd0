// Package components defines ECS components for avatar scenes.
package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Name identifies an entity across scenes. Replication keys on it.
type Name struct {
	Value string
}

// Placeable holds an entity's world transform.
type Placeable struct {
	Transform Transform
}

// Replicated marks an entity whose state crosses the replication boundary.
type Replicated struct {
	Enabled bool
	Seq     uint64 // last published (authority) or applied (observer) sequence
}

// Avatar tags avatar entities.
type Avatar struct{}

// Camera holds camera state. At most one camera per scene is active.
type Camera struct {
	Active bool
}

// ShapeType enumerates collision shapes.
type ShapeType uint8

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeCylinder
	ShapeCapsule
)

// RigidBody holds physical properties of an entity.
type RigidBody struct {
	Mass           float32
	Shape          ShapeType
	Size           mgl32.Vec3 // full extents; Size.Z() is the standing height
	AngularFactor  mgl32.Vec3 // zero locks rotation so the body stays upright
	LinearVelocity mgl32.Vec3
	Active         bool    // false while asleep
	SleepTime      float32 // seconds spent below the sleep speed
	Grounded       bool    // touching the ground after the last step
}

// Dynamic reports whether the body is simulated. Zero-mass bodies are kinematic.
func (b *RigidBody) Dynamic() bool {
	return b.Mass > 0
}

// ClipPhase is the playback phase of an animation clip.
type ClipPhase uint8

const (
	ClipStopped ClipPhase = iota
	ClipFadingIn
	ClipPlaying
	ClipFadingOut
)

// ClipState is the playback state of one animation clip.
type ClipState struct {
	Phase     ClipPhase
	Weight    float32
	Speed     float32
	Time      float32
	Length    float32
	FadeIn    float32
	FadeOut   float32
	Looped    bool
	Exclusive bool
}

// AnimationController holds the clips an avatar mesh offers and their playback state.
type AnimationController struct {
	Available []string           // clip names in asset order; empty until the mesh has loaded
	Lengths   map[string]float32 // clip name -> length in seconds
	Clips     map[string]*ClipState
	State     string // replicated animation-state name
}

// HasClip reports whether the mesh offers the named clip.
func (c *AnimationController) HasClip(name string) bool {
	for _, n := range c.Available {
		if n == name {
			return true
		}
	}
	return false
}
