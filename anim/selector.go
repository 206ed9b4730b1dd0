// Package anim derives the avatar's animation state and drives clip playback.
package anim

import (
	"github.com/pthm-cable/avatar/motion"
)

// Name is a canonical animation name. Its string form is what the shared
// animation-state field carries across the replication boundary.
type Name uint8

const (
	None Name = iota
	Stand
	Walk
	Fly
	Hover
	Sit
	Wave
)

var names = [...]string{
	None:  "",
	Stand: "Stand",
	Walk:  "Walk",
	Fly:   "Fly",
	Hover: "Hover",
	Sit:   "Sit",
	Wave:  "Wave",
}

// All lists every canonical name in resolution order.
var All = []Name{Stand, Walk, Fly, Hover, Sit, Wave}

func (n Name) String() string {
	if int(n) < len(names) {
		return names[n]
	}
	return ""
}

// ParseName maps an animation-state string back to its Name. Unknown strings map to None.
func ParseName(s string) Name {
	for _, n := range All {
		if names[n] == s {
			return n
		}
	}
	return None
}

// Select returns the locomotion animation for the given state. First match wins:
// airborne (Fly or Hover), moving (Walk), crouched (Sit), otherwise Stand.
// Wave is never selected here; gestures write it directly.
func Select(in motion.Intent, fs motion.FlightState) Name {
	switch {
	case fs.Flying || fs.Falling:
		if in.ForwardBack != 0 {
			return Fly
		}
		return Hover
	case in.ForwardBack != 0 || in.Strafe != 0:
		return Walk
	case in.Vertical == -1 && !fs.Falling:
		return Sit
	default:
		return Stand
	}
}

// StateField is the shared, replicated animation-state attribute.
type StateField interface {
	AnimationState() string
	SetAnimationState(name string)
}

// Apply writes name to the field only if it differs, so unchanged states
// cause no replication traffic and no animation restart. Returns true on write.
func Apply(field StateField, name Name) bool {
	if field == nil || name == None {
		return false
	}
	s := name.String()
	if field.AnimationState() == s {
		return false
	}
	field.SetAnimationState(s)
	return true
}
