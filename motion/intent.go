// Package motion holds the authoritative motion intent and flight flags of an avatar.
package motion

import "github.com/pthm-cable/avatar/action"

// Intent is the currently held movement input. Every axis is in {-1, 0, 1}.
// It is owned by the authoritative side and mutated only by start/stop events.
type Intent struct {
	ForwardBack int8 // +1 forward, -1 back
	Strafe      int8 // +1 right, -1 left
	Vertical    int8 // +1 up (jump / ascend), -1 down (sit / descend)
	Rotate      int8 // +1 right, -1 left
}

// axis returns the intent axis a movement direction drives and the value it sets.
func (in *Intent) axis(dir action.Direction) (*int8, int8) {
	switch dir {
	case action.Forward:
		return &in.ForwardBack, 1
	case action.Back:
		return &in.ForwardBack, -1
	case action.Right:
		return &in.Strafe, 1
	case action.Left:
		return &in.Strafe, -1
	case action.Up:
		return &in.Vertical, 1
	case action.Down:
		return &in.Vertical, -1
	default:
		return nil, 0
	}
}

// Start sets the axis for dir, overwriting any opposite value.
// Returns false for a direction that drives no axis.
func (in *Intent) Start(dir action.Direction) bool {
	ax, v := in.axis(dir)
	if ax == nil {
		return false
	}
	*ax = v
	return true
}

// Stop clears the axis for dir only if it still holds dir's value.
// Stale stops for an axis that has since changed are ignored and return false.
func (in *Intent) Stop(dir action.Direction) bool {
	ax, v := in.axis(dir)
	if ax == nil || *ax != v {
		return false
	}
	*ax = 0
	return true
}

// StartRotate begins continuous rotation left or right.
func (in *Intent) StartRotate(dir action.Direction) bool {
	switch dir {
	case action.Left:
		in.Rotate = -1
	case action.Right:
		in.Rotate = 1
	default:
		return false
	}
	return true
}

// StopRotate ends rotation if it is still held in dir.
func (in *Intent) StopRotate(dir action.Direction) bool {
	switch {
	case dir == action.Left && in.Rotate == -1,
		dir == action.Right && in.Rotate == 1:
		in.Rotate = 0
		return true
	}
	return false
}

// Moving reports whether a horizontal axis is held.
func (in Intent) Moving() bool {
	return in.ForwardBack != 0 || in.Strafe != 0
}

// FlightState holds the authoritative airborne flags.
type FlightState struct {
	Flying  bool // kinematic flight, toggled by action
	Falling bool // set on jump, cleared by a new ground contact
}
