package input

import (
	"github.com/chewxy/math32"

	"github.com/pthm-cable/avatar/action"
)

// GestureState is the phase of a touch gesture.
type GestureState uint8

const (
	GestureStarted GestureState = iota
	GestureUpdated
	GestureFinished
)

// PanEvent is a one-finger drag. Offset is accumulated since the gesture
// started; Delta is the change since the last update.
type PanEvent struct {
	State            GestureState
	OffsetX, OffsetY float32
	DeltaX, DeltaY   float32
}

// PinchEvent is a two-finger scale gesture.
type PinchEvent struct {
	State     GestureState
	Scale     float32
	LastScale float32
}

// Pan turns the avatar with horizontal drags. A long enough vertical drag
// starts or stops walking once per gesture. Returns whether the event was accepted.
func (r *Router) Pan(ev PanEvent) bool {
	if r.view == nil || !r.view.CameraActive() {
		return false
	}

	switch ev.State {
	case GestureStarted:
		r.listening = true
		r.dispatch(Remote, action.LookXAction(ev.OffsetX))
	case GestureUpdated:
		if !r.listening {
			return false
		}
		if ev.OffsetY < -r.panThreshold || ev.OffsetY > r.panThreshold {
			if r.view.Walking() {
				// Only the stop matching the current axis takes effect
				r.dispatch(Remote, action.StopAction(action.Forward))
				r.dispatch(Remote, action.StopAction(action.Back))
			} else if ev.OffsetY < 0 {
				r.dispatch(Remote, action.MoveAction(action.Forward))
			} else {
				r.dispatch(Remote, action.MoveAction(action.Back))
			}
			r.listening = false
		}
		if ev.DeltaX != 0 {
			r.dispatch(Remote, action.LookXAction(ev.DeltaX))
		}
	case GestureFinished:
		r.listening = false
	}
	return true
}

// Pinch zooms the camera. Scale changes inside the dead zone are ignored.
func (r *Router) Pinch(ev PinchEvent) bool {
	if r.view == nil || !r.view.CameraActive() {
		return false
	}
	if ev.State != GestureUpdated {
		return true
	}
	change := ev.Scale - ev.LastScale
	if math32.Abs(change) > r.pinchDeadZone {
		r.dispatch(Local, action.ScrollAction(change*r.pinchScale))
	}
	return true
}
