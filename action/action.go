// Package action defines the logical actions exchanged between input routing
// and the avatar controllers.
package action

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the logical actions. The set is closed; handlers switch on it exhaustively.
type Kind uint8

const (
	Move Kind = iota
	Stop
	ToggleFly
	Rotate
	StopRotate
	MouseLookX
	MouseLookY
	Gesture
	Zoom
	ToggleTripod
	MouseScroll
)

var kindNames = [...]string{
	Move:         "Move",
	Stop:         "Stop",
	ToggleFly:    "ToggleFly",
	Rotate:       "Rotate",
	StopRotate:   "StopRotate",
	MouseLookX:   "MouseLookX",
	MouseLookY:   "MouseLookY",
	Gesture:      "Gesture",
	Zoom:         "Zoom",
	ToggleTripod: "ToggleTripod",
	MouseScroll:  "MouseScroll",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Direction is the parameter of Move, Stop, Rotate and StopRotate.
type Direction uint8

const (
	NoDirection Direction = iota
	Forward
	Back
	Left
	Right
	Up
	Down
)

var directionNames = [...]string{
	NoDirection: "",
	Forward:     "forward",
	Back:        "back",
	Left:        "left",
	Right:       "right",
	Up:          "up",
	Down:        "down",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// GestureName is the parameter of Gesture.
type GestureName uint8

const (
	NoGesture GestureName = iota
	Wave
)

func (g GestureName) String() string {
	switch g {
	case Wave:
		return "wave"
	default:
		return ""
	}
}

// ZoomDirection is the parameter of Zoom.
type ZoomDirection uint8

const (
	ZoomIn ZoomDirection = iota + 1
	ZoomOut
)

func (z ZoomDirection) String() string {
	switch z {
	case ZoomIn:
		return "in"
	case ZoomOut:
		return "out"
	default:
		return ""
	}
}

// Action is one logical action with its parameter. Only the field matching
// Kind is meaningful.
type Action struct {
	Kind    Kind
	Dir     Direction     // Move, Stop, Rotate, StopRotate
	Amount  float32       // MouseLookX, MouseLookY, MouseScroll
	Gesture GestureName   // Gesture
	Zoom    ZoomDirection // Zoom
}

// MoveAction starts motion along dir.
func MoveAction(dir Direction) Action { return Action{Kind: Move, Dir: dir} }

// StopAction stops motion along dir if it is still held.
func StopAction(dir Direction) Action { return Action{Kind: Stop, Dir: dir} }

// LookXAction rotates by a pointer delta.
func LookXAction(amount float32) Action { return Action{Kind: MouseLookX, Amount: amount} }

// LookYAction tilts by a pointer delta.
func LookYAction(amount float32) Action { return Action{Kind: MouseLookY, Amount: amount} }

// ScrollAction zooms by a scroll-wheel equivalent amount.
func ScrollAction(amount float32) Action { return Action{Kind: MouseScroll, Amount: amount} }

// String renders the action in binding syntax, e.g. "Move(forward)".
func (a Action) String() string {
	var param string
	switch a.Kind {
	case Move, Stop, Rotate, StopRotate:
		param = a.Dir.String()
	case MouseLookX, MouseLookY, MouseScroll:
		param = strconv.FormatFloat(float64(a.Amount), 'g', -1, 32)
	case Gesture:
		param = a.Gesture.String()
	case Zoom:
		param = a.Zoom.String()
	case ToggleFly, ToggleTripod:
	}
	return a.Kind.String() + "(" + param + ")"
}

// Parse parses binding syntax such as "Move(forward)", "ToggleFly()" or
// "ToggleTripod". A stray trailing ')' is tolerated.
func Parse(s string) (Action, error) {
	s = strings.TrimSpace(s)
	name, param := s, ""
	if open := strings.IndexByte(s, '('); open >= 0 {
		name = s[:open]
		param = strings.TrimRight(s[open+1:], ")")
		param = strings.TrimSpace(param)
	}

	kind, ok := parseKind(name)
	if !ok {
		return Action{}, fmt.Errorf("unknown action %q", name)
	}

	a := Action{Kind: kind}
	switch kind {
	case Move, Stop, Rotate, StopRotate:
		dir, ok := parseDirection(param)
		if !ok {
			return Action{}, fmt.Errorf("action %s: unknown direction %q", name, param)
		}
		if (kind == Rotate || kind == StopRotate) && dir != Left && dir != Right {
			return Action{}, fmt.Errorf("action %s: direction must be left or right, got %q", name, param)
		}
		a.Dir = dir
	case MouseLookX, MouseLookY, MouseScroll:
		v, err := strconv.ParseFloat(param, 32)
		if err != nil {
			return Action{}, fmt.Errorf("action %s: parsing amount: %w", name, err)
		}
		a.Amount = float32(v)
	case Gesture:
		if param != "wave" {
			return Action{}, fmt.Errorf("action %s: unknown gesture %q", name, param)
		}
		a.Gesture = Wave
	case Zoom:
		switch param {
		case "in":
			a.Zoom = ZoomIn
		case "out":
			a.Zoom = ZoomOut
		default:
			return Action{}, fmt.Errorf("action %s: unknown zoom direction %q", name, param)
		}
	case ToggleFly, ToggleTripod:
	}
	return a, nil
}

func parseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

func parseDirection(s string) (Direction, bool) {
	for d, n := range directionNames {
		if d != int(NoDirection) && n == s {
			return Direction(d), true
		}
	}
	return NoDirection, false
}
