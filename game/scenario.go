package game

import (
	"log/slog"
	"sort"

	"github.com/pthm-cable/avatar/avatar"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/input"
	"github.com/pthm-cable/avatar/systems"
)

// Scenario replays scripted input events in frame order.
type Scenario struct {
	events []config.ScenarioEvent
	next   int
}

// NewScenario sorts a copy of events by frame. Events on the same frame keep
// their listed order.
func NewScenario(events []config.ScenarioEvent) *Scenario {
	sorted := make([]config.ScenarioEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frame < sorted[j].Frame
	})
	return &Scenario{events: sorted}
}

// Remaining returns the number of events not yet replayed.
func (s *Scenario) Remaining() int {
	return len(s.events) - s.next
}

// Apply delivers every event scheduled at or before frame.
func (s *Scenario) Apply(frame int, v *avatar.Viewer, scene *systems.Scene, log *slog.Logger) {
	for s.next < len(s.events) && s.events[s.next].Frame <= frame {
		ev := s.events[s.next]
		s.next++

		switch ev.Kind {
		case "key":
			consumed := v.HandleKey(input.KeyEvent{Key: input.Key(ev.Key), Pressed: ev.Pressed})
			log.Debug("scenario key", "frame", frame, "key", ev.Key, "pressed", ev.Pressed, "consumed", consumed)
		case "pointer":
			v.Pointer(float32(ev.DX), float32(ev.DY))
		case "wheel":
			v.Wheel(float32(ev.DY))
		case "pan":
			v.Pan(input.PanEvent{
				State:   gestureState(ev.State),
				OffsetX: float32(ev.X),
				OffsetY: float32(ev.Y),
				DeltaX:  float32(ev.DX),
				DeltaY:  float32(ev.DY),
			})
		case "pinch":
			v.Pinch(input.PinchEvent{
				State:     gestureState(ev.State),
				Scale:     float32(ev.Scale),
				LastScale: float32(ev.Last),
			})
		case "camera":
			cam := scene.Camera(ev.Key)
			if cam == nil {
				log.Warn("scenario camera not found", "frame", frame, "camera", ev.Key)
				continue
			}
			cam.SetActive()
			log.Debug("scenario camera", "frame", frame, "camera", ev.Key)
		}
	}
}

func gestureState(s string) input.GestureState {
	switch s {
	case "start":
		return input.GestureStarted
	case "finish":
		return input.GestureFinished
	default:
		return input.GestureUpdated
	}
}
