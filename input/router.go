// Package input routes viewer-side key, pointer and touch gesture events to
// actions. Bindings live in prioritised contexts: remote contexts forward to
// the authoritative side, local ones are handled on the viewer.
package input

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/config"
)

// Key identifies a keyboard key by name ("W", "Space", "+").
type Key string

// Trigger selects whether a binding fires on press or release.
type Trigger uint8

const (
	Press Trigger = iota
	Release
)

// Execution is where a context's actions run.
type Execution uint8

const (
	Remote Execution = iota
	Local
)

// KeyEvent is a single key transition.
type KeyEvent struct {
	Key     Key
	Pressed bool
	Repeat  bool // auto-repeat events are ignored
}

// Sink receives actions for the authoritative side.
type Sink interface {
	Exec(a action.Action)
}

// LocalHandler executes viewer-side actions.
type LocalHandler interface {
	HandleLocal(a action.Action)
}

// View exposes the viewer state gesture handling depends on.
type View interface {
	CameraActive() bool
	// Walking reports whether the replicated animation state is Walk.
	Walking() bool
}

type bindingKey struct {
	key     Key
	trigger Trigger
}

type inputContext struct {
	name     string
	priority int
	exec     Execution
	enabled  bool
	bindings *orderedmap.OrderedMap[bindingKey, action.Action]
}

// Router dispatches input events through the binding table.
type Router struct {
	contexts []*inputContext // highest priority first
	byName   *orderedmap.OrderedMap[string, *inputContext]

	remote Sink
	local  LocalHandler
	view   View

	panThreshold  float32
	pinchDeadZone float32
	pinchScale    float32

	listening bool // pan gesture still eligible to toggle walking
	log       *slog.Logger
}

// New builds a router from config. Unknown contexts, execution modes and
// action strings are setup errors.
func New(cfg config.InputConfig, remote Sink, local LocalHandler, view View, log *slog.Logger) (*Router, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		byName:        orderedmap.NewOrderedMap[string, *inputContext](),
		remote:        remote,
		local:         local,
		view:          view,
		panThreshold:  float32(cfg.PanThreshold),
		pinchDeadZone: float32(cfg.PinchDeadZone),
		pinchScale:    float32(cfg.PinchScale),
		log:           log,
	}

	for _, cc := range cfg.Contexts {
		exec, err := parseExecution(cc.Execution)
		if err != nil {
			return nil, fmt.Errorf("input context %q: %w", cc.Name, err)
		}
		ctx := &inputContext{
			name:     cc.Name,
			priority: cc.Priority,
			exec:     exec,
			enabled:  exec == Local,
			bindings: orderedmap.NewOrderedMap[bindingKey, action.Action](),
		}
		if !r.byName.Set(cc.Name, ctx) {
			return nil, fmt.Errorf("input context %q declared twice", cc.Name)
		}
		r.contexts = append(r.contexts, ctx)
	}
	sort.SliceStable(r.contexts, func(i, j int) bool {
		return r.contexts[i].priority > r.contexts[j].priority
	})

	for i, b := range cfg.Bindings {
		if err := r.Bind(b.Context, Key(b.Key), parseTrigger(b.Trigger), b.Action); err != nil {
			return nil, fmt.Errorf("input.bindings[%d]: %w", i, err)
		}
	}
	return r, nil
}

// Bind adds or replaces a binding in the named context.
func (r *Router) Bind(context string, key Key, trigger Trigger, actionStr string) error {
	ctx, ok := r.byName.Get(context)
	if !ok {
		return fmt.Errorf("unknown context %q", context)
	}
	a, err := action.Parse(actionStr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", key, err)
	}
	ctx.bindings.Set(bindingKey{key, trigger}, a)
	return nil
}

// SetEnabled enables or disables every remote context. The viewer keeps this
// in step with camera activity so keys only drive the avatar being watched.
func (r *Router) SetEnabled(enabled bool) {
	for _, ctx := range r.contexts {
		if ctx.exec == Remote {
			ctx.enabled = enabled
		}
	}
}

// Enabled reports whether remote contexts currently receive input.
func (r *Router) Enabled() bool {
	for _, ctx := range r.contexts {
		if ctx.exec == Remote && ctx.enabled {
			return true
		}
	}
	return false
}

// HandleKey dispatches a key event to the highest-priority enabled context
// with a matching binding. Returns whether the event was consumed.
func (r *Router) HandleKey(ev KeyEvent) bool {
	if ev.Repeat {
		return false
	}
	trigger := Release
	if ev.Pressed {
		trigger = Press
	}
	k := bindingKey{ev.Key, trigger}

	for _, ctx := range r.contexts {
		if !ctx.enabled {
			continue
		}
		a, ok := ctx.bindings.Get(k)
		if !ok {
			continue
		}
		r.log.Debug("key bound", "key", ev.Key, "context", ctx.name, "action", a.String())
		r.dispatch(ctx.exec, a)
		return true
	}
	return false
}

// Pointer routes a relative pointer motion. Horizontal motion turns the
// avatar (when remote input is enabled); both axes drive tripod look.
func (r *Router) Pointer(dx, dy float32) {
	if dx != 0 && r.Enabled() {
		r.dispatch(Remote, action.LookXAction(dx))
	}
	if dx != 0 {
		r.dispatch(Local, action.LookXAction(dx))
	}
	if dy != 0 {
		r.dispatch(Local, action.LookYAction(dy))
	}
}

// Wheel routes a mouse wheel delta to camera zoom.
func (r *Router) Wheel(delta float32) {
	if delta != 0 {
		r.dispatch(Local, action.ScrollAction(delta))
	}
}

func (r *Router) dispatch(exec Execution, a action.Action) {
	switch exec {
	case Remote:
		if r.remote != nil {
			r.remote.Exec(a)
		}
	case Local:
		if r.local != nil {
			r.local.HandleLocal(a)
		}
	}
}

func parseTrigger(s string) Trigger {
	if s == "release" {
		return Release
	}
	return Press
}

func parseExecution(s string) (Execution, error) {
	switch s {
	case "remote":
		return Remote, nil
	case "local":
		return Local, nil
	}
	return 0, fmt.Errorf("unknown execution %q", s)
}
