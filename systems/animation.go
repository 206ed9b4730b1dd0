package systems

import (
	"github.com/chewxy/math32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avatar/components"
)

// AnimationSystem advances clip fades and playback time.
type AnimationSystem struct {
	filter ecs.Filter1[components.AnimationController]
}

// NewAnimationSystem creates a new animation system.
func NewAnimationSystem(w *ecs.World) *AnimationSystem {
	return &AnimationSystem{
		filter: *ecs.NewFilter1[components.AnimationController](w),
	}
}

// Update runs the animation system.
func (s *AnimationSystem) Update(dt float32) {
	query := s.filter.Query()
	for query.Next() {
		ctrl := query.Get()
		for _, clip := range ctrl.Clips {
			advanceClip(clip, dt)
		}
	}
}

func advanceClip(clip *components.ClipState, dt float32) {
	switch clip.Phase {
	case components.ClipStopped:
		return
	case components.ClipFadingIn:
		clip.Weight += fadeRate(clip.FadeIn, dt)
		if clip.Weight >= 1 {
			clip.Weight = 1
			clip.Phase = components.ClipPlaying
		}
	case components.ClipFadingOut:
		clip.Weight -= fadeRate(clip.FadeOut, dt)
		if clip.Weight <= 0 {
			clip.Weight = 0
			clip.Phase = components.ClipStopped
			clip.Time = 0
			return
		}
	}

	clip.Time += dt * clip.Speed
	if clip.Length <= 0 || clip.Time < clip.Length {
		return
	}
	if clip.Looped {
		clip.Time = math32.Mod(clip.Time, clip.Length)
		return
	}
	// One-shot clips hold their last frame while fading out
	clip.Time = clip.Length
	if clip.Phase != components.ClipFadingOut {
		clip.Phase = components.ClipFadingOut
	}
}

// fadeRate is the weight change over dt for a fade of the given duration.
// A zero duration snaps immediately.
func fadeRate(duration, dt float32) float32 {
	if duration <= 0 {
		return 1
	}
	return dt / duration
}

// enableClip starts or continues a clip. Returns false if the mesh has no such clip.
func enableClip(ctrl *components.AnimationController, name string, looped bool, fadeIn, fadeOut float32, exclusive bool) bool {
	if !ctrl.HasClip(name) {
		return false
	}
	clip := ensureClip(ctrl, name)
	clip.Looped = looped
	clip.FadeIn = fadeIn
	clip.FadeOut = fadeOut
	clip.Exclusive = exclusive

	switch clip.Phase {
	case components.ClipStopped:
		clip.Time = 0
		clip.Weight = 0
		clip.Phase = components.ClipFadingIn
	case components.ClipFadingOut:
		clip.Phase = components.ClipFadingIn
	}
	if fadeIn <= 0 {
		clip.Weight = 1
		clip.Phase = components.ClipPlaying
	}

	if exclusive {
		for other, st := range ctrl.Clips {
			if other == name || !st.Exclusive || st.Phase == components.ClipStopped {
				continue
			}
			st.FadeOut = fadeOut
			st.Phase = components.ClipFadingOut
		}
	}
	return true
}

func ensureClip(ctrl *components.AnimationController, name string) *components.ClipState {
	if ctrl.Clips == nil {
		ctrl.Clips = make(map[string]*components.ClipState)
	}
	clip, ok := ctrl.Clips[name]
	if !ok {
		clip = &components.ClipState{Speed: 1, Length: ctrl.Lengths[name]}
		ctrl.Clips[name] = clip
	}
	return clip
}

func clipActive(ctrl *components.AnimationController, name string) bool {
	clip, ok := ctrl.Clips[name]
	if !ok {
		return false
	}
	return clip.Phase == components.ClipFadingIn || clip.Phase == components.ClipPlaying
}
