package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/action"
	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
)

type fakeCamera struct {
	tr     components.Transform
	active bool
}

func (c *fakeCamera) Transform() components.Transform     { return c.tr }
func (c *fakeCamera) SetTransform(t components.Transform) { c.tr = t }
func (c *fakeCamera) IsActive() bool                      { return c.active }
func (c *fakeCamera) SetActive()                          { c.active = true }

type fakePlaceable struct {
	tr components.Transform
}

func (p *fakePlaceable) Transform() components.Transform     { return p.tr }
func (p *fakePlaceable) SetTransform(t components.Transform) { p.tr = t }

func newTestRig(active bool) (*Rig, *fakeCamera) {
	cam := &fakeCamera{active: active}
	return New(cam, config.Default().Camera), cam
}

func TestNew(t *testing.T) {
	r, _ := newTestRig(true)
	if r.Distance() != 7 {
		t.Errorf("expected default distance 7, got %f", r.Distance())
	}
	if r.Tripod() {
		t.Error("expected rig to start following")
	}
}

func TestUpdateFollowsAvatar(t *testing.T) {
	r, cam := newTestRig(true)

	tests := []struct {
		name    string
		yaw     float32
		wantPos mgl32.Vec3
		wantYaw float32
	}{
		{"facing +X", 0, mgl32.Vec3{-7, 0, 11}, -90},
		{"facing +Y", 90, mgl32.Vec3{0, -7, 11}, 0},
		{"facing -X", 180, mgl32.Vec3{7, 0, 11}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := components.NewTransform(mgl32.Vec3{0, 0, 10})
			at.Rot[2] = tt.yaw
			r.Update(&fakePlaceable{tr: at})

			if cam.tr.Pos.Sub(tt.wantPos).Len() > 1e-4 {
				t.Errorf("camera pos = %v, want %v", cam.tr.Pos, tt.wantPos)
			}
			if cam.tr.Rot.X() != 90 {
				t.Errorf("camera pitch = %f, want 90", cam.tr.Rot.X())
			}
			if math.Abs(float64(cam.tr.Rot.Z()-tt.wantYaw)) > 1e-4 {
				t.Errorf("camera yaw = %f, want %f", cam.tr.Rot.Z(), tt.wantYaw)
			}
		})
	}
}

func TestScrollSteps(t *testing.T) {
	tests := []struct {
		relative float32
		want     float32
	}{
		{-1, 8},
		{-51, 9},
		{1, 6},
		{51, 5},
		{50, 6}, // boundary is exclusive
		{0, 7},
	}

	for _, tt := range tests {
		r, _ := newTestRig(true)
		r.Scroll(tt.relative)
		if r.Distance() != tt.want {
			t.Errorf("Scroll(%v): distance = %v, want %v", tt.relative, r.Distance(), tt.want)
		}
	}
}

func TestScrollBoundsAreIdempotent(t *testing.T) {
	r, _ := newTestRig(true)

	r.SetDistance(1)
	r.Scroll(100)
	r.Scroll(100)
	if r.Distance() != 1 {
		t.Errorf("zooming in at the minimum should stay at 1, got %v", r.Distance())
	}

	r.SetDistance(499)
	r.Scroll(-100)
	if r.Distance() != 500 {
		t.Errorf("expected clamp at 500, got %v", r.Distance())
	}
	r.Scroll(-100)
	if r.Distance() != 500 {
		t.Errorf("zooming out at the maximum should stay at 500, got %v", r.Distance())
	}
}

func TestScrollRequiresActiveCamera(t *testing.T) {
	r, _ := newTestRig(false)
	r.Scroll(-10)
	if r.Distance() != 7 {
		t.Errorf("inactive camera should not zoom, got %v", r.Distance())
	}
}

func TestKeyboardZoom(t *testing.T) {
	r, _ := newTestRig(true)
	r.KeyboardZoom(action.ZoomIn)
	if r.Distance() != 6 {
		t.Errorf("zoom in: distance = %v, want 6", r.Distance())
	}
	r.KeyboardZoom(action.ZoomOut)
	r.KeyboardZoom(action.ZoomOut)
	if r.Distance() != 8 {
		t.Errorf("zoom out: distance = %v, want 8", r.Distance())
	}
}

func TestTripod(t *testing.T) {
	r, cam := newTestRig(false)
	if r.ToggleTripod() || r.Tripod() {
		t.Fatal("tripod toggle should be rejected while the camera is inactive")
	}

	cam.SetActive()
	if !r.ToggleTripod() || !r.Tripod() {
		t.Fatal("expected tripod mode once the camera is active")
	}

	// Tripod camera ignores the avatar and follows pointer look instead
	cam.tr = components.NewTransform(mgl32.Vec3{1, 2, 3})
	r.Update(&fakePlaceable{tr: components.NewTransform(mgl32.Vec3{50, 50, 50})})
	if cam.tr.Pos != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("tripod camera moved to %v", cam.tr.Pos)
	}
	r.Look(10, -10)
	if math.Abs(float64(cam.tr.Rot.Z()+3)) > 1e-4 || math.Abs(float64(cam.tr.Rot.X()-3)) > 1e-4 {
		t.Errorf("unexpected tripod rotation %v", cam.tr.Rot)
	}

	// Inactive again: the toggle back is rejected too
	cam.active = false
	if r.ToggleTripod() || !r.Tripod() {
		t.Error("tripod toggle should be rejected in both directions while inactive")
	}
}

func TestTripodLookWhileInactive(t *testing.T) {
	r, cam := newTestRig(true)
	r.ToggleTripod()
	cam.active = false

	r.Look(10, 0)
	if math.Abs(float64(cam.tr.Rot.Z()+3)) > 1e-4 {
		t.Errorf("tripod look should not depend on camera activity, got %v", cam.tr.Rot)
	}
}

func TestLookIgnoredWhenFollowing(t *testing.T) {
	r, cam := newTestRig(true)
	r.Look(10, 10)
	if cam.tr.Rot != (mgl32.Vec3{}) {
		t.Errorf("look should not rotate a following camera, got %v", cam.tr.Rot)
	}
}
