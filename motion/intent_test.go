package motion

import (
	"testing"

	"github.com/pthm-cable/avatar/action"
)

func TestStopOnlyClearsMatchingValue(t *testing.T) {
	var in Intent
	in.Start(action.Forward)

	if in.Stop(action.Back) {
		t.Error("stop(back) should be ignored while walking forward")
	}
	if in.ForwardBack != 1 {
		t.Errorf("expected forward_back 1, got %d", in.ForwardBack)
	}

	if !in.Stop(action.Forward) {
		t.Error("stop(forward) should clear forward")
	}
	if in.ForwardBack != 0 {
		t.Errorf("expected forward_back 0, got %d", in.ForwardBack)
	}
}

func TestStartOverwritesOpposite(t *testing.T) {
	var in Intent
	in.Start(action.Left)
	in.Start(action.Right)
	if in.Strafe != 1 {
		t.Fatalf("expected strafe 1, got %d", in.Strafe)
	}
	// The release of the first key arrives after the second press.
	in.Stop(action.Left)
	if in.Strafe != 1 {
		t.Errorf("stale stop(left) cleared strafe: %d", in.Strafe)
	}
}

func TestAxesStayInRange(t *testing.T) {
	dirs := []action.Direction{action.Forward, action.Back, action.Left, action.Right, action.Up, action.Down}
	var in Intent

	// Deterministic pseudo-random walk over start/stop events.
	seed := uint32(7)
	for i := 0; i < 2000; i++ {
		seed = seed*1664525 + 1013904223
		dir := dirs[int(seed>>8)%len(dirs)]
		if seed&1 == 0 {
			in.Start(dir)
		} else {
			in.Stop(dir)
		}
		for _, v := range []int8{in.ForwardBack, in.Strafe, in.Vertical} {
			if v < -1 || v > 1 {
				t.Fatalf("axis out of range after %d events: %+v", i, in)
			}
		}
	}
}

func TestRotate(t *testing.T) {
	var in Intent
	if in.StartRotate(action.Up) {
		t.Error("rotate up should be rejected")
	}
	in.StartRotate(action.Left)
	if in.StopRotate(action.Right) {
		t.Error("stop rotate right should be ignored while rotating left")
	}
	if in.Rotate != -1 {
		t.Errorf("expected rotate -1, got %d", in.Rotate)
	}
	in.StopRotate(action.Left)
	if in.Rotate != 0 {
		t.Errorf("expected rotate 0, got %d", in.Rotate)
	}
}

func TestUnknownDirection(t *testing.T) {
	var in Intent
	if in.Start(action.NoDirection) || in.Stop(action.NoDirection) {
		t.Error("NoDirection should not drive any axis")
	}
}
