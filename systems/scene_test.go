package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/replication"
)

func TestMissingEntitiesAreNil(t *testing.T) {
	s := NewScene(Authority, true, config.Default().Physics, nil)
	if s.Entity("nobody") != nil {
		t.Error("expected nil entity for unknown name")
	}
	if s.Camera("nobody") != nil {
		t.Error("expected nil camera for unknown name")
	}

	s.SpawnAvatar(AvatarSpec{Name: "Avatar1"})
	if s.Camera("Avatar1") != nil {
		t.Error("avatar entity is not a camera")
	}
	if s.CreateCamera("Avatar1") != nil {
		t.Error("camera name must not collide with an existing entity")
	}
	if _, err := s.SpawnAvatar(AvatarSpec{Name: "Avatar1"}); err == nil {
		t.Error("expected error for duplicate avatar")
	}
}

func TestRemovedEntityHandlesAreInert(t *testing.T) {
	s := NewScene(Authority, true, config.Default().Physics, nil)
	s.SpawnAvatar(AvatarSpec{Name: "Avatar1", Pos: mgl32.Vec3{1, 2, 3}})
	ent := s.Entity("Avatar1")
	body := ent.RigidBody()

	if !s.Remove("Avatar1") || s.Remove("Avatar1") {
		t.Fatal("expected a single successful removal")
	}
	if s.Entity("Avatar1") != nil {
		t.Error("removed entity should not be found")
	}
	if ent.RigidBody() != nil || ent.Placeable() != nil || ent.AnimationController() != nil {
		t.Error("component accessors should return nil after removal")
	}
	body.ApplyImpulse(mgl32.Vec3{1, 0, 0})
	if body.IsActive() {
		t.Error("stale body handle should be inert")
	}
}

func TestCameraActivationIsExclusive(t *testing.T) {
	s := NewScene(Observer, false, config.Default().Physics, nil)
	free := s.CreateCamera("FreeLookCamera")
	free.SetActive()

	avatarCam := s.CreateCamera("AvatarCamera")
	if avatarCam.IsActive() {
		t.Error("new camera should start inactive")
	}
	if again := s.CreateCamera("AvatarCamera"); again == nil || again.IsActive() {
		t.Error("CreateCamera should return the existing camera")
	}

	avatarCam.SetActive()
	if !avatarCam.IsActive() || free.IsActive() {
		t.Error("activating one camera should deactivate the other")
	}
	if s.ActiveCamera() != "AvatarCamera" {
		t.Errorf("ActiveCamera() = %q", s.ActiveCamera())
	}
}

func TestListenerCancel(t *testing.T) {
	s := NewScene(Authority, true, config.Default().Physics, nil)
	var order []string
	cancelA := s.OnFrame(frameFunc(func(float32) { order = append(order, "a") }))
	var cancelB func()
	cancelB = s.OnFrame(frameFunc(func(float32) {
		order = append(order, "b")
		// Cancelling during dispatch must not skip later listeners this frame
		cancelB()
	}))
	s.OnFrame(frameFunc(func(float32) { order = append(order, "c") }))

	s.Frame(testDT)
	cancelA()
	s.Frame(testDT)

	want := []string{"a", "b", "c", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if s.ListenerCount() != 1 {
		t.Errorf("expected 1 listener left, got %d", s.ListenerCount())
	}
}

func TestReplicationRoundTrip(t *testing.T) {
	server := NewScene(Authority, true, config.Default().Physics, nil)
	client := NewScene(Observer, false, config.Default().Physics, nil)
	server.SpawnAvatar(AvatarSpec{Name: "Avatar1", Pos: mgl32.Vec3{0, 0, 1.2}})
	client.SpawnAvatar(AvatarSpec{Name: "Avatar1"})

	sEnt := server.Entity("Avatar1")
	sEnt.RigidBody().SetMass(10)
	sEnt.RigidBody().ApplyImpulse(mgl32.Vec3{20, 0, 0})
	sEnt.AnimationController().SetAnimationState("Walk")
	server.Step(testDT)

	boundary := replication.NewBoundary()
	boundary.Publish(server.Snapshot()...)
	applied := 0
	boundary.Deliver(func(st replication.State) {
		if client.Apply(st) {
			applied++
		}
	})
	if applied != 1 {
		t.Fatalf("expected 1 applied state, got %d", applied)
	}

	cEnt := client.Entity("Avatar1")
	if cEnt.Placeable().Transform() != sEnt.Placeable().Transform() {
		t.Errorf("transform not replicated: %v vs %v", cEnt.Placeable().Transform(), sEnt.Placeable().Transform())
	}
	if cEnt.RigidBody().LinearVelocity() != sEnt.RigidBody().LinearVelocity() {
		t.Error("velocity not replicated")
	}
	if cEnt.AnimationController().AnimationState() != "Walk" {
		t.Errorf("animation state = %q, want Walk", cEnt.AnimationController().AnimationState())
	}
}

func TestApplyRejectsStaleAndWrongSide(t *testing.T) {
	server := NewScene(Authority, true, config.Default().Physics, nil)
	client := NewScene(Observer, false, config.Default().Physics, nil)
	server.SpawnAvatar(AvatarSpec{Name: "Avatar1"})
	client.SpawnAvatar(AvatarSpec{Name: "Avatar1"})

	st := replication.State{Entity: "Avatar1", Seq: 5, AnimationState: "Fly"}
	if server.Apply(st) {
		t.Error("authority must not accept replicated state")
	}
	if !client.Apply(st) {
		t.Fatal("expected first state to apply")
	}
	st.Seq = 4
	st.AnimationState = "Stand"
	if client.Apply(st) {
		t.Error("stale state should be rejected")
	}
	if client.Apply(replication.State{Entity: "Ghost", Seq: 9}) {
		t.Error("unknown entity should be rejected")
	}
	if got := client.Entity("Avatar1").AnimationController().AnimationState(); got != "Fly" {
		t.Errorf("animation state = %q, want Fly", got)
	}
	if client.Snapshot() != nil {
		t.Error("observer should publish nothing")
	}
}
