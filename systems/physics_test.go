package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
)

const testDT = float32(1.0 / 60.0)

type collisionRecorder struct {
	collisions []host.Collision
}

func (r *collisionRecorder) Collision(c host.Collision) {
	r.collisions = append(r.collisions, c)
}

func (r *collisionRecorder) newContacts() int {
	n := 0
	for _, c := range r.collisions {
		if c.NewCollision {
			n++
		}
	}
	return n
}

func newTestScene(t *testing.T, role Role, z float32) (*Scene, host.Entity) {
	t.Helper()
	s := NewScene(role, true, config.Default().Physics, nil)
	if _, err := s.SpawnAvatar(AvatarSpec{Name: "Avatar1", Pos: mgl32.Vec3{0, 0, z}}); err != nil {
		t.Fatalf("SpawnAvatar: %v", err)
	}
	ent := s.Entity("Avatar1")
	if ent == nil {
		t.Fatal("spawned avatar not found")
	}
	body := ent.RigidBody()
	body.SetShape(components.ShapeCapsule, mgl32.Vec3{0.5, 0.5, 2.4})
	body.SetMass(10)
	return s, ent
}

func TestBodyFallsAndLands(t *testing.T) {
	s, ent := newTestScene(t, Authority, 5)
	rec := &collisionRecorder{}
	s.OnCollision("Avatar1", rec)

	for i := 0; i < 120; i++ {
		s.Step(testDT)
	}

	pos := ent.Placeable().Transform().Pos
	if math.Abs(float64(pos.Z()-1.2)) > 1e-4 {
		t.Errorf("expected body to rest at z=1.2, got %v", pos.Z())
	}
	if len(rec.collisions) == 0 {
		t.Fatal("expected ground contacts")
	}
	if rec.newContacts() != 1 {
		t.Errorf("expected exactly one new contact, got %d", rec.newContacts())
	}
	first := rec.collisions[0]
	if !first.NewCollision || first.Other != GroundName || first.Impulse <= 0 {
		t.Errorf("unexpected first contact %+v", first)
	}
	if first.Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected up normal, got %v", first.Normal)
	}
}

func TestImpulseChangesVelocityImmediately(t *testing.T) {
	_, ent := newTestScene(t, Authority, 1.2)
	body := ent.RigidBody()

	body.ApplyImpulse(mgl32.Vec3{15, 0, 0})
	if v := body.LinearVelocity(); v.Sub(mgl32.Vec3{1.5, 0, 0}).Len() > 1e-6 {
		t.Errorf("velocity after impulse = %v, want (1.5,0,0)", v)
	}
}

func TestBodySleepsAndWakes(t *testing.T) {
	s, ent := newTestScene(t, Authority, 1.2)
	body := ent.RigidBody()

	// 0.5s sleep delay at 60Hz
	for i := 0; i < 40; i++ {
		s.Step(testDT)
	}
	if body.IsActive() {
		t.Fatal("expected resting body to fall asleep")
	}

	before := ent.Placeable().Transform().Pos
	s.Step(testDT)
	if ent.Placeable().Transform().Pos != before {
		t.Error("sleeping body should not move")
	}

	body.ApplyImpulse(mgl32.Vec3{0, 15, 0})
	if !body.IsActive() {
		t.Error("impulse should wake the body")
	}
	s.Step(testDT)
	if ent.Placeable().Transform().Pos.Y() <= before.Y() {
		t.Error("woken body should move")
	}
}

func TestZeroMassIsKinematic(t *testing.T) {
	s, ent := newTestScene(t, Authority, 10)
	body := ent.RigidBody()
	body.ApplyImpulse(mgl32.Vec3{0, 0, 50})

	body.SetMass(0)
	if body.LinearVelocity() != (mgl32.Vec3{}) {
		t.Errorf("expected zero velocity after SetMass(0), got %v", body.LinearVelocity())
	}
	body.ApplyImpulse(mgl32.Vec3{100, 0, 0})
	for i := 0; i < 60; i++ {
		s.Step(testDT)
	}
	if pos := ent.Placeable().Transform().Pos; pos != (mgl32.Vec3{0, 0, 10}) {
		t.Errorf("kinematic body moved to %v", pos)
	}
}

func TestObserverDoesNotSimulate(t *testing.T) {
	s, ent := newTestScene(t, Observer, 5)
	called := 0
	s.OnPhysicsStep(stepFunc(func(float32) { called++ }))

	for i := 0; i < 10; i++ {
		s.Step(testDT)
	}
	if ent.Placeable().Transform().Pos.Z() != 5 {
		t.Error("observer should not integrate bodies")
	}
	if called != 0 {
		t.Errorf("observer step listeners called %d times", called)
	}
}

func TestRotateAddsDegrees(t *testing.T) {
	_, ent := newTestScene(t, Authority, 1.2)
	body := ent.RigidBody()
	body.Rotate(mgl32.Vec3{0, 0, -75})
	body.Rotate(mgl32.Vec3{0, 0, -3})
	if yaw := ent.Placeable().Transform().Yaw(); yaw != -78 {
		t.Errorf("yaw = %v, want -78", yaw)
	}
}

type stepFunc func(dt float32)

func (f stepFunc) PhysicsStep(dt float32) { f(dt) }

type frameFunc func(dt float32)

func (f frameFunc) Frame(dt float32) { f(dt) }
