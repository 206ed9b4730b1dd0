package systems

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avatar/components"
	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/host"
	"github.com/pthm-cable/avatar/replication"
)

// Role is a scene's side of the replication boundary.
type Role uint8

const (
	// Authority simulates physics and publishes state.
	Authority Role = iota
	// Observer applies replicated state and never simulates.
	Observer
)

func (r Role) String() string {
	if r == Observer {
		return "observer"
	}
	return "authority"
}

// Scene is one side's ECS world. It implements host.Host.
type Scene struct {
	world    *ecs.World
	role     Role
	headless bool
	log      *slog.Logger

	// Component mappers for spawning
	avatarMapper *ecs.Map6[components.Name, components.Placeable, components.RigidBody,
		components.AnimationController, components.Replicated, components.Avatar]
	cameraMapper *ecs.Map3[components.Name, components.Placeable, components.Camera]

	// Component maps for handle access
	placeMap *ecs.Map[components.Placeable]
	bodyMap  *ecs.Map[components.RigidBody]
	animMap  *ecs.Map[components.AnimationController]
	camMap   *ecs.Map[components.Camera]
	replMap  *ecs.Map[components.Replicated]

	cameraFilter *ecs.Filter1[components.Camera]
	replFilter   *ecs.Filter4[components.Name, components.Placeable, components.RigidBody, components.Replicated]

	entities map[string]ecs.Entity

	physics   *PhysicsSystem
	animation *AnimationSystem

	stepListeners      listenerList[host.StepListener]
	frameListeners     listenerList[host.FrameListener]
	collisionListeners map[string]*listenerList[host.CollisionListener]

	pendingMeshes []pendingMesh

	steps  uint64
	frames uint64
}

type pendingMesh struct {
	entity string
	frames int
	clips  map[string]float32
}

// NewScene creates an empty scene.
func NewScene(role Role, headless bool, cfg config.PhysicsConfig, log *slog.Logger) *Scene {
	if log == nil {
		log = slog.Default()
	}
	world := ecs.NewWorld()

	return &Scene{
		world:    world,
		role:     role,
		headless: headless,
		log:      log.With("role", role.String()),

		avatarMapper: ecs.NewMap6[components.Name, components.Placeable, components.RigidBody,
			components.AnimationController, components.Replicated, components.Avatar](world),
		cameraMapper: ecs.NewMap3[components.Name, components.Placeable, components.Camera](world),

		placeMap: ecs.NewMap[components.Placeable](world),
		bodyMap:  ecs.NewMap[components.RigidBody](world),
		animMap:  ecs.NewMap[components.AnimationController](world),
		camMap:   ecs.NewMap[components.Camera](world),
		replMap:  ecs.NewMap[components.Replicated](world),

		cameraFilter: ecs.NewFilter1[components.Camera](world),
		replFilter:   ecs.NewFilter4[components.Name, components.Placeable, components.RigidBody, components.Replicated](world),

		entities:           make(map[string]ecs.Entity),
		physics:            NewPhysicsSystem(world, cfg),
		animation:          NewAnimationSystem(world),
		collisionListeners: make(map[string]*listenerList[host.CollisionListener]),
	}
}

// Role returns the scene's side of the replication boundary.
func (s *Scene) Role() Role {
	return s.role
}

// World returns the underlying ECS world.
func (s *Scene) World() *ecs.World {
	return s.world
}

// AvatarSpec describes an avatar to spawn.
type AvatarSpec struct {
	Name string
	Pos  mgl32.Vec3
	// Clips maps engine clip names to lengths in seconds. They become
	// available after MeshLoadFrames frames, as a streamed mesh would.
	Clips          map[string]float32
	MeshLoadFrames int
}

// SpawnAvatar creates a replicated avatar entity with a default box body.
// Controllers reshape the body when they attach.
func (s *Scene) SpawnAvatar(spec AvatarSpec) (ecs.Entity, error) {
	if _, ok := s.entities[spec.Name]; ok {
		return ecs.Entity{}, fmt.Errorf("entity %q already exists", spec.Name)
	}

	name := components.Name{Value: spec.Name}
	place := components.Placeable{Transform: components.NewTransform(spec.Pos)}
	body := components.RigidBody{
		Shape:         components.ShapeBox,
		Size:          mgl32.Vec3{1, 1, 1},
		AngularFactor: mgl32.Vec3{1, 1, 1},
		Active:        true,
	}
	ctrl := components.AnimationController{
		Lengths: make(map[string]float32, len(spec.Clips)),
		Clips:   make(map[string]*components.ClipState),
	}
	repl := components.Replicated{Enabled: true}

	e := s.avatarMapper.NewEntity(&name, &place, &body, &ctrl, &repl, &components.Avatar{})
	s.entities[spec.Name] = e

	if spec.MeshLoadFrames <= 0 {
		loadMesh(s.animMap.Get(e), spec.Clips)
	} else {
		s.pendingMeshes = append(s.pendingMeshes, pendingMesh{
			entity: spec.Name,
			frames: spec.MeshLoadFrames,
			clips:  spec.Clips,
		})
	}

	s.log.Debug("avatar spawned", "avatar", spec.Name, "pos", spec.Pos)
	return e, nil
}

func loadMesh(ctrl *components.AnimationController, clips map[string]float32) {
	ctrl.Available = ctrl.Available[:0]
	for clip, length := range clips {
		ctrl.Available = append(ctrl.Available, clip)
		ctrl.Lengths[clip] = length
	}
	sort.Strings(ctrl.Available)
}

// Remove deletes a named entity. Returns false if it does not exist.
func (s *Scene) Remove(name string) bool {
	e, ok := s.entities[name]
	if !ok {
		return false
	}
	delete(s.entities, name)
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
	return true
}

// Entity implements host.Host.
func (s *Scene) Entity(name string) host.Entity {
	e, ok := s.lookup(name)
	if !ok {
		return nil
	}
	return &entityHandle{scene: s, e: e, name: name}
}

// Camera implements host.Host.
func (s *Scene) Camera(name string) host.Camera {
	e, ok := s.lookup(name)
	if !ok || !s.camMap.Has(e) {
		return nil
	}
	return &cameraHandle{scene: s, e: e}
}

// CreateCamera implements host.Host. Created cameras are local to the scene.
func (s *Scene) CreateCamera(name string) host.Camera {
	if cam := s.Camera(name); cam != nil {
		return cam
	}
	if _, ok := s.entities[name]; ok {
		// Name taken by a non-camera entity
		return nil
	}
	n := components.Name{Value: name}
	place := components.Placeable{Transform: components.NewTransform(mgl32.Vec3{})}
	e := s.cameraMapper.NewEntity(&n, &place, &components.Camera{})
	s.entities[name] = e
	return &cameraHandle{scene: s, e: e}
}

// ActiveCamera returns the name of the active camera, or "".
func (s *Scene) ActiveCamera() string {
	for name, e := range s.entities {
		if s.camMap.Has(e) && s.camMap.Get(e).Active {
			return name
		}
	}
	return ""
}

func (s *Scene) activateCamera(e ecs.Entity) {
	query := s.cameraFilter.Query()
	for query.Next() {
		query.Get().Active = query.Entity() == e
	}
}

// Headless implements host.Host.
func (s *Scene) Headless() bool {
	return s.headless
}

// OnPhysicsStep implements host.Host.
func (s *Scene) OnPhysicsStep(l host.StepListener) (cancel func()) {
	return s.stepListeners.add(l)
}

// OnFrame implements host.Host.
func (s *Scene) OnFrame(l host.FrameListener) (cancel func()) {
	return s.frameListeners.add(l)
}

// OnCollision implements host.Host.
func (s *Scene) OnCollision(entity string, l host.CollisionListener) (cancel func()) {
	ll, ok := s.collisionListeners[entity]
	if !ok {
		ll = &listenerList[host.CollisionListener]{}
		s.collisionListeners[entity] = ll
	}
	return ll.add(l)
}

// ListenerCount returns the number of registered step, frame and collision listeners.
func (s *Scene) ListenerCount() int {
	n := s.stepListeners.count() + s.frameListeners.count()
	for _, ll := range s.collisionListeners {
		n += ll.count()
	}
	return n
}

// Step runs one fixed physics step: step listeners, integration, then
// collision dispatch. Observer scenes do not simulate.
func (s *Scene) Step(dt float32) {
	if s.role == Observer {
		return
	}
	s.steps++

	for _, l := range s.stepListeners.snapshot() {
		l.PhysicsStep(dt)
	}

	for _, c := range s.physics.Update(dt) {
		ll, ok := s.collisionListeners[c.Entity]
		if !ok {
			continue
		}
		for _, l := range ll.snapshot() {
			l.Collision(c.Collision)
		}
	}
}

// Frame runs one frame: frame listeners, mesh loading, then clip playback.
func (s *Scene) Frame(dt float32) {
	s.frames++

	for _, l := range s.frameListeners.snapshot() {
		l.Frame(dt)
	}

	s.loadPendingMeshes()
	s.animation.Update(dt)
}

func (s *Scene) loadPendingMeshes() {
	remaining := s.pendingMeshes[:0]
	for _, pm := range s.pendingMeshes {
		pm.frames--
		if pm.frames > 0 {
			remaining = append(remaining, pm)
			continue
		}
		e, ok := s.lookup(pm.entity)
		if !ok || !s.animMap.Has(e) {
			continue
		}
		loadMesh(s.animMap.Get(e), pm.clips)
		s.log.Debug("avatar mesh loaded", "avatar", pm.entity, "clips", len(pm.clips))
	}
	s.pendingMeshes = remaining
}

// Counters returns the number of physics steps and frames run.
func (s *Scene) Counters() (steps, frames uint64) {
	return s.steps, s.frames
}

func (s *Scene) lookup(name string) (ecs.Entity, bool) {
	e, ok := s.entities[name]
	if !ok || !s.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Snapshot returns the replicated state of every replicated entity, each
// with a fresh sequence number. Observers publish nothing.
func (s *Scene) Snapshot() []replication.State {
	if s.role == Observer {
		return nil
	}
	var states []replication.State
	query := s.replFilter.Query()
	for query.Next() {
		name, place, body, repl := query.Get()
		if !repl.Enabled {
			continue
		}
		repl.Seq++
		st := replication.State{
			Entity:    name.Value,
			Seq:       repl.Seq,
			Transform: place.Transform,
			Velocity:  body.LinearVelocity,
		}
		if e := query.Entity(); s.animMap.Has(e) {
			st.AnimationState = s.animMap.Get(e).State
		}
		states = append(states, st)
	}
	return states
}

// Apply writes replicated state onto the observer's copy of the entity.
// Stale or unknown states are ignored; returns whether the state was applied.
func (s *Scene) Apply(st replication.State) bool {
	if s.role != Observer {
		return false
	}
	e, ok := s.lookup(st.Entity)
	if !ok || !s.replMap.Has(e) {
		return false
	}
	repl := s.replMap.Get(e)
	if !repl.Enabled || st.Seq <= repl.Seq {
		return false
	}
	repl.Seq = st.Seq

	if s.placeMap.Has(e) {
		s.placeMap.Get(e).Transform = st.Transform
	}
	if s.bodyMap.Has(e) {
		s.bodyMap.Get(e).LinearVelocity = st.Velocity
	}
	if s.animMap.Has(e) {
		s.animMap.Get(e).State = st.AnimationState
	}
	return true
}
