// Package replication carries avatar state from the authoritative side to
// observers. Only the fields in State cross the boundary.
package replication

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/avatar/components"
)

// State is the replicated state of one entity.
type State struct {
	Entity         string
	Seq            uint64
	Transform      components.Transform
	Velocity       mgl32.Vec3
	AnimationState string
}

// Boundary buffers published states until delivery. Only the newest state
// per entity is kept; older sequence numbers are dropped.
type Boundary struct {
	pending *orderedmap.OrderedMap[string, State]

	published uint64
	dropped   uint64
}

// NewBoundary creates an empty boundary.
func NewBoundary() *Boundary {
	return &Boundary{
		pending: orderedmap.NewOrderedMap[string, State](),
	}
}

// Publish offers states for delivery. A state older than the one already
// pending for the same entity is dropped.
func (b *Boundary) Publish(states ...State) {
	for _, st := range states {
		if cur, ok := b.pending.Get(st.Entity); ok && cur.Seq >= st.Seq {
			b.dropped++
			continue
		}
		b.pending.Set(st.Entity, st)
		b.published++
	}
}

// Pending returns the number of entities with undelivered state.
func (b *Boundary) Pending() int {
	return b.pending.Len()
}

// Deliver hands every pending state to apply, in first-publish order, and
// clears the buffer.
func (b *Boundary) Deliver(apply func(State)) {
	for el := b.pending.Front(); el != nil; el = el.Next() {
		apply(el.Value)
	}
	b.pending = orderedmap.NewOrderedMap[string, State]()
}

// Stats returns the number of accepted and dropped publishes.
func (b *Boundary) Stats() (published, dropped uint64) {
	return b.published, b.dropped
}
