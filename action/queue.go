package action

// Queue serialises actions onto the authoritative side's event loop.
// Actions pushed before a physics step are drained before that step runs.
type Queue struct {
	pending []Action
}

// Exec enqueues an action for the authoritative side.
func (q *Queue) Exec(a Action) {
	q.pending = append(q.pending, a)
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Drain hands every queued action to fn in arrival order and empties the queue.
// Actions queued by fn itself are delivered in the same call.
func (q *Queue) Drain(fn func(Action)) {
	for i := 0; i < len(q.pending); i++ {
		fn(q.pending[i])
	}
	q.pending = q.pending[:0]
}
