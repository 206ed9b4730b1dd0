package systems

// listenerList holds registered listeners in registration order. Removal is
// by id so a cancel func stays valid after other listeners are removed.
type listenerList[T any] struct {
	nextID  int
	entries []listenerEntry[T]
}

type listenerEntry[T any] struct {
	id int
	l  T
}

func (ll *listenerList[T]) add(l T) (cancel func()) {
	id := ll.nextID
	ll.nextID++
	ll.entries = append(ll.entries, listenerEntry[T]{id: id, l: l})
	return func() { ll.remove(id) }
}

func (ll *listenerList[T]) remove(id int) {
	for i, e := range ll.entries {
		if e.id == id {
			ll.entries = append(ll.entries[:i], ll.entries[i+1:]...)
			return
		}
	}
}

// snapshot copies the listeners so callbacks may cancel during dispatch.
func (ll *listenerList[T]) snapshot() []T {
	out := make([]T, len(ll.entries))
	for i, e := range ll.entries {
		out[i] = e.l
	}
	return out
}

func (ll *listenerList[T]) count() int {
	return len(ll.entries)
}
