package wlral

import "golang.org/x/exp/slices"

// Listener is a subscription to an Event.
type Listener struct {
	remove func()
}

// Remove unsubscribes the listener. It is safe to call more than
// once, and safe to call on the zero Listener.
func (l Listener) Remove() {
	if l.remove != nil {
		l.remove()
	}
}

// Event is a list of callbacks that are called, in subscription
// order, whenever the event is emitted. The zero value is ready to
// use.
type Event[T any] struct {
	next      uint64
	listeners []eventListener[T]
}

type eventListener[T any] struct {
	id uint64
	cb func(T)
}

// Subscribe registers cb to be called every time the event is
// emitted.
func (e *Event[T]) Subscribe(cb func(T)) Listener {
	id := e.next
	e.next++
	e.listeners = append(e.listeners, eventListener[T]{id: id, cb: cb})
	return Listener{remove: func() { e.remove(id) }}
}

// SubscribeOnce is like Subscribe, but cb is unsubscribed
// automatically after it is called the first time.
func (e *Event[T]) SubscribeOnce(cb func(T)) Listener {
	var l Listener
	l = e.Subscribe(func(v T) {
		l.Remove()
		cb(v)
	})
	return l
}

func (e *Event[T]) index(id uint64) int {
	return slices.IndexFunc(e.listeners, func(l eventListener[T]) bool { return l.id == id })
}

func (e *Event[T]) remove(id uint64) {
	i := e.index(id)
	if i < 0 {
		return
	}
	e.listeners = slices.Delete(e.listeners, i, i+1)
}

// Emit calls every subscribed callback with v. Callbacks may
// subscribe or unsubscribe during emission. Callbacks added during an
// emission are not called until the next one, and callbacks removed
// during an emission are not called after their removal.
func (e *Event[T]) Emit(v T) {
	for _, l := range slices.Clone(e.listeners) {
		if e.index(l.id) < 0 {
			continue
		}
		l.cb(v)
	}
}

// Len returns the number of subscribed callbacks.
func (e *Event[T]) Len() int {
	return len(e.listeners)
}
