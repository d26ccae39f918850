// Package events fans node events out to registered listeners such as the
// websocket viewers of the node API.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is the number of events held for a listener that is slow
// to receive. Events beyond that are dropped for that listener.
const messageBuffer = 100

// Events maintains the set of listeners keyed by a unique id.
type Events struct {
	mu        sync.RWMutex
	listeners map[string]chan string
}

// New constructs an Events value for registering listeners.
func New() *Events {
	return &Events{
		listeners: make(map[string]chan string),
	}
}

// Acquire registers a listener under the id and returns the channel its
// events arrive on. Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.listeners[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	evt.listeners[id] = ch

	return ch
}

// Release removes the listener and closes its channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.listeners[id]
	if !exists {
		return fmt.Errorf("listener %q does not exist", id)
	}

	delete(evt.listeners, id)
	close(ch)

	return nil
}

// Len returns the number of registered listeners.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.listeners)
}

// Send delivers the event to every listener without blocking on any.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.listeners {
		select {
		case ch <- s:
		default:
		}
	}
}

// Shutdown releases every listener.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.listeners {
		delete(evt.listeners, id)
		close(ch)
	}
}
