// Package registry tracks which room each live connection is attributed to.
// It is the only source of broadcast scope.
package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ConnID is an opaque handle issued when a connection is accepted.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Binding records the room a connection last created or joined, and the
// player name it did so under.
type Binding struct {
	RoomCode   string
	PlayerName string
}

type Registry struct {
	mu       sync.RWMutex
	bindings map[ConnID]Binding
}

func New() *Registry {
	return &Registry{
		bindings: make(map[ConnID]Binding),
	}
}

// Bind overwrites any previous binding for id. The previous room is not told.
func (r *Registry) Bind(id ConnID, code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[id] = Binding{RoomCode: code, PlayerName: name}
}

// Unbind clears and returns the binding for id.
func (r *Registry) Unbind(id ConnID) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[id]
	if ok {
		delete(r.bindings, id)
	}
	return b, ok
}

func (r *Registry) Lookup(id ConnID) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[id]
	return b, ok
}

// MembersOf returns the connections currently bound to code, sorted.
func (r *Registry) MembersOf(code string) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ConnID
	for id, b := range r.bindings {
		if b.RoomCode == code {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Holders counts connections bound to code under name.
func (r *Registry) Holders(code, name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, b := range r.bindings {
		if b.RoomCode == code && b.PlayerName == name {
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
