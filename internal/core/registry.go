package core

import "sync"

// DefaultCapacity is the number of concurrent sessions a registry holds.
const DefaultCapacity = 10

// Registry is a fixed set of slots, each empty or holding one live session.
// A session's ID is its slot index + 1. All access goes through mu; the lock
// is never held while writing to a connection.
type Registry struct {
	mu    sync.Mutex
	slots []*Session
}

// NewRegistry creates a registry with the given number of slots.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{slots: make([]*Session, capacity)}
}

// Capacity returns the number of slots.
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// Register places s in the first free slot and returns its ID.
// Registering a session twice returns its existing ID.
func (r *Registry) Register(s *Session) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := -1
	for i, slot := range r.slots {
		if slot == s {
			return i + 1, nil
		}
		if slot == nil && free < 0 {
			free = i
		}
	}
	if free < 0 {
		return 0, ErrCapacityExceeded
	}
	r.slots[free] = s
	s.id = free + 1
	return s.id, nil
}

// Unregister clears the slot holding s. It reports whether s was present.
func (r *Registry) Unregister(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, slot := range r.slots {
		if slot == s {
			r.slots[i] = nil
			return true
		}
	}
	return false
}

// FindByUsername returns the first authenticated session named name.
// The match is exact and case-sensitive.
func (r *Registry) FindByUsername(name string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(name, nil)
}

// Bind authenticates s as name unless a different authenticated session
// already uses it.
func (r *Registry) Bind(s *Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if other := r.findLocked(name, s); other != nil {
		return ErrUsernameOnline
	}
	s.setIdentity(name)
	return nil
}

// Snapshot returns the live sessions in slot order.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.slots))
	for _, slot := range r.slots {
		if slot != nil {
			out = append(out, slot)
		}
	}
	return out
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, slot := range r.slots {
		if slot != nil {
			n++
		}
	}
	return n
}

func (r *Registry) findLocked(name string, skip *Session) *Session {
	for _, slot := range r.slots {
		if slot == nil || slot == skip {
			continue
		}
		if slot.Authenticated() && slot.Username() == name {
			return slot
		}
	}
	return nil
}
