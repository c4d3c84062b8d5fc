package permission

import (
	"errors"
	"sync"
)

// MaxRoles is the number of distinct role names a [Registry] can hold.
const MaxRoles = 64

var (
	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry frozen")
	// ErrEmptyName is returned for empty role names.
	ErrEmptyName = errors.New("role name cannot be empty")
	// ErrRoleLimit is returned when more than MaxRoles names are registered.
	ErrRoleLimit = errors.New("role limit exceeded")
)

// Registry maps role names to bit positions within a [Mask64].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName map[int]string
	frozen    bool
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		nameToBit: make(map[string]int),
		bitToName: make(map[int]string),
	}
}

// Ensure returns the bit for name, assigning the next free bit on first use.
func (r *Registry) Ensure(name string) (int, error) {
	if name == "" {
		return -1, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if bit, ok := r.nameToBit[name]; ok {
		return bit, nil
	}
	if r.frozen {
		return -1, ErrRegistryFrozen
	}

	next := len(r.nameToBit)
	if next >= MaxRoles {
		return -1, ErrRoleLimit
	}

	r.nameToBit[name] = next
	r.bitToName[next] = name
	return next, nil
}

// Bit returns the bit index for the named role, or false if not registered.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the role name for the given bit index, or false if unassigned.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

// Mask returns the mask of registered names. Unknown names are ignored:
// a role nobody requires grants nothing.
func (r *Registry) Mask(names []string) Mask64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var m Mask64
	for _, name := range names {
		if bit, ok := r.nameToBit[name]; ok {
			m.Set(bit)
		}
	}
	return m
}

// Names returns the role names set in m, in bit order.
func (r *Registry) Names(m Mask64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for bit := 0; bit < MaxRoles; bit++ {
		if !m.Has(bit) {
			continue
		}
		if name, ok := r.bitToName[bit]; ok {
			out = append(out, name)
		}
	}
	return out
}
