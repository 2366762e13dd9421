package registry

import (
	"errors"
	"strings"
	"sync"
)

// Role classifies an identity within the school.
type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleStaff   Role = "Staff"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleStaff
}

// Identity is a person known to the access-control system, keyed by the
// RFID tag they carry.
type Identity struct {
	TagID  string `json:"tag_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

var (
	ErrTagExists   = errors.New("tag already registered")
	ErrTagNotFound = errors.New("tag not found")
	ErrInvalid     = errors.New("invalid identity")
)

// Registry holds the known identities. It is safe for concurrent use;
// the scan pipeline only reads, administration writes.
type Registry struct {
	mu    sync.RWMutex
	byTag map[string]Identity
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byTag: make(map[string]Identity)}
}

// Add registers a new identity. The tag id must be unique.
func (r *Registry) Add(id Identity) error {
	if err := validate(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTag[id.TagID]; ok {
		return ErrTagExists
	}
	r.byTag[id.TagID] = id
	r.order = append(r.order, id.TagID)
	return nil
}

// Update replaces the identity stored under id.TagID.
func (r *Registry) Update(id Identity) error {
	if err := validate(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTag[id.TagID]; !ok {
		return ErrTagNotFound
	}
	r.byTag[id.TagID] = id
	return nil
}

// Remove deletes the identity for tagID.
func (r *Registry) Remove(tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTag[tagID]; !ok {
		return ErrTagNotFound
	}
	delete(r.byTag, tagID)
	for i, t := range r.order {
		if t == tagID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get looks up the identity for a tag.
func (r *Registry) Get(tagID string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byTag[tagID]
	return id, ok
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTag)
}

// List returns identities in registration order. A non-empty role
// filters exactly; a non-empty search matches case-insensitively as a
// substring of name, tag id, or email. Filters compose with AND.
func (r *Registry) List(role Role, search string) []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(search)
	out := make([]Identity, 0, len(r.order))
	for _, tag := range r.order {
		id, ok := r.byTag[tag]
		if !ok {
			continue
		}
		if role != "" && id.Role != role {
			continue
		}
		if needle != "" && !matches(id, needle) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func matches(id Identity, needle string) bool {
	return strings.Contains(strings.ToLower(id.Name), needle) ||
		strings.Contains(strings.ToLower(id.TagID), needle) ||
		strings.Contains(strings.ToLower(id.Email), needle)
}

func validate(id Identity) error {
	if id.TagID == "" || id.Name == "" {
		return ErrInvalid
	}
	if !ValidRole(id.Role) {
		return ErrInvalid
	}
	return nil
}
