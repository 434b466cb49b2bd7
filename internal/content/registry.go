package content

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownContentType = errors.New("unknown content type")

// Source tells the registry how to reach objects of one content type. Every
// field is optional: a nil Fetch yields an opaque stub (the content lives in
// an external store and may not be dereferenceable from here), and nil URL
// builders mean the type has no public or admin page.
type Source struct {
	Fetch     func(objectID uint64) (any, error)
	PublicURL func(objectID uint64) string
	AdminURL  func(objectID uint64) string
}

// URLSource builds a Source from fmt patterns with a single %d verb, e.g.
// "https://example.com/posts/%d". Empty patterns leave the builder nil.
func URLSource(publicPattern, adminPattern string) Source {
	var src Source
	if publicPattern != "" {
		src.PublicURL = func(id uint64) string { return fmt.Sprintf(publicPattern, id) }
	}
	if adminPattern != "" {
		src.AdminURL = func(id uint64) string { return fmt.Sprintf(adminPattern, id) }
	}
	return src
}

// Registry maps content type tags to their sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

func (r *Registry) Register(typeTag string, src Source) error {
	if _, _, err := ParseTypeTag(typeTag); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[typeTag] = src
	return nil
}

func (r *Registry) Known(typeTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[typeTag]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// Resolve fetches the object behind a reference. Sources without a Fetch
// func resolve to the reference itself.
func (r *Registry) Resolve(ref Ref) (any, error) {
	r.mu.RLock()
	src, ok := r.sources[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ref.Type)
	}
	if src.Fetch == nil {
		return ref, nil
	}
	return src.Fetch(ref.ObjectID)
}

// PublicURL returns the object's public URL, or "" when the type is
// unregistered or has no URL builder. It never fails.
func (r *Registry) PublicURL(ref Ref) string {
	r.mu.RLock()
	src, ok := r.sources[ref.Type]
	r.mu.RUnlock()
	if !ok || src.PublicURL == nil {
		return ""
	}
	return src.PublicURL(ref.ObjectID)
}

// AdminURL returns the object's admin URL, or "" on any miss.
func (r *Registry) AdminURL(ref Ref) string {
	r.mu.RLock()
	src, ok := r.sources[ref.Type]
	r.mu.RUnlock()
	if !ok || src.AdminURL == nil {
		return ""
	}
	return src.AdminURL(ref.ObjectID)
}

// UserURLBuilder builds best-effort profile and admin URLs for user
// accounts, which are keyed by UUID rather than by content reference.
// Patterns take a single %s verb; empty patterns yield "".
type UserURLBuilder struct {
	PublicPattern string
	AdminPattern  string
}

func (b UserURLBuilder) PublicURL(id uuid.UUID) string {
	if b.PublicPattern == "" {
		return ""
	}
	return fmt.Sprintf(b.PublicPattern, id)
}

func (b UserURLBuilder) AdminURL(id uuid.UUID) string {
	if b.AdminPattern == "" {
		return ""
	}
	return fmt.Sprintf(b.AdminPattern, id)
}
