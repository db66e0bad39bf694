package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	ErrUnknownFeature     = errors.New("unknown feature")
	ErrDuplicateFeature   = errors.New("feature already registered")
	ErrInvalidFeatureName = errors.New("invalid feature name")
	ErrRegistrySealed     = errors.New("feature registry is sealed")
)

// NameRegex is the format every feature name must match.
var NameRegex = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Feature is a named, independently toggleable unit of behavior.
type Feature struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	EnabledByDefault bool   `json:"enabled_by_default"`
}

// Registry is the process-wide catalogue of known features. It is filled
// at startup and then sealed; after that it is read-only.
type Registry struct {
	mu       sync.RWMutex
	features []Feature
	index    map[string]int
	sealed   bool
}

func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a feature to the catalogue.
func (r *Registry) Register(name, description string, enabledByDefault bool) error {
	if !NameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidFeatureName, name, NameRegex)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, name)
	}
	r.index[name] = len(r.features)
	r.features = append(r.features, Feature{
		Name:             name,
		Description:      description,
		EnabledByDefault: enabledByDefault,
	})
	return nil
}

// Seal stops any further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) Get(name string) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return Feature{}, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return r.features[i], nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[name]
	return ok
}

// List returns the features in registration order.
func (r *Registry) List() []Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Feature, len(r.features))
	copy(out, r.features)
	return out
}
