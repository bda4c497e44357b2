package command

import (
	"fmt"
	"sort"
	"sync"

	"hermes/internal/logging"
)

// HandlerFunc executes a command once its arguments have passed
// transform and validation. It returns the text surfaced to the LLM as
// this command's output.
type HandlerFunc func(ctx *Context, args map[string][]string) (string, error)

// TransformFunc remaps raw parsed args before validation, e.g.
// "criteria_number" (1-based, as a string) into a validated index.
type TransformFunc func(args map[string][]string) map[string][]string

// ValidateFunc runs command-specific checks beyond required-section
// presence, returning one message per violation.
type ValidateFunc func(args map[string][]string) []string

// Spec pairs a Schema with its behavior.
type Spec struct {
	Schema    Schema
	Transform TransformFunc
	Validate  ValidateFunc
	Handler   HandlerFunc
}

// Registry holds all available command specs. Thread-safe; supports
// registration at runtime, though in practice the built-in set is fixed
// at package init.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register adds a spec. Returns an error if a command with the same name
// already exists.
func (r *Registry) Register(spec *Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Schema.Name]; exists {
		return fmt.Errorf("command: %q already registered", spec.Schema.Name)
	}
	r.specs[spec.Schema.Name] = spec
	logging.CommandDebug("registered command: %s", spec.Schema.Name)
	return nil
}

// MustRegister registers a spec and panics on error. Used for static
// built-in registration at init time.
func (r *Registry) MustRegister(spec *Spec) {
	if err := r.Register(spec); err != nil {
		panic(fmt.Sprintf("command: failed to register %s: %v", spec.Schema.Name, err))
	}
}

// Get returns the spec for name, or nil if unregistered.
func (r *Registry) Get(name string) *Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.specs[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// Names returns all registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// Global is the package-level registry built-in commands register into
// at init time (see handlers.go).
var Global = NewRegistry()
