// Package registry maps artifact type names to Go types and validation
// rules. Every payload published to the blackboard must belong to a
// registered type; validation failures fail fast with a typed error and are
// never silently coerced.
//
// Registries are explicit values passed by reference; there is no package
// level singleton.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/whiteducksoftware/flock-go/core"
)

// Validator is implemented by payload types that carry their own structural
// validation. It is invoked on publish in addition to any validate function
// supplied at registration.
type Validator interface {
	Validate() error
}

// Type describes one registered artifact type.
type Type struct {
	Name     string
	GoType   reflect.Type
	validate func(payload any) error
}

// Registry holds the known artifact types. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Type
	byGoType map[reflect.Type]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName:   make(map[string]*Type),
		byGoType: make(map[reflect.Type]string),
	}
}

// Register adds a type under the given name. The prototype value determines
// the Go type used for decoding; validate may be nil. Registering the same
// name or Go type twice is an error.
func (r *Registry) Register(name string, prototype any, validate func(payload any) error) error {
	if name == "" {
		return fmt.Errorf("type name must not be empty")
	}
	goType := indirectType(prototype)
	if goType == nil {
		return fmt.Errorf("prototype for type %s must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("type %s already registered", name)
	}
	if existing, exists := r.byGoType[goType]; exists {
		return fmt.Errorf("go type %s already registered as %s", goType, existing)
	}
	r.byName[name] = &Type{Name: name, GoType: goType, validate: validate}
	r.byGoType[goType] = name
	return nil
}

// MustRegister is Register that panics on error. Intended for program
// initialization.
func (r *Registry) MustRegister(name string, prototype any, validate func(payload any) error) {
	if err := r.Register(name, prototype, validate); err != nil {
		panic(err)
	}
}

// Lookup returns the registered type for a name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// TypeOf resolves the registered type name for a payload value.
func (r *Registry) TypeOf(payload any) (string, bool) {
	goType := indirectType(payload)
	if goType == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byGoType[goType]
	return name, ok
}

// New allocates a fresh pointer instance of the named type for decoding.
func (r *Registry) New(name string) (any, bool) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return reflect.New(t.GoType).Interface(), true
}

// Names returns the registered type names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

// Validate checks a payload against the named type: the payload's Go type
// must match the registration, the registered validate function (if any) must
// pass, and a payload implementing Validator must validate itself. Failures
// return *core.ValidationError; unknown names return ErrTypeNotRegistered.
func (r *Registry) Validate(name string, payload any) error {
	t, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrTypeNotRegistered, name)
	}
	goType := indirectType(payload)
	if goType != t.GoType {
		return &core.ValidationError{
			Type:   name,
			Reason: fmt.Sprintf("payload type %v does not match registered type %v", goType, t.GoType),
		}
	}
	if t.validate != nil {
		if err := t.validate(indirectValue(payload)); err != nil {
			return &core.ValidationError{Type: name, Err: err}
		}
	}
	if v, ok := payload.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &core.ValidationError{Type: name, Err: err}
		}
	} else if v, ok := indirectValue(payload).(Validator); ok {
		if err := v.Validate(); err != nil {
			return &core.ValidationError{Type: name, Err: err}
		}
	}
	return nil
}

// indirectType returns the non-pointer reflect.Type of a value, or nil.
func indirectType(v any) reflect.Type {
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// indirectValue dereferences a pointer payload for validation.
func indirectValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return v
	}
	return rv.Interface()
}
