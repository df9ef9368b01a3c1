package resource

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
)

// LoadFunc materializes the resource named by id. It returns a non-nil
// pointer, or nil when the resource cannot be loaded right now.
type LoadFunc func(m *Manager, id guid.Full) any

// DestroyFunc takes ownership of data and tears it down.
type DestroyFunc func(m *Manager, data any, id guid.Full)

// Registration describes how one resource type is loaded and destroyed.
type Registration struct {
	Load    LoadFunc
	Destroy DestroyFunc
	Name    string
	TypeID  guid.TypeID

	// Deferred asks the surrounding frame scheduler to hold the last
	// reference until the next frame boundary before releasing it.
	Deferred bool
}

func (r Registration) validate() error {
	if r.TypeID == 0 {
		return errors.InvalidInput(errors.PhaseRegister, "type id cannot be zero")
	}
	if r.Load == nil || r.Destroy == nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(r.Name).
			Identity(r.TypeID.String()).
			Detail("load and destroy callbacks are required").
			Build()
	}
	return nil
}

func (r Registration) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TypeID.String()
}

// Registrar accepts registrations. Both Registry and Manager implement it.
type Registrar interface {
	Register(Registration) error
}

// Registry collects registrations before any manager is initialized. It does
// not reject duplicates; the manager does that once, at Initialize.
type Registry struct {
	regs []Registration
	mu   sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry that packages register into from init.
var Default = NewRegistry()

// Register adds a registration.
func (r *Registry) Register(reg Registration) error {
	if err := reg.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
	return nil
}

// Registrations returns a snapshot in registration order.
func (r *Registry) Registrations() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.regs))
	copy(out, r.regs)
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Loader is the typed loader contract for data type T.
type Loader[T any] interface {
	Load(m *Manager, id guid.Full) *T
	Destroy(m *Manager, data *T, id guid.Full)
}

// LoaderFuncs adapts a pair of functions to Loader.
type LoaderFuncs[T any] struct {
	OnLoad    func(m *Manager, id guid.Full) *T
	OnDestroy func(m *Manager, data *T, id guid.Full)
}

func (f LoaderFuncs[T]) Load(m *Manager, id guid.Full) *T { return f.OnLoad(m, id) }

func (f LoaderFuncs[T]) Destroy(m *Manager, data *T, id guid.Full) {
	if f.OnDestroy != nil {
		f.OnDestroy(m, data, id)
	}
}

// TypeOption customizes a typed registration.
type TypeOption func(*Registration)

// WithName overrides the display name, which defaults to the Go type name.
func WithName(name string) TypeOption {
	return func(r *Registration) { r.Name = name }
}

// WithDeferredDestroy marks the type for frame-deferred destruction.
func WithDeferredDestroy() TypeOption {
	return func(r *Registration) { r.Deferred = true }
}

// Type is the typed handle on a registered resource type. It supplies the
// TypeID that TypedRef values leave out.
type Type[T any] struct {
	name string
	id   guid.TypeID
}

// Register registers loader l for data type T under id.
func Register[T any](r Registrar, id guid.TypeID, l Loader[T], opts ...TypeOption) (*Type[T], error) {
	var zero T
	goName := reflect.TypeFor[T]().String()
	if unsafe.Sizeof(zero) == 0 {
		// Zero-size values share one address and would alias in the pointer index.
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(goName).
			Detail("zero-size data types cannot be managed").
			Build()
	}
	if l == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "loader cannot be nil")
	}

	reg := Registration{
		TypeID: id,
		Name:   goName,
		Load: func(m *Manager, full guid.Full) any {
			if p := l.Load(m, full); p != nil {
				return p
			}
			return nil
		},
		Destroy: func(m *Manager, data any, full guid.Full) {
			l.Destroy(m, data.(*T), full)
		},
	}
	for _, opt := range opts {
		opt(&reg)
	}
	if err := r.Register(reg); err != nil {
		return nil, err
	}
	return &Type[T]{id: id, name: reg.Name}, nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level variables.
func MustRegister[T any](r Registrar, id guid.TypeID, l Loader[T], opts ...TypeOption) *Type[T] {
	t, err := Register[T](r, id, l, opts...)
	if err != nil {
		panic(fmt.Sprintf("resource: register %s: %v", id, err))
	}
	return t
}

// pointerOf extracts the address of a loader result.
func pointerOf(data any) (unsafe.Pointer, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, false
	}
	return v.UnsafePointer(), true
}
