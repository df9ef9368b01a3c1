package resource

import (
	"sync"

	"github.com/wippyai/xresource/guid"
)

// SafeManager is a mutex-protected wrapper around Manager for concurrent
// access. Every operation holds the lock for its full duration, including
// loader and destroy callbacks. Callbacks receive the inner Manager and
// must not call back into the SafeManager.
type SafeManager struct {
	mu sync.Mutex
	m  *Manager
}

// NewSafeManager wraps a new Manager configured with opts.
func NewSafeManager(opts ...Option) *SafeManager {
	return &SafeManager{m: NewManager(opts...)}
}

// Register thread-safely adds a registration.
func (s *SafeManager) Register(reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Register(reg)
}

// Initialize thread-safely builds the type table and instance pool.
func (s *SafeManager) Initialize(capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Initialize(capacity)
}

// Get thread-safely resolves ref.
func (s *SafeManager) Get(ref *Ref) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Get(ref)
}

// Release thread-safely gives up ref's share.
func (s *SafeManager) Release(ref *Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Release(ref)
}

// Clone thread-safely makes dst share src's state.
func (s *SafeManager) Clone(dst, src *Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Clone(dst, src)
}

// FullIdentity thread-safely returns the identity ref names.
func (s *SafeManager) FullIdentity(ref *Ref) (guid.Full, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.FullIdentity(ref)
}

// Count thread-safely returns the number of live instances.
func (s *SafeManager) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Count()
}

// Stats thread-safely returns a bookkeeping snapshot.
func (s *SafeManager) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Stats()
}

// Close thread-safely tears the manager down.
func (s *SafeManager) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Close()
}

// Do runs fn with exclusive access to the underlying Manager. Use it for
// typed operations or for batches that must not interleave.
func (s *SafeManager) Do(fn func(m *Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.m)
}

// SafeGet thread-safely resolves a typed reference.
func SafeGet[T any](s *SafeManager, t *Type[T], ref *TypedRef[T]) (*T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Get(s.m, ref)
}

// SafeRelease thread-safely releases a typed reference.
func SafeRelease[T any](s *SafeManager, t *Type[T], ref *TypedRef[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Release(s.m, ref)
}
