package resource

import (
	"math"
	"sort"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
)

// DefaultCapacity is the instance capacity used by hosts that have no
// deployment-specific value.
const DefaultCapacity = 1000

// Manager maps identities to loaded, reference-counted instances.
// It is not safe for concurrent use; see SafeManager.
type Manager struct {
	logger     *zap.Logger
	types      map[guid.TypeID]Registration
	byID       map[guid.Full]int32
	byPtr      map[unsafe.Pointer]int32
	pool       *pool
	registries []*Registry
	pending    []Registration
	observers  []Observer
	stats      Stats
	seq        uint64
	debug      bool
	ready      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRegistry adds every registration in r to the manager at Initialize.
func WithRegistry(r *Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registries = append(m.registries, r)
		}
	}
}

// WithDebugChecks makes invariant violations panic instead of returning
// errors, and makes Close report leaked references.
func WithDebugChecks(enabled bool) Option {
	return func(m *Manager) { m.debug = enabled }
}

// WithObserver subscribes o before any operation runs.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// NewManager creates an uninitialized manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{logger: Logger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a registration. Only legal before Initialize.
func (m *Manager) Register(reg Registration) error {
	if m.ready {
		return errors.AlreadyInitialized(errors.PhaseRegister, "resource manager")
	}
	if err := reg.validate(); err != nil {
		return err
	}
	m.pending = append(m.pending, reg)
	return nil
}

// Initialize builds the type table from every registration and allocates
// the instance pool. Two registrations with one TypeID fail with a
// duplicate_type error and leave the manager uninitialized.
func (m *Manager) Initialize(capacity int) error {
	if m.ready {
		return errors.AlreadyInitialized(errors.PhaseInitialize, "resource manager")
	}
	if capacity <= 0 || capacity > math.MaxInt32 {
		return errors.New(errors.PhaseInitialize, errors.KindInvalidInput).
			Value(capacity).
			Detail("capacity must be between 1 and %d", math.MaxInt32).
			Build()
	}

	var all []Registration
	for _, r := range m.registries {
		all = append(all, r.Registrations()...)
	}
	all = append(all, m.pending...)

	types := make(map[guid.TypeID]Registration, len(all))
	for _, reg := range all {
		if prev, dup := types[reg.TypeID]; dup {
			err := errors.DuplicateType(reg.TypeID.String(), prev.displayName(), reg.displayName())
			m.logger.Error("duplicate resource type",
				zap.Stringer("type_id", reg.TypeID),
				zap.String("first", prev.displayName()),
				zap.String("second", reg.displayName()))
			return err
		}
		types[reg.TypeID] = reg
	}

	m.types = types
	m.byID = make(map[guid.Full]int32, capacity)
	m.byPtr = make(map[unsafe.Pointer]int32, capacity)
	m.pool = newPool(capacity)
	m.pending = nil
	m.ready = true

	m.logger.Debug("resource manager initialized",
		zap.Int("capacity", capacity),
		zap.Int("types", len(types)))
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (m *Manager) Initialized() bool { return m.ready }

// Get resolves ref and returns its data. A resolved reference returns
// immediately without touching any index or count. ok is false with a nil
// error when the loader could not produce the resource; ref then stays
// unresolved and a later Get retries the loader.
func (m *Manager) Get(ref *Ref) (any, bool, error) {
	if ref.resolved() {
		return ref.data, true, nil
	}
	info, ok, err := m.resolve(&ref.cell, ref.typ)
	if !ok || err != nil {
		return nil, ok, err
	}
	ref.data = info.data
	return ref.data, true, nil
}

// Release gives up ref's share. Unresolved references are left alone. A
// released reference holds its original identity again.
func (m *Manager) Release(ref *Ref) error {
	err := m.release(&ref.cell, ref.typ)
	if !ref.resolved() {
		ref.data = nil
	}
	return err
}

// Clone makes dst share src's state. A resolved src adds one share; an
// unresolved src is copied as a plain identity. A resolved dst pointing
// elsewhere is released first.
func (m *Manager) Clone(dst, src *Ref) error {
	if dst == src {
		return nil
	}
	if _, err := m.clone(&dst.cell, dst.typ, &src.cell, src.typ); err != nil {
		return err
	}
	dst.typ = src.typ
	dst.data = src.data
	return nil
}

// FullIdentity returns the identity ref names, in either state, without
// changing ref.
func (m *Manager) FullIdentity(ref *Ref) (guid.Full, error) {
	return m.identity(&ref.cell, ref.typ)
}

// Count returns the number of distinct live instances.
func (m *Manager) Count() int {
	if len(m.byID) != len(m.byPtr) {
		m.violation(errors.PhaseQuery, "", "identity and pointer indexes disagree")
	}
	return len(m.byID)
}

// RefCount returns the number of resolved references sharing id.
func (m *Manager) RefCount(id guid.Full) int {
	idx, ok := m.byID[id]
	if !ok {
		return 0
	}
	return int(m.pool.at(idx).refs)
}

// Registration returns the descriptor registered for id.
func (m *Manager) Registration(id guid.TypeID) (Registration, bool) {
	reg, ok := m.types[id]
	return reg, ok
}

// Types returns all registrations sorted by display name.
func (m *Manager) Types() []Registration {
	out := make([]Registration, 0, len(m.types))
	for _, reg := range m.types {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].displayName() == out[j].displayName() {
			return out[i].TypeID < out[j].TypeID
		}
		return out[i].displayName() < out[j].displayName()
	})
	return out
}

// Stats returns a snapshot of the manager's bookkeeping.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Types = len(m.types)
	if m.pool != nil {
		s.Live = m.pool.live
		s.Capacity = m.pool.capacity()
		s.Free = m.pool.available()
		s.Utilization = float64(s.Live) / float64(s.Capacity)
	}
	return s
}

// Subscribe adds an observer for lifecycle events.
func (m *Manager) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Unsubscribe removes an observer.
func (m *Manager) Unsubscribe(o Observer) {
	for i, obs := range m.observers {
		if obs == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// Close tears the manager down. Instances that are still referenced are
// destroyed anyway and reported: every reference still resolved at this
// point is a caller bug. Instances go newest first, so a composite resource
// is destroyed before the resources its loader resolved.
func (m *Manager) Close() error {
	if !m.ready {
		return nil
	}

	var leaked int
	for m.pool.live > 0 {
		for _, idx := range m.pool.newestFirst() {
			info := m.pool.at(idx)
			if info.refs == 0 {
				// released by an earlier destroy
				continue
			}
			leaked++
			m.teardown(idx, info)
		}
	}

	m.ready = false
	m.types = nil
	m.byID = nil
	m.byPtr = nil
	m.pool = nil

	if leaked > 0 {
		err := errors.New(errors.PhaseTeardown, errors.KindInvariantViolation).
			Value(leaked).
			Detail("%d resources still referenced", leaked).
			Build()
		if m.debug {
			panic(err)
		}
		return err
	}
	return nil
}

// teardown force-destroys one leaked instance. Only its own index entries
// and slot are dropped before Destroy runs.
func (m *Manager) teardown(idx int32, info *instanceInfo) {
	reg := m.types[info.id.Type]
	m.logger.Warn("resource still referenced at teardown",
		zap.Stringer("id", info.id),
		zap.String("type", reg.displayName()),
		zap.Int32("refs", info.refs))

	data, id := info.data, info.id
	delete(m.byID, id)
	delete(m.byPtr, info.ptr)
	m.pool.free(idx)
	if reg.Destroy != nil {
		reg.Destroy(m, data, id)
		m.stats.Destroys++
	}
	m.notifyEvent(Event{Type: EventDestroyed, ID: id, TypeName: reg.displayName(), Data: data})
}

// resolve runs the slow path of Get for an unresolved cell.
func (m *Manager) resolve(c *cell, typ guid.TypeID) (*instanceInfo, bool, error) {
	if !m.ready {
		return nil, false, errors.NotInitialized(errors.PhaseLoad, "resource manager")
	}
	if !c.word.Valid() || !c.word.Tagged() {
		return nil, false, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Identity(c.word.String()).
			Detail("reference holds no valid identity").
			Build()
	}

	id := guid.Full{Instance: c.word, Type: typ}
	if idx, hit := m.byID[id]; hit {
		info := m.pool.at(idx)
		info.refs++
		c.resolve(info.ptr)
		m.notify(EventAttached, info, "")
		return info, true, nil
	}

	reg, ok := m.types[typ]
	if !ok {
		m.logger.Error("get on unregistered resource type", zap.Stringer("id", id))
		return nil, false, errors.UnregisteredType(errors.PhaseLoad, typ.String())
	}

	data := reg.Load(m, id)
	if data == nil {
		m.stats.LoadFailures++
		m.logger.Debug("resource load failed",
			zap.Stringer("id", id),
			zap.String("type", reg.displayName()))
		m.notifyEvent(Event{Type: EventLoadFailed, ID: id, TypeName: reg.displayName()})
		return nil, false, nil
	}

	ptr, ok := pointerOf(data)
	if !ok {
		reg.Destroy(m, data, id)
		m.stats.Destroys++
		return nil, false, errors.InvalidData(errors.PhaseLoad, reg.displayName(),
			"loader must return a non-nil pointer")
	}
	if _, dup := m.byPtr[ptr]; dup {
		return nil, false, m.violation(errors.PhaseLoad, id.String(),
			"loader returned data already owned by another instance")
	}

	idx, ok := m.pool.alloc()
	if !ok {
		reg.Destroy(m, data, id)
		m.stats.Destroys++
		m.logger.Warn("resource pool exhausted",
			zap.Stringer("id", id),
			zap.Int("capacity", m.pool.capacity()))
		return nil, false, errors.CapacityExceeded(reg.displayName(), id.String(), m.pool.capacity())
	}

	info := m.pool.at(idx)
	info.data = data
	info.ptr = ptr
	info.id = id
	info.refs = 1
	m.seq++
	info.seq = m.seq
	m.byID[id] = idx
	m.byPtr[ptr] = idx
	c.resolve(ptr)

	m.stats.Loads++
	m.logger.Debug("resource loaded",
		zap.Stringer("id", id),
		zap.String("type", reg.displayName()))
	m.notify(EventLoaded, info, reg.displayName())
	return info, true, nil
}

// release gives up one share held by c.
func (m *Manager) release(c *cell, typ guid.TypeID) error {
	if !c.valid() || !c.resolved() {
		return nil
	}

	idx, ok := m.byPtr[c.ptr]
	if !ok {
		return m.violation(errors.PhaseRelease, typ.String(),
			"resolved reference is not owned by this manager")
	}
	info := m.pool.at(idx)
	if info.id.Type != typ {
		return m.violation(errors.PhaseRelease, info.id.String(),
			"reference type does not match instance type "+typ.String())
	}

	original := info.id
	if info.refs > 1 {
		info.refs--
		c.unresolve(original.Instance)
		m.notify(EventReleased, info, "")
		return nil
	}

	reg, ok := m.types[original.Type]
	if !ok {
		return errors.UnregisteredType(errors.PhaseRelease, original.Type.String())
	}

	data := info.data
	delete(m.byID, original)
	delete(m.byPtr, info.ptr)
	m.pool.free(idx)
	c.unresolve(original.Instance)

	reg.Destroy(m, data, original)
	m.stats.Destroys++
	m.logger.Debug("resource destroyed",
		zap.Stringer("id", original),
		zap.String("type", reg.displayName()))
	m.notifyEvent(Event{Type: EventDestroyed, ID: original, TypeName: reg.displayName(), Data: data})
	return nil
}

// clone makes dst share src. It returns the shared record when src is
// resolved.
func (m *Manager) clone(dst *cell, dstTyp guid.TypeID, src *cell, srcTyp guid.TypeID) (*instanceInfo, error) {
	if !src.resolved() {
		if dst.resolved() {
			if err := m.release(dst, dstTyp); err != nil {
				return nil, err
			}
		}
		dst.unresolve(src.word)
		return nil, nil
	}

	idx, ok := m.byPtr[src.ptr]
	if !ok {
		return nil, m.violation(errors.PhaseClone, srcTyp.String(),
			"resolved source is not owned by this manager")
	}
	info := m.pool.at(idx)

	if dst.resolved() {
		if dst.ptr == src.ptr {
			return info, nil
		}
		if err := m.release(dst, dstTyp); err != nil {
			return nil, err
		}
	}

	info.refs++
	dst.resolve(src.ptr)
	m.notify(EventCloned, info, "")
	return info, nil
}

// identity answers FullIdentity for c.
func (m *Manager) identity(c *cell, typ guid.TypeID) (guid.Full, error) {
	if !c.resolved() {
		return guid.Full{Instance: c.word, Type: typ}, nil
	}
	idx, ok := m.byPtr[c.ptr]
	if !ok {
		return guid.Full{}, m.violation(errors.PhaseQuery, typ.String(),
			"resolved reference is not owned by this manager")
	}
	return m.pool.at(idx).id, nil
}

func (m *Manager) violation(phase errors.Phase, identity, detail string) error {
	err := errors.InvariantViolation(phase, identity, detail)
	m.logger.Error("resource invariant violated",
		zap.String("phase", string(phase)),
		zap.String("identity", identity),
		zap.String("detail", detail))
	if m.debug {
		panic(err)
	}
	return err
}

func (m *Manager) notify(t EventType, info *instanceInfo, name string) {
	if len(m.observers) == 0 {
		return
	}
	if name == "" {
		name = m.types[info.id.Type].displayName()
	}
	m.notifyEvent(Event{
		Type:     t,
		ID:       info.id,
		TypeName: name,
		RefCount: int(info.refs),
		Data:     info.data,
	})
}

func (m *Manager) notifyEvent(e Event) {
	for _, o := range m.observers {
		o.OnResourceEvent(e)
	}
}
