package frame

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/xresource/guid"
	"github.com/wippyai/xresource/resource"
)

// Scheduler releases references on behalf of callers, holding the last share
// of deferred types until the next EndFrame. It is not safe for concurrent
// use, matching the Manager it wraps.
type Scheduler struct {
	m      *resource.Manager
	logger *zap.Logger
	queue  []*resource.Ref
	frame  uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler for m.
func New(m *resource.Manager, opts ...Option) *Scheduler {
	s := &Scheduler{m: m, logger: resource.Logger().Named("frame")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Manager returns the wrapped manager.
func (s *Scheduler) Manager() *resource.Manager { return s.m }

// Release gives up ref's share. The caller's reference is unresolved on
// return in every case; only the moment of destruction is deferred.
func (s *Scheduler) Release(ref *resource.Ref) error {
	if !ref.Resolved() || !s.deferred(ref.TypeID()) {
		return s.m.Release(ref)
	}

	held := new(resource.Ref)
	if err := s.m.Clone(held, ref); err != nil {
		return err
	}
	if err := s.m.Release(ref); err != nil {
		_ = s.m.Release(held)
		return err
	}
	s.hold(held)
	return nil
}

// ReleaseTyped is Release for typed references.
func ReleaseTyped[T any](s *Scheduler, t *resource.Type[T], ref *resource.TypedRef[T]) error {
	if !ref.Resolved() || !s.deferred(t.ID()) {
		return t.Release(s.m, ref)
	}

	held := new(resource.Ref)
	if err := t.Erase(s.m, held, ref); err != nil {
		return err
	}
	if err := t.Release(s.m, ref); err != nil {
		_ = s.m.Release(held)
		return err
	}
	s.hold(held)
	return nil
}

// EndFrame closes the current frame: every share held since the previous
// EndFrame is released, destroying instances nobody reacquired. Releases
// requested while it runs, for example from destroy callbacks, wait for the
// following frame. It returns the number of held shares released.
func (s *Scheduler) EndFrame() (int, error) {
	batch := s.queue
	s.queue = nil
	s.frame++

	var errs []error
	for _, ref := range batch {
		if err := s.m.Release(ref); err != nil {
			errs = append(errs, err)
		}
	}

	if len(batch) > 0 {
		s.logger.Debug("frame ended",
			zap.Uint64("frame", s.frame),
			zap.Int("released", len(batch)),
			zap.Int("live", s.m.Count()))
	}
	return len(batch), stderrors.Join(errs...)
}

// Flush ends frames until nothing is held. Call it before closing the
// manager.
func (s *Scheduler) Flush() error {
	var errs []error
	for len(s.queue) > 0 {
		if _, err := s.EndFrame(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Pending returns the number of shares held for the next EndFrame.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Frame returns the number of frames ended so far.
func (s *Scheduler) Frame() uint64 { return s.frame }

func (s *Scheduler) deferred(id guid.TypeID) bool {
	reg, ok := s.m.Registration(id)
	return ok && reg.Deferred
}

func (s *Scheduler) hold(ref *resource.Ref) {
	s.queue = append(s.queue, ref)
	if ce := s.logger.Check(zap.DebugLevel, "release deferred"); ce != nil {
		id, _ := s.m.FullIdentity(ref)
		ce.Write(zap.Stringer("id", id), zap.Uint64("frame", s.frame))
	}
}
