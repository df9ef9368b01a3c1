package resource

import (
	"testing"

	"github.com/wippyai/xresource/guid"
)

const (
	intMagic           = 512
	floatMagic float32 = 0.1234
)

var (
	intTypeID   = guid.TypeFromString("Int")
	floatTypeID = guid.TypeFromString("float")
)

// countingLoader hands out copies of value and checks that destroy gets the
// same value back.
type countingLoader[T comparable] struct {
	value     T
	loads     int
	failures  int
	destroys  int
	corrupted int
	fail      bool
}

func (l *countingLoader[T]) Load(m *Manager, id guid.Full) *T {
	if l.fail {
		l.failures++
		return nil
	}
	l.loads++
	v := l.value
	return &v
}

func (l *countingLoader[T]) Destroy(m *Manager, data *T, id guid.Full) {
	l.destroys++
	if *data != l.value {
		l.corrupted++
	}
}

type fixture struct {
	mgr    *Manager
	ints   *Type[int]
	floats *Type[float32]
	intL   *countingLoader[int]
	floatL *countingLoader[float32]
}

func newFixture(t *testing.T, capacity int, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		mgr:    NewManager(opts...),
		intL:   &countingLoader[int]{value: intMagic},
		floatL: &countingLoader[float32]{value: floatMagic},
	}
	var err error
	f.ints, err = Register[int](f.mgr, intTypeID, f.intL)
	if err != nil {
		t.Fatalf("Register int: %v", err)
	}
	f.floats, err = Register[float32](f.mgr, floatTypeID, f.floatL, WithName("Floating Point Numbers"))
	if err != nil {
		t.Fatalf("Register float: %v", err)
	}
	if err := f.mgr.Initialize(capacity); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return f
}

// recorder collects lifecycle events.
type recorder struct {
	events []Event
}

func (r *recorder) OnResourceEvent(e Event) { r.events = append(r.events, e) }

func (r *recorder) count(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
