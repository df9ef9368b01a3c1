package resource

import (
	"strings"
	"testing"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
)

func TestRegistration_Validate(t *testing.T) {
	load := func(*Manager, guid.Full) any { return new(int) }
	destroy := func(*Manager, any, guid.Full) {}

	tests := []struct {
		name    string
		reg     Registration
		wantErr bool
	}{
		{"valid", Registration{TypeID: 1, Load: load, Destroy: destroy}, false},
		{"zero type", Registration{Load: load, Destroy: destroy}, true},
		{"missing load", Registration{TypeID: 1, Destroy: destroy}, true},
		{"missing destroy", Registration{TypeID: 1, Load: load}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.reg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsKind(err, errors.KindInvalidInput) {
				t.Fatalf("expected invalid_input, got %v", err)
			}
		})
	}
}

func TestRegister_DefaultName(t *testing.T) {
	r := NewRegistry()
	ints, err := Register[int](r, intTypeID, &countingLoader[int]{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ints.Name() != "int" {
		t.Fatalf("Name() = %q, want %q", ints.Name(), "int")
	}
	if ints.ID() != intTypeID {
		t.Fatalf("ID() = %v, want %v", ints.ID(), intTypeID)
	}

	floats, err := Register[float32](r, floatTypeID, &countingLoader[float32]{}, WithName("Floating Point Numbers"), WithDeferredDestroy())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if floats.Name() != "Floating Point Numbers" {
		t.Fatalf("Name() = %q", floats.Name())
	}

	regs := r.Registrations()
	if len(regs) != 2 || r.Len() != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(regs))
	}
	if regs[0].Deferred || !regs[1].Deferred {
		t.Fatal("deferred flag not applied to the right registration")
	}
}

func TestRegister_RejectsZeroSize(t *testing.T) {
	_, err := Register[struct{}](NewRegistry(), 7, LoaderFuncs[struct{}]{
		OnLoad: func(*Manager, guid.Full) *struct{} { return &struct{}{} },
	})
	if err == nil {
		t.Fatal("expected zero-size type to be rejected")
	}
	if !strings.Contains(err.Error(), "zero-size") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMustRegister_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustRegister should panic on a zero type id")
		}
	}()
	MustRegister[int](NewRegistry(), 0, &countingLoader[int]{})
}

func TestInitialize_DuplicateType(t *testing.T) {
	shared := NewRegistry()
	if _, err := Register[int](shared, intTypeID, &countingLoader[int]{}, WithName("first")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m := NewManager(WithRegistry(shared))
	if _, err := Register[int](m, intTypeID, &countingLoader[int]{}, WithName("second")); err != nil {
		t.Fatalf("Register into manager should defer duplicate detection: %v", err)
	}

	err := m.Initialize(10)
	if !errors.IsKind(err, errors.KindDuplicateType) {
		t.Fatalf("expected duplicate_type, got %v", err)
	}
	if !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "second") {
		t.Fatalf("error should name both registrations: %v", err)
	}
	if m.Initialized() {
		t.Fatal("manager must stay uninitialized after a duplicate")
	}
}

func TestInitialize_OrderIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	MustRegister[int](b, intTypeID, &countingLoader[int]{value: 1})
	MustRegister[float32](a, floatTypeID, &countingLoader[float32]{value: 2})

	for _, order := range [][]*Registry{{a, b}, {b, a}} {
		m := NewManager(WithRegistry(order[0]), WithRegistry(order[1]))
		if err := m.Initialize(4); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		types := m.Types()
		if len(types) != 2 || types[0].Name != "float32" || types[1].Name != "int" {
			t.Fatalf("unexpected type table %+v", types)
		}
	}
}

func TestManager_RegisterAfterInitialize(t *testing.T) {
	f := newFixture(t, 4)
	_, err := Register[int](f.mgr, guid.TypeFromString("late"), &countingLoader[int]{})
	if !errors.IsKind(err, errors.KindAlreadyInitialized) {
		t.Fatalf("expected already_initialized, got %v", err)
	}
	if err := f.mgr.Initialize(4); !errors.IsKind(err, errors.KindAlreadyInitialized) {
		t.Fatalf("second Initialize: expected already_initialized, got %v", err)
	}
}

func TestInitialize_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		if err := NewManager().Initialize(c); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Fatalf("capacity %d: expected invalid_input, got %v", c, err)
		}
	}
}

func TestManager_Registration(t *testing.T) {
	f := newFixture(t, 4)
	reg, ok := f.mgr.Registration(floatTypeID)
	if !ok {
		t.Fatal("float registration missing")
	}
	if reg.Name != "Floating Point Numbers" {
		t.Fatalf("Name = %q", reg.Name)
	}
	if _, ok := f.mgr.Registration(guid.TypeFromString("missing")); ok {
		t.Fatal("unexpected registration for unknown type")
	}
}
