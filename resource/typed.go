package resource

import (
	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
)

// ID returns the registered TypeID.
func (t *Type[T]) ID() guid.TypeID { return t.id }

// Name returns the registered display name.
func (t *Type[T]) Name() string { return t.name }

// Identity returns the full identity of instance id under this type.
func (t *Type[T]) Identity(id guid.InstanceID) guid.Full {
	return guid.Full{Instance: id, Type: t.id}
}

// Get resolves ref. See Manager.Get.
func (t *Type[T]) Get(m *Manager, ref *TypedRef[T]) (*T, bool, error) {
	if ref.resolved() {
		return (*T)(ref.ptr), true, nil
	}
	info, ok, err := m.resolve(&ref.cell, t.id)
	if !ok || err != nil {
		return nil, ok, err
	}
	if _, match := info.data.(*T); !match {
		id, data := info.id, info.data
		if rerr := m.release(&ref.cell, t.id); rerr != nil {
			return nil, false, rerr
		}
		return nil, false, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Type(t.name).
			Identity(id.String()).
			Detail("registered loader produces %T", data).
			Build()
	}
	return (*T)(ref.ptr), true, nil
}

// Release gives up ref's share. See Manager.Release.
func (t *Type[T]) Release(m *Manager, ref *TypedRef[T]) error {
	return m.release(&ref.cell, t.id)
}

// Clone makes dst share src's state. See Manager.Clone.
func (t *Type[T]) Clone(m *Manager, dst, src *TypedRef[T]) error {
	_, err := m.clone(&dst.cell, t.id, &src.cell, t.id)
	return err
}

// FullIdentity returns the identity ref names. See Manager.FullIdentity.
func (t *Type[T]) FullIdentity(m *Manager, ref *TypedRef[T]) (guid.Full, error) {
	return m.identity(&ref.cell, t.id)
}

// Erase clones a typed reference into a type-erased one, with the same
// ownership rules as Clone.
func (t *Type[T]) Erase(m *Manager, dst *Ref, src *TypedRef[T]) error {
	info, err := m.clone(&dst.cell, dst.typ, &src.cell, t.id)
	if err != nil {
		return err
	}
	dst.typ = t.id
	dst.data = nil
	if info != nil {
		dst.data = info.data
	}
	return nil
}
