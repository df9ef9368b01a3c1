package resource

import (
	"unsafe"

	"github.com/wippyai/xresource/guid"
)

// noCopy makes go vet's copylocks check reject by-value copies of references.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// cell is the storage shared by Ref and TypedRef. While unresolved, word
// holds the InstanceID (tag bit set). Resolving clears word and stores the
// data pointer, so the tag bit alone tells the two states apart.
type cell struct {
	word guid.InstanceID
	ptr  unsafe.Pointer
}

func (c *cell) resolved() bool { return c.word&guid.Tag == 0 && c.ptr != nil }

func (c *cell) valid() bool { return c.word.Valid() || c.resolved() }

func (c *cell) resolve(p unsafe.Pointer) {
	c.word = 0
	c.ptr = p
}

func (c *cell) unresolve(id guid.InstanceID) {
	c.word = id
	c.ptr = nil
}

// Ref is a type-erased reference. It carries its TypeID explicitly so the
// manager can dispatch to the right loader.
type Ref struct {
	_ noCopy
	cell
	typ  guid.TypeID
	data any
}

// NewRef returns an unresolved reference to id.
func NewRef(id guid.Full) Ref {
	return Ref{cell: cell{word: id.Instance}, typ: id.Type}
}

// Resolved reports whether the reference currently holds data.
func (r *Ref) Resolved() bool { return r.resolved() }

// Valid reports whether the reference names anything at all.
func (r *Ref) Valid() bool { return r.valid() }

// TypeID returns the resource type; it is known in both states.
func (r *Ref) TypeID() guid.TypeID { return r.typ }

// Identity returns the stored identity of an unresolved reference. Resolved
// references need Manager.FullIdentity.
func (r *Ref) Identity() (guid.Full, bool) {
	if r.resolved() {
		return guid.Full{}, false
	}
	return guid.Full{Instance: r.word, Type: r.typ}, true
}

// Data returns the resolved data, or nil while unresolved.
func (r *Ref) Data() any {
	if !r.resolved() {
		return nil
	}
	return r.data
}

// Assign points an unresolved reference at a new identity. A resolved
// reference must be released first.
func (r *Ref) Assign(id guid.Full) bool {
	if r.resolved() {
		return false
	}
	r.word = id.Instance
	r.typ = id.Type
	r.data = nil
	return true
}

func (r *Ref) String() string {
	if r.resolved() {
		return "resolved(" + r.typ.String() + ")"
	}
	return guid.Full{Instance: r.word, Type: r.typ}.String()
}

// TypedRef is a reference whose data type is fixed at compile time. The
// TypeID is not stored; it comes from the Type[T] the reference is used with.
type TypedRef[T any] struct {
	_ noCopy
	cell
}

// NewTypedRef returns an unresolved typed reference to instance id.
func NewTypedRef[T any](id guid.InstanceID) TypedRef[T] {
	return TypedRef[T]{cell: cell{word: id}}
}

// Resolved reports whether the reference currently holds data.
func (r *TypedRef[T]) Resolved() bool { return r.resolved() }

// Valid reports whether the reference names anything at all.
func (r *TypedRef[T]) Valid() bool { return r.valid() }

// Instance returns the stored instance id of an unresolved reference.
func (r *TypedRef[T]) Instance() (guid.InstanceID, bool) {
	if r.resolved() {
		return 0, false
	}
	return r.word, true
}

// Data returns the resolved data, or nil while unresolved.
func (r *TypedRef[T]) Data() *T {
	if !r.resolved() {
		return nil
	}
	return (*T)(r.ptr)
}

// Assign points an unresolved reference at a new instance.
func (r *TypedRef[T]) Assign(id guid.InstanceID) bool {
	if r.resolved() {
		return false
	}
	r.word = id
	return true
}
