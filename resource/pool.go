package resource

import (
	"sort"
	"unsafe"

	"github.com/wippyai/xresource/guid"
)

// noSlot terminates the free list.
const noSlot int32 = -1

// instanceInfo is the manager's record for one live instance. Free slots
// are chained through next.
type instanceInfo struct {
	data any
	ptr  unsafe.Pointer
	id   guid.Full
	seq  uint64 // load order
	refs int32
	next int32
}

// pool is a fixed-capacity arena of instance records with an intrusive
// free list. alloc and free are O(1) and never allocate.
type pool struct {
	slots []instanceInfo
	head  int32
	live  int
}

func newPool(capacity int) *pool {
	p := &pool{slots: make([]instanceInfo, capacity)}
	for i := range p.slots {
		p.slots[i].next = int32(i + 1)
	}
	p.slots[capacity-1].next = noSlot
	return p
}

// alloc pops the head of the free list.
func (p *pool) alloc() (int32, bool) {
	idx := p.head
	if idx == noSlot {
		return noSlot, false
	}
	s := &p.slots[idx]
	p.head = s.next
	s.next = noSlot
	p.live++
	return idx, true
}

// free clears the slot and pushes it back onto the free list.
func (p *pool) free(idx int32) {
	p.slots[idx] = instanceInfo{next: p.head}
	p.head = idx
	p.live--
}

func (p *pool) at(idx int32) *instanceInfo { return &p.slots[idx] }

func (p *pool) capacity() int { return len(p.slots) }

func (p *pool) available() int { return len(p.slots) - p.live }

// newestFirst returns the live slots ordered by descending load sequence.
func (p *pool) newestFirst() []int32 {
	out := make([]int32, 0, p.live)
	for i := range p.slots {
		if p.slots[i].refs > 0 {
			out = append(out, int32(i))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return p.slots[out[a]].seq > p.slots[out[b]].seq
	})
	return out
}
