package guid

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/zeebo/blake3"
)

// Tag is the bit every valid InstanceID carries.
const Tag = 1

// TypeID identifies a resource type. Zero is never a valid type.
type TypeID uint64

// InstanceID identifies one resource instance. Valid ids have the Tag bit set.
type InstanceID uint64

// Full is the identity that names a resource across all types.
type Full struct {
	Instance InstanceID
	Type     TypeID
}

// Valid reports whether the instance id is non-zero.
func (i InstanceID) Valid() bool { return i != 0 }

// Tagged reports whether the resolution tag bit is set.
func (i InstanceID) Tagged() bool { return i&Tag == Tag }

func (i InstanceID) String() string { return fmt.Sprintf("%016x", uint64(i)) }

func (t TypeID) String() string { return fmt.Sprintf("%016x", uint64(t)) }

// Valid reports whether both halves of the identity are usable.
func (f Full) Valid() bool { return f.Instance.Valid() && f.Instance.Tagged() && f.Type != 0 }

func (f Full) String() string { return f.Type.String() + ":" + f.Instance.String() }

// ParseInstance parses the 16 hex digit form produced by InstanceID.String.
func ParseInstance(s string) (InstanceID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse instance id %q: %w", s, err)
	}
	id := InstanceID(v)
	if !id.Tagged() {
		return 0, fmt.Errorf("instance id %q is missing the tag bit", s)
	}
	return id, nil
}

// Generator mints identities. The resource manager never calls it; hosts use
// it to build references.
type Generator interface {
	Instance() InstanceID
}

// NewGenerator returns a generator backed by the process-wide random source.
func NewGenerator() Generator { return randomGenerator{} }

// NewSeededGenerator returns a deterministic generator for tests and replays.
func NewSeededGenerator(seed uint64) Generator {
	return &seededGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type randomGenerator struct{}

func (randomGenerator) Instance() InstanceID { return InstanceID(rand.Uint64() | Tag) }

type seededGenerator struct {
	rng *rand.Rand
}

func (g *seededGenerator) Instance() InstanceID { return InstanceID(g.rng.Uint64() | Tag) }

// NewInstance returns a fresh random instance id.
func NewInstance() InstanceID { return InstanceID(rand.Uint64() | Tag) }

// InstanceFromString derives a stable instance id from s.
func InstanceFromString(s string) InstanceID {
	return InstanceID(hash64(s) | Tag)
}

// TypeFromString derives a stable type id from a type name.
func TypeFromString(name string) TypeID {
	h := hash64(name)
	if h == 0 {
		h = Tag
	}
	return TypeID(h)
}

func hash64(s string) uint64 {
	sum := blake3.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(sum[:8])
}
