package resource

import (
	"math/rand/v2"
	"testing"

	"github.com/wippyai/xresource/guid"
)

func TestScenario_MultipleTypes(t *testing.T) {
	f := newFixture(t, 16)
	ints := make([]TypedRef[int], 8)
	floats := make([]TypedRef[float32], 8)
	for i := range ints {
		ints[i].Assign(guid.NewInstance())
		floats[i].Assign(guid.NewInstance())
	}

	for round := 0; round < 100; round++ {
		for i := range ints {
			if v := mustGet(t, f, &ints[i]); *v != intMagic {
				t.Fatalf("round %d: int ref %d = %d", round, i, *v)
			}
			v, ok, err := f.floats.Get(f.mgr, &floats[i])
			if err != nil || !ok || *v != floatMagic {
				t.Fatalf("round %d: float ref %d = %v, %v, %v", round, i, v, ok, err)
			}
		}
		if n := f.mgr.Count(); n != 16 {
			t.Fatalf("round %d: Count = %d, want 16", round, n)
		}
		for i := range ints {
			_ = f.ints.Release(f.mgr, &ints[i])
			_ = f.floats.Release(f.mgr, &floats[i])
		}
		if n := f.mgr.Count(); n != 0 {
			t.Fatalf("round %d: Count = %d after release", round, n)
		}
	}

	if f.intL.corrupted != 0 || f.floatL.corrupted != 0 {
		t.Fatalf("corrupted destroys: int=%d float=%d", f.intL.corrupted, f.floatL.corrupted)
	}
	if f.intL.loads != f.intL.destroys || f.floatL.loads != f.floatL.destroys {
		t.Fatalf("unbalanced lifecycle: int %d/%d float %d/%d",
			f.intL.loads, f.intL.destroys, f.floatL.loads, f.floatL.destroys)
	}
}

func TestScenario_RandomReferences(t *testing.T) {
	const (
		identities = 12
		refsPerTyp = 48
		steps      = 20000
	)
	f := newFixture(t, 2*identities)
	rng := rand.New(rand.NewPCG(0x5eed, 0xc0ffee))

	intIDs := make([]guid.InstanceID, identities)
	floatIDs := make([]guid.InstanceID, identities)
	gen := guid.NewSeededGenerator(42)
	for i := range intIDs {
		intIDs[i] = gen.Instance()
		floatIDs[i] = gen.Instance()
	}

	ints := make([]TypedRef[int], refsPerTyp)
	floats := make([]TypedRef[float32], refsPerTyp)
	for i := range ints {
		ints[i].Assign(intIDs[rng.IntN(identities)])
		floats[i].Assign(floatIDs[rng.IntN(identities)])
	}

	for step := 0; step < steps; step++ {
		i, j := rng.IntN(refsPerTyp), rng.IntN(refsPerTyp)
		useInts := rng.IntN(2) == 0

		switch op := rng.IntN(4); {
		case op == 0 && useInts:
			if v := mustGet(t, f, &ints[i]); *v != intMagic {
				t.Fatalf("step %d: int data %d", step, *v)
			}
		case op == 0:
			v, ok, err := f.floats.Get(f.mgr, &floats[i])
			if err != nil || !ok || *v != floatMagic {
				t.Fatalf("step %d: float Get = %v, %v, %v", step, v, ok, err)
			}
		case op == 1 && useInts:
			want, err := f.ints.FullIdentity(f.mgr, &ints[i])
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			if err := f.ints.Release(f.mgr, &ints[i]); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			if got, _ := f.ints.FullIdentity(f.mgr, &ints[i]); got != want {
				t.Fatalf("step %d: identity after release = %v, want %v", step, got, want)
			}
		case op == 1:
			want, err := f.floats.FullIdentity(f.mgr, &floats[i])
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			if err := f.floats.Release(f.mgr, &floats[i]); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			if got, _ := f.floats.FullIdentity(f.mgr, &floats[i]); got != want {
				t.Fatalf("step %d: identity after release = %v, want %v", step, got, want)
			}
		case useInts:
			if err := f.ints.Clone(f.mgr, &ints[j], &ints[i]); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
		default:
			if err := f.floats.Clone(f.mgr, &floats[j], &floats[i]); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
		}

		if step%1000 == 0 {
			checkRefCounts(t, f, ints, floats)
		}
	}

	checkRefCounts(t, f, ints, floats)
	for i := range ints {
		_ = f.ints.Release(f.mgr, &ints[i])
		_ = f.floats.Release(f.mgr, &floats[i])
	}

	if n := f.mgr.Count(); n != 0 {
		t.Fatalf("Count = %d after releasing everything", n)
	}
	if f.intL.corrupted != 0 || f.floatL.corrupted != 0 {
		t.Fatal("destroy received corrupted data")
	}
	if f.intL.loads != f.intL.destroys || f.floatL.loads != f.floatL.destroys {
		t.Fatalf("unbalanced lifecycle: int %d/%d float %d/%d",
			f.intL.loads, f.intL.destroys, f.floatL.loads, f.floatL.destroys)
	}
	if err := f.mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// checkRefCounts verifies that every live instance's count equals the number
// of resolved references pointing at it.
func checkRefCounts(t *testing.T, f *fixture, ints []TypedRef[int], floats []TypedRef[float32]) {
	t.Helper()
	want := map[guid.Full]int{}
	for i := range ints {
		if ints[i].Resolved() {
			id, err := f.ints.FullIdentity(f.mgr, &ints[i])
			if err != nil {
				t.Fatal(err)
			}
			want[id]++
		}
		if floats[i].Resolved() {
			id, err := f.floats.FullIdentity(f.mgr, &floats[i])
			if err != nil {
				t.Fatal(err)
			}
			want[id]++
		}
	}
	if len(want) != f.mgr.Count() {
		t.Fatalf("%d distinct resolved identities, Count = %d", len(want), f.mgr.Count())
	}
	for id, n := range want {
		if got := f.mgr.RefCount(id); got != n {
			t.Fatalf("%v: RefCount = %d, want %d", id, got, n)
		}
	}
}
