package guid

import "testing"

func TestInstanceTagged(t *testing.T) {
	gen := NewGenerator()
	for i := 0; i < 1000; i++ {
		id := gen.Instance()
		if !id.Valid() || !id.Tagged() {
			t.Fatalf("instance %s is not a valid tagged id", id)
		}
	}
	if id := NewInstance(); !id.Tagged() {
		t.Fatalf("NewInstance returned untagged id %s", id)
	}
}

func TestFromStringStable(t *testing.T) {
	a := InstanceFromString("textures/hero.png")
	b := InstanceFromString("textures/hero.png")
	if a != b {
		t.Fatalf("InstanceFromString not stable: %s != %s", a, b)
	}
	if !a.Tagged() {
		t.Fatal("string derived instance must carry the tag bit")
	}
	if InstanceFromString("a") == InstanceFromString("b") {
		t.Fatal("different strings produced the same instance id")
	}
	if TypeFromString("texture") == TypeFromString("mesh") {
		t.Fatal("different type names produced the same type id")
	}
	if TypeFromString("texture") == 0 {
		t.Fatal("type id must not be zero")
	}
}

func TestSeededGenerator(t *testing.T) {
	g1 := NewSeededGenerator(42)
	g2 := NewSeededGenerator(42)
	for i := 0; i < 10; i++ {
		if a, b := g1.Instance(), g2.Instance(); a != b {
			t.Fatalf("seeded generators diverged at %d: %s != %s", i, a, b)
		}
	}
}

func TestFullValid(t *testing.T) {
	tests := []struct {
		name string
		id   Full
		want bool
	}{
		{"zero", Full{}, false},
		{"missing type", Full{Instance: 3}, false},
		{"untagged instance", Full{Instance: 2, Type: 7}, false},
		{"valid", Full{Instance: 3, Type: 7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInstance(t *testing.T) {
	id := InstanceFromString("level1")
	got, err := ParseInstance(id.String())
	if err != nil {
		t.Fatalf("ParseInstance: %v", err)
	}
	if got != id {
		t.Fatalf("ParseInstance = %s, want %s", got, id)
	}
	if _, err := ParseInstance("0000000000000002"); err == nil {
		t.Fatal("expected error for untagged id")
	}
	if _, err := ParseInstance("zz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}
