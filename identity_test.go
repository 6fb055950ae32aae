package cell

import "testing"

type snapshot struct {
	Ducks []duck
	Count int
	Tags  map[string]string
}

func TestSameState_Slices(t *testing.T) {
	a := make([]int, 2, 4)
	grown := append(a, 1)
	copied := append([]int(nil), a...)

	if !sameState(a, a) {
		t.Error("expected a slice to be the same as itself")
	}
	if sameState(a, grown) {
		t.Error("expected a longer view of the same array to differ")
	}
	if sameState(a, copied) {
		t.Error("expected a copy to differ")
	}
	if !sameState[[]int](nil, nil) {
		t.Error("expected nil slices to be the same")
	}
}

func TestSameState_Pointers(t *testing.T) {
	x, y := 1, 1
	if !sameState(&x, &x) {
		t.Error("expected the same pointer to be the same")
	}
	if sameState(&x, &y) {
		t.Error("expected distinct pointers to differ")
	}
}

func TestSameState_Maps(t *testing.T) {
	m := map[string]int{"a": 1}
	other := map[string]int{"a": 1}
	if !sameState(m, m) {
		t.Error("expected the same map to be the same")
	}
	if sameState(m, other) {
		t.Error("expected equal but distinct maps to differ")
	}
}

func TestSameState_Scalars(t *testing.T) {
	if !sameState(3, 3) {
		t.Error("expected equal ints to be the same")
	}
	if sameState(3, 4) {
		t.Error("expected different ints to differ")
	}
	if !sameState("duck", "duck") {
		t.Error("expected equal strings to be the same")
	}
}

func TestSameState_Structs(t *testing.T) {
	ducks := []duck{{Name: "Daffy"}}
	tags := map[string]string{}
	s := snapshot{Ducks: ducks, Count: 1, Tags: tags}

	if !sameState(s, snapshot{Ducks: ducks, Count: 1, Tags: tags}) {
		t.Error("expected structs sharing references to be the same")
	}
	if sameState(s, snapshot{Ducks: append([]duck(nil), ducks...), Count: 1, Tags: tags}) {
		t.Error("expected a struct with a copied slice to differ")
	}
	if sameState(s, snapshot{Ducks: ducks, Count: 2, Tags: tags}) {
		t.Error("expected a struct with a different count to differ")
	}
}

func TestSameState_Interfaces(t *testing.T) {
	ducks := []duck{{Name: "Daffy"}}

	if !sameState[any](nil, nil) {
		t.Error("expected nil interfaces to be the same")
	}
	if sameState[any](nil, 1) {
		t.Error("expected nil and non-nil to differ")
	}
	if sameState[any](1, "1") {
		t.Error("expected different dynamic types to differ")
	}
	if !sameState[any](ducks, ducks) {
		t.Error("expected the same slice behind an interface to be the same")
	}
}

func TestSameState_Arrays(t *testing.T) {
	p := &duck{}
	if !sameState([2]*duck{p, nil}, [2]*duck{p, nil}) {
		t.Error("expected arrays of the same pointers to be the same")
	}
	if sameState([2]*duck{p, nil}, [2]*duck{&duck{}, nil}) {
		t.Error("expected arrays of distinct pointers to differ")
	}
}

func TestSameState_EmptySlicesHaveNoIdentity(t *testing.T) {
	a := make([]int, 0)
	b := make([]int, 0)

	if !sameState(a, b) {
		t.Error("expected distinct zero-capacity slices to compare as the same")
	}
	if sameState(a, make([]int, 0, 1)) {
		t.Error("expected an allocated empty slice to differ")
	}
}
