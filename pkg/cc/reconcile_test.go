package cc

import "testing"

func ptr[T any](v T) *T { return &v }

func TestReconcile(t *testing.T) {
	old := map[int]*string{1: ptr("A"), 2: ptr("B")}

	got := Reconcile(old, []int{2, 3})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if _, ok := got[1]; ok {
		t.Error("key 1 should be dropped")
	}
	if v, ok := got[2]; !ok || v == nil || *v != "B" {
		t.Errorf("key 2 = %v, want B", v)
	}
	if v, ok := got[3]; !ok || v != nil {
		t.Errorf("key 3 = %v, want present and unknown", v)
	}

	if len(old) != 2 || *old[1] != "A" {
		t.Error("old map was modified")
	}
}

func TestReconcileScenario(t *testing.T) {
	const (
		typeA = 0x01
		typeB = 0x02
		typeC = 0x03
	)

	state := Reconcile[uint8, float64](nil, []uint8{typeA, typeB})
	state[typeA] = ptr(21.5)

	state = Reconcile(state, []uint8{typeB, typeC})

	if _, ok := state[typeA]; ok {
		t.Error("A should be absent")
	}
	if state[typeB] != nil || state[typeC] != nil {
		t.Errorf("B and C should be unknown: %v", state)
	}
	if len(state) != 2 {
		t.Errorf("len = %d", len(state))
	}
}

func TestReconcileEmpty(t *testing.T) {
	got := Reconcile(map[int]*int{1: ptr(1)}, nil)
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
