package ids

import "testing"

func TestInsertGetRemove(t *testing.T) {
	m := NewStableMap[string]()

	tid, ok := m.Insert("alice")
	if !ok {
		t.Fatal("insert failed")
	}

	got, ok := m.Get(tid)
	if !ok || got != "alice" {
		t.Fatalf("get: got %q, ok=%v", got, ok)
	}

	removed, ok := m.Remove(tid)
	if !ok || removed != "alice" {
		t.Fatalf("remove: got %q, ok=%v", removed, ok)
	}

	if _, ok := m.Get(tid); ok {
		t.Fatal("expected removed slot to be invalid")
	}
}

func TestSlotReuseDoesNotReuseStableId(t *testing.T) {
	m := NewStableMap[int]()

	tid1, _ := m.Insert(1)
	sid1, _ := m.AssignStable(tid1)
	m.Remove(tid1)

	tid2, _ := m.Insert(2)
	if tid2 != tid1 {
		t.Fatalf("expected slot reuse: tid1=%d tid2=%d", tid1, tid2)
	}

	sid2, _ := m.AssignStable(tid2)
	if sid2 == sid1 {
		t.Fatalf("stable ids must never be reused: got %d twice", sid1)
	}
}

// P4: transient_of(assign_stable(t)) == Some(t) while t is live; == None after removal.
func TestTransientOfRoundTrip(t *testing.T) {
	m := NewStableMap[int]()

	tid, _ := m.Insert(42)
	sid, _ := m.AssignStable(tid)

	got, ok := m.TransientOf(sid)
	if !ok || got != tid {
		t.Fatalf("transient_of: got %d, ok=%v, want %d", got, ok, tid)
	}

	m.Remove(tid)

	if _, ok := m.TransientOf(sid); ok {
		t.Fatal("expected transient_of to return None after removal")
	}
}

func TestAssignStableIdempotent(t *testing.T) {
	m := NewStableMap[int]()
	tid, _ := m.Insert(1)

	sid1, _ := m.AssignStable(tid)
	sid2, _ := m.AssignStable(tid)

	if sid1 != sid2 {
		t.Fatalf("assign_stable must be idempotent: %d != %d", sid1, sid2)
	}
}

func TestEachDeterministicOrder(t *testing.T) {
	m := NewStableMap[int]()
	var tids []TransientID
	for i := 0; i < 5; i++ {
		tid, _ := m.Insert(i)
		tids = append(tids, tid)
	}
	m.Remove(tids[1])

	tid, _ := m.Insert(100) // reuses slot 1
	_ = tid

	var seen []TransientID
	m.Each(func(tid TransientID, v *int) bool {
		seen = append(seen, tid)
		return true
	})

	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("Each must iterate in ascending slot order, got %v", seen)
		}
	}
}
