// Package ids implements the slot allocator shared by every World table:
// a dense transient id valid only for this process, paired with a stable
// id that survives save/load. Grounded on
// _examples/original_source/server/util/stable_id_map (referenced from
// world/ops.rs as util::stable_id_map::NO_STABLE_ID) and on the teacher's
// arena-style tables in internal/world/world.go.
package ids

// TransientID — dense, process-local id. The slot index may be reused
// after removal.
type TransientID uint32

// StableID — persistent 64-bit id, assigned on first persistence and never
// reused. Zero is the sentinel meaning "not yet assigned".
type StableID uint64

// NoStableID is the sentinel stored in a freshly-inserted slot until
// AssignStable is called on it.
const NoStableID StableID = 0

type slot[T any] struct {
	obj    T
	occupied bool
	stable StableID
}

// StableMap is a slot table parameterized over the stored object type.
// It is not safe for concurrent use — callers (the World, the Scheduler)
// serialize access themselves, per spec.md §5's single-threaded model.
type StableMap[T any] struct {
	slots     []slot[T]
	freeList  []TransientID
	nextStable StableID
	// stableRev maps a stable id to the transient id currently holding it.
	// Remove deletes the entry, so transient_of returns None for a removed
	// object rather than a stale or reused transient id.
	stableRev map[StableID]TransientID
}

// NewStableMap creates an empty table.
func NewStableMap[T any]() *StableMap[T] {
	return &StableMap[T]{
		stableRev: make(map[StableID]TransientID),
		nextStable: 1,
	}
}

// Insert stores obj in a free slot (stable id starts as NoStableID) and
// returns its transient id. Only fails if the id space (uint32) is
// exhausted, which in practice never happens.
func (m *StableMap[T]) Insert(obj T) (TransientID, bool) {
	if n := len(m.freeList); n > 0 {
		tid := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		m.slots[tid] = slot[T]{obj: obj, occupied: true, stable: NoStableID}
		return tid, true
	}
	if len(m.slots) >= int(^uint32(0)) {
		return 0, false
	}
	tid := TransientID(len(m.slots))
	m.slots = append(m.slots, slot[T]{obj: obj, occupied: true, stable: NoStableID})
	return tid, true
}

// Remove consumes the slot, returning the removed object. If the slot had
// a stable id, its reverse-index entry is deleted (TransientOf then reports
// it absent), and the forward slot becomes free for reuse by a future Insert.
func (m *StableMap[T]) Remove(tid TransientID) (T, bool) {
	var zero T
	if !m.valid(tid) {
		return zero, false
	}
	s := m.slots[tid]
	m.slots[tid] = slot[T]{occupied: false}
	m.freeList = append(m.freeList, tid)
	if s.stable != NoStableID {
		// Mark the stable id as absent (no longer pointing at a live transient id).
		delete(m.stableRev, s.stable)
	}
	return s.obj, true
}

// Get returns a copy of the stored object.
func (m *StableMap[T]) Get(tid TransientID) (T, bool) {
	var zero T
	if !m.valid(tid) {
		return zero, false
	}
	return m.slots[tid].obj, true
}

// GetMut returns a pointer to the stored object for in-place mutation.
func (m *StableMap[T]) GetMut(tid TransientID) (*T, bool) {
	if !m.valid(tid) {
		return nil, false
	}
	return &m.slots[tid].obj, true
}

func (m *StableMap[T]) valid(tid TransientID) bool {
	return int(tid) < len(m.slots) && m.slots[tid].occupied
}

// AssignStable allocates the next monotone stable id for tid if it has
// none yet, and returns whichever stable id the slot ends up with
// (idempotent).
func (m *StableMap[T]) AssignStable(tid TransientID) (StableID, bool) {
	if !m.valid(tid) {
		return NoStableID, false
	}
	s := &m.slots[tid]
	if s.stable != NoStableID {
		return s.stable, true
	}
	sid := m.nextStable
	m.nextStable++
	s.stable = sid
	m.stableRev[sid] = tid
	return sid, true
}

// AssignStableValue forces a specific stable id onto a slot — used only by
// the save loader, which already knows the stable id from disk and must
// not invent a new one. The caller is responsible for keeping nextStable
// ahead of every value it restores this way.
func (m *StableMap[T]) AssignStableValue(tid TransientID, sid StableID) bool {
	if !m.valid(tid) || sid == NoStableID {
		return false
	}
	m.slots[tid].stable = sid
	m.stableRev[sid] = tid
	if sid >= m.nextStable {
		m.nextStable = sid + 1
	}
	return true
}

// StableOf returns the stable id assigned to tid, if any.
func (m *StableMap[T]) StableOf(tid TransientID) (StableID, bool) {
	if !m.valid(tid) {
		return NoStableID, false
	}
	s := m.slots[tid].stable
	if s == NoStableID {
		return NoStableID, false
	}
	return s, true
}

// TransientOf is the reverse lookup: stable id -> currently-live transient
// id, or (_, false) if the object bearing that stable id has been removed.
func (m *StableMap[T]) TransientOf(sid StableID) (TransientID, bool) {
	tid, ok := m.stableRev[sid]
	return tid, ok
}

// Each iterates occupied slots in ascending slot-index order — this
// determinism is relied on by save/load and by hook dispatch ordering
// (spec.md §4.1, §4.3). Stop early by returning false.
func (m *StableMap[T]) Each(f func(TransientID, *T) bool) {
	for i := range m.slots {
		if !m.slots[i].occupied {
			continue
		}
		if !f(TransientID(i), &m.slots[i].obj) {
			return
		}
	}
}

// Len returns the number of live (occupied) slots.
func (m *StableMap[T]) Len() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].occupied {
			n++
		}
	}
	return n
}
