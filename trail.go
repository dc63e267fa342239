package prune

// A Trail is the undo log behind every piece of reversible state in a
// solver. Reversible cells record their previous value on the trail the first
// time they change after a checkpoint; restoring a checkpoint replays those
// records in reverse order.
type Trail struct {
	entries []trailEntry
	levels  []int // len(entries) at each saved level

	// version is bumped on every save and restore. A cell whose stamp
	// differs from version has not been recorded at the current level yet.
	version int64

	onRestore []func()
}

type trailEntry interface {
	restore()
}

// A Mark identifies a checkpoint returned by Trail.Mark.
type Mark int

// NewTrail returns an empty trail at level 0.
func NewTrail() *Trail {
	return &Trail{}
}

// Level reports the number of saved levels.
func (t *Trail) Level() int { return len(t.levels) }

// SaveState opens a new level.
func (t *Trail) SaveState() {
	t.levels = append(t.levels, len(t.entries))
	t.version++
}

// RestoreState undoes every mutation made since the last SaveState and closes
// that level.
func (t *Trail) RestoreState() {
	n := len(t.levels) - 1
	if n < 0 {
		panic("prune: RestoreState called without a saved level")
	}
	size := t.levels[n]
	for i := len(t.entries) - 1; i >= size; i-- {
		t.entries[i].restore()
		t.entries[i] = nil
	}
	t.entries = t.entries[:size]
	t.levels = t.levels[:n]
	t.version++
	for _, f := range t.onRestore {
		f()
	}
}

// RestoreStateUntil restores levels until Level() == level.
func (t *Trail) RestoreStateUntil(level int) {
	for len(t.levels) > level {
		t.RestoreState()
	}
}

// Mark opens a new level and returns a checkpoint for the state before it.
func (t *Trail) Mark() Mark {
	m := Mark(len(t.levels))
	t.SaveState()
	return m
}

// UndoTo restores all reversible cells changed since m was taken.
// Calling it again with the same mark is a no-op.
func (t *Trail) UndoTo(m Mark) {
	t.RestoreStateUntil(int(m))
}

// WithNewState runs f inside a fresh level and restores it afterwards,
// whatever f returns.
func (t *Trail) WithNewState(f func() error) error {
	level := t.Level()
	t.SaveState()
	defer t.RestoreStateUntil(level)
	return f()
}

// OnRestore registers f to run after every RestoreState.
func (t *Trail) OnRestore(f func()) {
	t.onRestore = append(t.onRestore, f)
}

func (t *Trail) push(e trailEntry) {
	t.entries = append(t.entries, e)
}

// StateInt is a reversible integer.
type StateInt struct {
	t     *Trail
	v     int
	stamp int64
}

// NewStateInt returns a reversible integer on t with initial value v.
func (t *Trail) NewStateInt(v int) *StateInt {
	return &StateInt{t: t, v: v, stamp: -1}
}

type intEntry struct {
	s   *StateInt
	old int
}

func (e intEntry) restore() { e.s.v = e.old }

func (s *StateInt) Value() int { return s.v }

// SetValue sets the value and returns it.
func (s *StateInt) SetValue(v int) int {
	if v != s.v {
		if s.stamp != s.t.version {
			s.t.push(intEntry{s, s.v})
			s.stamp = s.t.version
		}
		s.v = v
	}
	return v
}

func (s *StateInt) Increment() int { return s.SetValue(s.v + 1) }
func (s *StateInt) Decrement() int { return s.SetValue(s.v - 1) }

// StateBool is a reversible boolean.
type StateBool struct {
	t     *Trail
	v     bool
	stamp int64
}

// NewStateBool returns a reversible boolean on t with initial value v.
func (t *Trail) NewStateBool(v bool) *StateBool {
	return &StateBool{t: t, v: v, stamp: -1}
}

type boolEntry struct {
	s   *StateBool
	old bool
}

func (e boolEntry) restore() { e.s.v = e.old }

func (s *StateBool) Value() bool { return s.v }

func (s *StateBool) SetValue(v bool) {
	if v == s.v {
		return
	}
	if s.stamp != s.t.version {
		s.t.push(boolEntry{s, s.v})
		s.stamp = s.t.version
	}
	s.v = v
}

// StateStack is a stack whose height is reversible. Elements pushed after a
// checkpoint disappear when the checkpoint is restored.
type StateStack[T any] struct {
	size  *StateInt
	elems []T
}

// NewStateStack returns an empty reversible stack on t.
func NewStateStack[T any](t *Trail) *StateStack[T] {
	return &StateStack[T]{size: t.NewStateInt(0)}
}

func (s *StateStack[T]) Push(x T) {
	n := s.size.Value()
	if len(s.elems) > n {
		s.elems[n] = x
	} else {
		s.elems = append(s.elems, x)
	}
	s.size.Increment()
}

func (s *StateStack[T]) Size() int { return s.size.Value() }

func (s *StateStack[T]) Get(i int) T { return s.elems[i] }
