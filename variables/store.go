package variables

// NotFound is returned by Lookup for undeclared names.
const NotFound = -1

// Store maps variable names to slots and holds the slot values.
//
// Out-of-range slot indices panic: indices come from Declare and a bad one is
// a programming error.
type Store struct {
	numbers     map[string]int
	data        []float32
	minWriteIdx int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{numbers: make(map[string]int)}
}

// NewStoreFrom creates a store that continues from a global-pass snapshot.
// Slots [0, snapshot.Len()) keep the snapshot's names and values and
// MinWriteIdx is set to snapshot.Len(). A nil snapshot yields an empty store.
func NewStoreFrom(snapshot *Snapshot) *Store {
	s := NewStore()
	if snapshot == nil {
		return s
	}
	for name, idx := range snapshot.numbers {
		s.numbers[name] = idx
	}
	s.data = append(s.data, snapshot.values...)
	s.minWriteIdx = len(snapshot.values)
	return s
}

// Declare returns the slot of name, appending a zeroed slot on first use.
func (s *Store) Declare(name string) int {
	if idx, ok := s.numbers[name]; ok {
		return idx
	}
	idx := len(s.data)
	s.numbers[name] = idx
	s.data = append(s.data, 0)
	return idx
}

// Lookup returns the slot of name, or NotFound.
func (s *Store) Lookup(name string) int {
	if idx, ok := s.numbers[name]; ok {
		return idx
	}
	return NotFound
}

// Get returns the value of slot idx.
func (s *Store) Get(idx int) float32 {
	return s.data[idx]
}

// Set assigns the value of slot idx and returns it.
func (s *Store) Set(idx int, value float32) float32 {
	s.data[idx] = value
	return value
}

// ValueOf returns the value of name, or def when it is undeclared.
func (s *Store) ValueOf(name string, def float32) float32 {
	if idx, ok := s.numbers[name]; ok {
		return s.data[idx]
	}
	return def
}

// Len returns the number of declared slots.
func (s *Store) Len() int {
	return len(s.data)
}

// MinWriteIdx returns the first slot owned by the current context. Slots below
// it hold global-pass values.
func (s *Store) MinWriteIdx() int {
	return s.minWriteIdx
}

// Snapshot captures names and values for the next compilation pass.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		numbers: make(map[string]int, len(s.numbers)),
		values:  make([]float32, len(s.data)),
	}
	for name, idx := range s.numbers {
		snap.numbers[name] = idx
	}
	copy(snap.values, s.data)
	return snap
}

// Snapshot is an immutable copy of a store after the global pass.
type Snapshot struct {
	numbers map[string]int
	values  []float32
}

// Len returns the number of captured slots.
func (s *Snapshot) Len() int {
	return len(s.values)
}

// ValueOf returns the captured value of name, or def.
func (s *Snapshot) ValueOf(name string, def float32) float32 {
	if idx, ok := s.numbers[name]; ok {
		return s.values[idx]
	}
	return def
}
