package lookup

import (
	"fmt"
	"strings"
)

// Reserved indices and limits.
const (
	// NotFound is returned by lookups for unregistered names or values.
	NotFound = -1

	// Absent is the value index of a tag that is not set.
	Absent = 0

	// Unknown is the value index of a value outside the vocabulary.
	Unknown = 1

	// Yes is the value index a boolean tag carries when set.
	Yes = 2

	// MaxDomainSize caps the number of variants per name, reserved indices
	// included.
	MaxDomainSize = 500
)

// IndexVector holds one value index per registered name, in registration
// order. Slot 0 is the direction flag of way data (0 or Yes).
type IndexVector []int

// Registry is the dynamic vocabulary of tag names and values.
type Registry struct {
	numbers     map[string]int
	names       []string
	values      [][]*Value
	histograms  [][]int
	lastCreated []*Value

	current IndexVector
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{numbers: make(map[string]int)}
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Name returns the name registered at nameIdx.
func (r *Registry) Name(nameIdx int) string {
	return r.names[nameIdx]
}

// NameIndex returns the index of name, or NotFound.
func (r *Registry) NameIndex(name string) int {
	if num, ok := r.numbers[name]; ok {
		return num
	}
	return NotFound
}

// DomainSize returns the number of variants of the name at nameIdx, reserved
// indices included, or NotFound.
func (r *Registry) DomainSize(nameIdx int) int {
	if nameIdx < 0 || nameIdx >= len(r.values) {
		return NotFound
	}
	return len(r.values[nameIdx])
}

// Value returns the variant at valueIdx of the name at nameIdx.
func (r *Registry) Value(nameIdx, valueIdx int) *Value {
	return r.values[nameIdx][valueIdx]
}

// ValueIndex returns the index of the canonical value string within the
// domain of nameIdx, or NotFound. Aliases are not consulted.
func (r *Registry) ValueIndex(nameIdx int, value string) int {
	if nameIdx < 0 || nameIdx >= len(r.values) {
		return NotFound
	}
	for i, v := range r.values[nameIdx] {
		if v.value == value {
			return i
		}
	}
	return NotFound
}

// Register records value for name in the current vector and returns its
// index. Unknown names and values are created on the fly; once a domain holds
// MaxDomainSize variants, further new values are recorded as Unknown. A frozen
// registry keeps its name set: an unknown name is ignored and NotFound
// returned, so index vectors sized at freeze time stay valid.
//
// The returned *Value is non-nil only when a new variant was created, so the
// caller can attach aliases to it.
func (r *Registry) Register(name, value string) (int, *Value) {
	num, ok := r.numbers[name]
	if !ok {
		if r.frozen {
			return NotFound, nil
		}
		num = r.addName(name)
	}

	i := r.find(num, value)
	var created *Value
	if i == NotFound {
		if len(r.values[num]) >= MaxDomainSize {
			i = Unknown
		} else {
			created = newValue(value)
			i = r.appendValue(num, created)
		}
	}

	r.histograms[num][i]++
	r.current[num] = i
	return i, created
}

// RegisterInto records value for name in the caller's vector without ever
// growing the registry. An unknown name leaves vec untouched and returns
// Unknown; an unknown value is recorded and returned as Unknown.
func (r *Registry) RegisterInto(vec IndexVector, name, value string) int {
	num, ok := r.numbers[name]
	if !ok {
		return Unknown
	}

	i := r.find(num, value)
	if i == NotFound {
		vec[num] = Unknown
		return Unknown
	}

	r.histograms[num][i]++
	vec[num] = i
	return i
}

// RegisterAlias attaches alias to the most recently created value of name.
// It reports false when name has no created value yet.
func (r *Registry) RegisterAlias(name, alias string) bool {
	num, ok := r.numbers[name]
	if !ok || r.lastCreated[num] == nil {
		return false
	}
	r.lastCreated[num].AddAlias(alias)
	return true
}

// SetIndex assigns a value index to name in the current vector. Unknown names
// are ignored.
func (r *Registry) SetIndex(name string, index int) error {
	num, ok := r.numbers[name]
	if !ok {
		return nil
	}
	if n := len(r.values[num]); index < 0 || index >= n {
		return fmt.Errorf("%w: name %s: %d not in [0,%d)", ErrIndexOutOfRange, name, index, n)
	}
	r.current[num] = index
	return nil
}

// SetSmallest assigns index to name unless a more specific index in
// [Yes, index) was already recorded. An index past the domain is clamped to
// the last variant.
func (r *Registry) SetSmallest(name string, index int) error {
	num, ok := r.numbers[name]
	if !ok {
		return nil
	}
	if old := r.current[num]; old > Unknown && old < index {
		return nil
	}
	if n := len(r.values[num]); index >= n {
		index = n - 1
	}
	if index < 0 {
		return fmt.Errorf("%w: name %s: %d", ErrIndexOutOfRange, name, index)
	}
	r.current[num] = index
	return nil
}

// Boolean reports whether name holds Yes in the current vector.
func (r *Registry) Boolean(name string) bool {
	num, ok := r.numbers[name]
	return ok && r.current[num] == Yes
}

// Current returns the registry's own vector. It is reallocated when names are
// added.
func (r *Registry) Current() IndexVector {
	return r.current
}

// ResetCurrent clears the current vector for the next element.
func (r *Registry) ResetCurrent() {
	clear(r.current)
}

// Freeze marks the end of metadata loading.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// NewIndexVector returns a zeroed vector sized to the registry, or nil when
// the registry is not frozen yet.
func (r *Registry) NewIndexVector() IndexVector {
	if !r.frozen {
		return nil
	}
	return make(IndexVector, len(r.names))
}

// Describe renders the non-empty entries of vec as " name=value" pairs.
func (r *Registry) Describe(vec IndexVector) string {
	var sb strings.Builder
	for num := 0; num < len(r.names) && num < len(vec); num++ {
		i := vec[num]
		if i < 0 || i >= len(r.values[num]) {
			continue
		}
		if v := r.values[num][i].value; v != "" {
			sb.WriteString(" ")
			sb.WriteString(r.names[num])
			sb.WriteString("=")
			sb.WriteString(v)
		}
	}
	return sb.String()
}

func (r *Registry) addName(name string) int {
	num := len(r.names)
	r.numbers[name] = num
	r.names = append(r.names, name)
	r.values = append(r.values, []*Value{newValue(""), newValue("unknown")})
	r.histograms = append(r.histograms, make([]int, 2))
	r.lastCreated = append(r.lastCreated, nil)
	r.current = append(r.current, Absent)
	return num
}

func (r *Registry) appendValue(num int, v *Value) int {
	r.values[num] = append(r.values[num], v)
	r.histograms[num] = append(r.histograms[num], 0)
	r.lastCreated[num] = v
	return len(r.values[num]) - 1
}

func (r *Registry) find(num int, value string) int {
	for i, v := range r.values[num] {
		if v.Matches(value) {
			return i
		}
	}
	return NotFound
}
