package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/jonwraymond/routecost/lookup"
)

// newRegistry builds a registry whose name i has sizes[i]-2 concrete values.
func newRegistry(t testing.TB, sizes ...int) *lookup.Registry {
	t.Helper()
	r := lookup.NewRegistry()
	for num, size := range sizes {
		name := fmt.Sprintf("n%d", num)
		for v := 2; v < size; v++ {
			r.Register(name, fmt.Sprintf("v%d", v))
		}
		if size == 2 {
			r.Register(name, "")
		}
	}
	r.ResetCurrent()
	r.Freeze()
	if r.Len() != len(sizes) {
		t.Fatalf("registry has %d names, want %d", r.Len(), len(sizes))
	}
	return r
}

func highwayRegistry(t testing.TB) *lookup.Registry {
	t.Helper()
	r := lookup.NewRegistry()
	r.Register(lookup.ReverseDirection, "yes")
	r.Register("surface", "asphalt")
	r.Register("highway", "primary")
	r.Register("highway", "secondary")
	r.ResetCurrent()
	r.Freeze()
	return r
}

// roundTrip encodes vec and decodes it back into a fresh vector.
func roundTrip(t testing.TB, c *Codec, r *lookup.Registry, vec lookup.IndexVector) ([]byte, lookup.IndexVector) {
	t.Helper()
	ab, err := c.Encode(vec)
	if err != nil {
		t.Fatalf("Encode(%v) error = %v", vec, err)
	}
	got := r.NewIndexVector()
	if err := c.Decode(got, false, ab); err != nil {
		t.Fatalf("Decode(%x) error = %v", ab, err)
	}
	return ab, got
}

func TestVarLength_HighwayExample(t *testing.T) {
	r := highwayRegistry(t)
	c := New(r, VarLength)

	ab, got := roundTrip(t, c, r, lookup.IndexVector{0, 0, 3})
	if !bytes.Equal(ab, []byte{0xAC}) {
		t.Errorf("Encode() = %x, want ac", ab)
	}
	if !slices.Equal(got, lookup.IndexVector{0, 0, 3}) {
		t.Errorf("Decode() = %v, want [0 0 3]", got)
	}

	ab, err := c.Encode(lookup.IndexVector{0, 0, 0})
	if err != nil || ab != nil {
		t.Errorf("Encode(empty) = (%x, %v), want (nil, nil)", ab, err)
	}
}

func TestVarLength_DirectionOnlyIsAbsent(t *testing.T) {
	c := New(highwayRegistry(t), VarLength)
	ab, err := c.Encode(lookup.IndexVector{2, 0, 0})
	if err != nil || ab != nil {
		t.Errorf("Encode(direction only) = (%x, %v), want (nil, nil)", ab, err)
	}
}

func TestEncode_EmptyRegistry(t *testing.T) {
	for _, format := range []Format{VarLength, Fixed} {
		t.Run(format.String(), func(t *testing.T) {
			r := lookup.NewRegistry()
			r.Freeze()
			c := New(r, format)

			ab, err := c.Encode(r.NewIndexVector())
			if err != nil || ab != nil {
				t.Errorf("Encode() = (%x, %v), want (nil, nil)", ab, err)
			}
		})
	}
}

func TestVarLength_RoundTripRandom(t *testing.T) {
	sizes := []int{3, 2, 4, 12, 30, 500, 3, 9, 10, 2, 64}
	r := newRegistry(t, sizes...)
	c := New(r, VarLength)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		vec := r.NewIndexVector()
		vec[0] = []int{0, 2}[rng.Intn(2)]
		for num := 1; num < len(vec); num++ {
			if rng.Intn(3) == 0 {
				continue
			}
			vec[num] = rng.Intn(sizes[num])
		}

		ab, got := roundTrip(t, c, r, vec)
		if ab == nil {
			if want := r.NewIndexVector(); !slices.Equal(got, want) {
				t.Fatalf("absent decoded to %v, want %v", got, want)
			}
			continue
		}
		if !slices.Equal(got, vec) {
			t.Fatalf("round trip %v -> %x -> %v", vec, ab, got)
		}
	}
}

func TestVarLength_DirectionSymmetry(t *testing.T) {
	r := highwayRegistry(t)
	c := New(r, VarLength)

	forward, err := c.Encode(lookup.IndexVector{0, 2, 3})
	if err != nil {
		t.Fatalf("Encode(forward) error = %v", err)
	}
	flipped, err := c.Encode(lookup.IndexVector{2, 2, 3})
	if err != nil {
		t.Fatalf("Encode(flipped) error = %v", err)
	}

	a := r.NewIndexVector()
	b := r.NewIndexVector()
	if err := c.Decode(a, false, forward); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := c.Decode(b, true, flipped); err != nil {
		t.Fatalf("Decode(reverse) error = %v", err)
	}
	if !slices.Equal(a, b) || !slices.Equal(a, lookup.IndexVector{0, 2, 3}) {
		t.Errorf("forward = %v, reversed flipped = %v, want both [0 2 3]", a, b)
	}

	if err := c.Decode(a, true, forward); err != nil {
		t.Fatalf("Decode(reverse) error = %v", err)
	}
	if !slices.Equal(a, lookup.IndexVector{2, 2, 3}) {
		t.Errorf("reversed forward = %v, want [2 2 3]", a)
	}
}

func TestVarLength_RemapTable(t *testing.T) {
	for d := 1; d < 500; d++ {
		if got := unmap(remap(d)); got != d {
			t.Errorf("unmap(remap(%d)) = %d", d, got)
		}
	}
	tests := []struct{ in, want int }{
		{2, 0}, {8, 6}, {1, 7}, {9, 8},
	}
	for _, tt := range tests {
		if got := remap(tt.in); got != tt.want {
			t.Errorf("remap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestVarLength_DecodeAgainstSmallerDomain(t *testing.T) {
	big := newRegistry(t, 3, 20)
	ab, err := New(big, VarLength).Encode(lookup.IndexVector{0, 15})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	small := newRegistry(t, 3, 10)
	got := small.NewIndexVector()
	if err := New(small, VarLength).Decode(got, false, ab); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !slices.Equal(got, lookup.IndexVector{0, lookup.Unknown}) {
		t.Errorf("Decode() = %v, want [0 1]", got)
	}
}

func TestVarLength_DecodeNewerMinorVersion(t *testing.T) {
	newer := newRegistry(t, 3, 5, 5, 5)
	ab, err := New(newer, VarLength).Encode(lookup.IndexVector{2, 3, 0, 4})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	older := newRegistry(t, 3, 5, 5)
	got := older.NewIndexVector()
	if err := New(older, VarLength).Decode(got, false, ab); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !slices.Equal(got, lookup.IndexVector{2, 3, 0}) {
		t.Errorf("Decode() = %v, want [2 3 0]", got)
	}
}

func TestVarLength_DecodeZeroFillsTrailingSlots(t *testing.T) {
	r := newRegistry(t, 3, 5, 5, 5)
	c := New(r, VarLength)
	ab, err := c.Encode(lookup.IndexVector{0, 4, 0, 0})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := lookup.IndexVector{2, 2, 2, 2}
	if err := c.Decode(got, false, ab); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !slices.Equal(got, lookup.IndexVector{0, 4, 0, 0}) {
		t.Errorf("Decode() = %v, want [0 4 0 0]", got)
	}
}

func TestVarLength_DecodeAbsent(t *testing.T) {
	c := New(highwayRegistry(t), VarLength)

	tests := []struct {
		reverse bool
		want    lookup.IndexVector
	}{
		{false, lookup.IndexVector{0, 0, 0}},
		{true, lookup.IndexVector{2, 0, 0}},
	}
	for _, tt := range tests {
		got := lookup.IndexVector{2, 2, 2}
		if err := c.Decode(got, tt.reverse, nil); err != nil {
			t.Fatalf("Decode(nil, reverse=%v) error = %v", tt.reverse, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Decode(nil, reverse=%v) = %v, want %v", tt.reverse, got, tt.want)
		}
	}
}

func TestVarLength_DecodeTruncated(t *testing.T) {
	c := New(newRegistry(t, 3, 500), VarLength)
	ab, err := c.Encode(lookup.IndexVector{0, 400})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(ab) <= 1 {
		t.Fatalf("Encode() = %x, want more than one byte", ab)
	}

	if err := c.Decode(make(lookup.IndexVector, 2), false, ab[:1]); err == nil {
		t.Error("Decode(truncated) error = nil")
	}
}

func TestEncode_Validation(t *testing.T) {
	c := New(highwayRegistry(t), VarLength)

	tests := []struct {
		name string
		vec  lookup.IndexVector
		want error
	}{
		{"short vector", lookup.IndexVector{0, 0}, ErrVectorLength},
		{"index past domain", lookup.IndexVector{0, 0, 4}, ErrIndexOutOfRange},
		{"unknown direction", lookup.IndexVector{1, 0, 2}, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Encode(tt.vec); !errors.Is(err, tt.want) {
				t.Errorf("Encode(%v) error = %v, want %v", tt.vec, err, tt.want)
			}
		})
	}

	if err := c.Decode(nil, false, []byte{0xAC}); !errors.Is(err, ErrVectorLength) {
		t.Errorf("Decode(nil dst) error = %v, want ErrVectorLength", err)
	}
}

// lyingShape grows domains while Encode validates and shrinks them
// afterwards, which only a broken codec could observe.
type lyingShape struct {
	n     int
	calls int
}

func (s *lyingShape) Len() int { return s.n }

func (s *lyingShape) DomainSize(int) int {
	s.calls++
	if s.calls <= s.n {
		return 20
	}
	return 3
}

func TestVarLength_SelfCheckPanics(t *testing.T) {
	if !selfCheck {
		t.Skip("built without the codec self-check")
	}
	c := New(&lyingShape{n: 2}, VarLength)
	defer func() {
		if recover() == nil {
			t.Error("Encode() did not panic on a mismatched round trip")
		}
	}()
	_, _ = c.Encode(lookup.IndexVector{0, 10})
}

func TestFixed_Example(t *testing.T) {
	// A: 4 variants -> 2 bits, B: 3 variants -> boolean, 1 bit
	r := newRegistry(t, 4, 3)
	c := New(r, Fixed)

	ab, got := roundTrip(t, c, r, lookup.IndexVector{2, 2})
	if want := []byte{0, 0, 0, 0, 0, 0, 0, 0x05}; !bytes.Equal(ab, want) {
		t.Errorf("Encode() = %x, want %x", ab, want)
	}
	if !slices.Equal(got, lookup.IndexVector{2, 2}) {
		t.Errorf("Decode() = %v, want [2 2]", got)
	}
}

func TestFixed_AllZeroIsAbsent(t *testing.T) {
	r := newRegistry(t, 4, 3, 2)
	c := New(r, Fixed)

	ab, err := c.Encode(lookup.IndexVector{0, 0, 0})
	if err != nil || ab != nil {
		t.Errorf("Encode(zero) = (%x, %v), want (nil, nil)", ab, err)
	}

	got := lookup.IndexVector{1, 1, 1}
	if err := c.Decode(got, false, nil); err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if !slices.Equal(got, lookup.IndexVector{0, 0, 0}) {
		t.Errorf("Decode(nil) = %v, want zeros", got)
	}
}

func TestFixed_RoundTripRandom(t *testing.T) {
	sizes := []int{3, 2, 4, 12, 30, 3, 9, 10, 2, 64, 17}
	r := newRegistry(t, sizes...)
	width, err := FixedWidth(r)
	if err != nil {
		t.Fatalf("FixedWidth() error = %v", err)
	}
	if width > 64 {
		t.Fatalf("FixedWidth() = %d, want at most 64", width)
	}

	c := New(r, Fixed)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		vec := r.NewIndexVector()
		for num := range vec {
			d := rng.Intn(sizes[num])
			if sizes[num] == 3 && d == lookup.Unknown {
				// booleans cannot carry "unknown"
				d = lookup.Yes
			}
			vec[num] = d
		}
		if ab, got := roundTrip(t, c, r, vec); !slices.Equal(got, vec) {
			t.Fatalf("round trip %v -> %x -> %v", vec, ab, got)
		}
	}
}

func TestFixed_Overflow(t *testing.T) {
	sizes := make([]int, 9)
	for i := range sizes {
		sizes[i] = 256 // 8 bits each, 72 total
	}
	r := newRegistry(t, sizes...)

	width, err := FixedWidth(r)
	if width != 72 || !errors.Is(err, ErrFixedOverflow) {
		t.Errorf("FixedWidth() = (%d, %v), want (72, ErrFixedOverflow)", width, err)
	}

	c := New(r, Fixed)
	vec := r.NewIndexVector()
	vec[3] = 5
	if _, err := c.Encode(vec); !errors.Is(err, ErrFixedOverflow) {
		t.Errorf("Encode() error = %v, want ErrFixedOverflow", err)
	}
	if err := c.Decode(vec, false, make([]byte, 8)); !errors.Is(err, ErrFixedOverflow) {
		t.Errorf("Decode() error = %v, want ErrFixedOverflow", err)
	}
}

func TestFixed_BadLength(t *testing.T) {
	r := newRegistry(t, 4)
	err := New(r, Fixed).Decode(r.NewIndexVector(), false, []byte{1, 2, 3})
	if !errors.Is(err, ErrFixedLength) {
		t.Errorf("Decode(3 bytes) error = %v, want ErrFixedLength", err)
	}
}

func TestFieldWidth(t *testing.T) {
	tests := []struct{ size, want int }{
		{2, 1}, {3, 1}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {500, 9},
	}
	for _, tt := range tests {
		if got := fieldWidth(tt.size); got != tt.want {
			t.Errorf("fieldWidth(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"fixed", Fixed},
		{"", VarLength},
	}
	for _, tt := range tests {
		f, err := ParseFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if f != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, f, tt.want)
		}
	}
	if got := Fixed.String(); got != "fixed" {
		t.Errorf("Fixed.String() = %q, want fixed", got)
	}
	if _, err := ParseFormat("zip"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(zip) error = %v, want ErrUnknownFormat", err)
	}

	if got := FormatFor(lookup.Metadata{}); got != Fixed {
		t.Errorf("FormatFor(fixed metadata) = %v, want Fixed", got)
	}
	if got := FormatFor(lookup.Metadata{VarLength: true}); got != VarLength {
		t.Errorf("FormatFor(varlength metadata) = %v, want VarLength", got)
	}

	if got := New(newRegistry(t, 3), VarLength).InverseBitByte(); got != 0 {
		t.Errorf("VarLength InverseBitByte() = %d, want 0", got)
	}
	if got := New(newRegistry(t, 3), Fixed).InverseBitByte(); got != 7 {
		t.Errorf("Fixed InverseBitByte() = %d, want 7", got)
	}
}
