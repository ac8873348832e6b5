package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/jonwraymond/routecost/bitcoder"
	"github.com/jonwraymond/routecost/lookup"
)

// Format selects a wire format.
type Format int

const (
	// VarLength is the self-delimiting variable-length format.
	VarLength Format = iota
	// Fixed is the legacy 64-bit word format.
	Fixed
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case VarLength:
		return "varlength"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name as produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "varlength", "":
		return VarLength, nil
	case "fixed":
		return Fixed, nil
	default:
		return VarLength, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFor returns the format a metadata file asks for.
func FormatFor(md lookup.Metadata) Format {
	if md.VarLength {
		return VarLength
	}
	return Fixed
}

// Shape is the registry view the codec needs: the number of names and the
// current size of each domain. *lookup.Registry implements it.
type Shape interface {
	Len() int
	DomainSize(nameIdx int) int
}

// unknownCode is the code the variable-length format gives lookup.Unknown.
const unknownCode = 7

// Codec encodes and decodes index vectors for one registry. It owns a
// scratch buffer and is not safe for concurrent use.
type Codec struct {
	shape  Shape
	format Format
	w      *bitcoder.Writer
	r      bitcoder.Reader
	check  lookup.IndexVector
}

// New creates a codec for shape in the given format.
func New(shape Shape, format Format) *Codec {
	return &Codec{
		shape:  shape,
		format: format,
		w:      bitcoder.NewWriter(make([]byte, 256)),
	}
}

// Format returns the wire format.
func (c *Codec) Format() Format {
	return c.format
}

// InverseBitByte returns the index of the byte whose low bit is toggled when
// a buffer is hashed for the reverse direction.
func (c *Codec) InverseBitByte() int {
	if c.format == Fixed {
		return 7
	}
	return 0
}

// Encode serializes vec. A nil result with a nil error is the absent
// encoding. The returned buffer is freshly allocated and owned by the caller.
func (c *Codec) Encode(vec lookup.IndexVector) ([]byte, error) {
	if len(vec) != c.shape.Len() {
		return nil, fmt.Errorf("%w: got %d, registry has %d names", ErrVectorLength, len(vec), c.shape.Len())
	}
	if len(vec) == 0 {
		return nil, nil
	}
	for num, d := range vec {
		if d < 0 || d >= c.shape.DomainSize(num) {
			return nil, fmt.Errorf("%w: slot %d: %d", ErrIndexOutOfRange, num, d)
		}
	}
	if c.format == Fixed {
		return c.encodeFixed(vec)
	}
	return c.encodeVarLength(vec)
}

// Decode fills dst from buf. reverse inverts the direction flag in slot 0 of
// variable-length buffers. Values beyond a domain's current size decode as
// lookup.Unknown, and slots the buffer does not cover are zeroed, so buffers
// written against a different minor vocabulary version still decode.
func (c *Codec) Decode(dst lookup.IndexVector, reverse bool, buf []byte) error {
	if len(dst) == 0 {
		return fmt.Errorf("%w: empty destination", ErrVectorLength)
	}
	if c.format == Fixed {
		return c.decodeFixed(dst, buf)
	}
	return c.decodeVarLength(dst, reverse, buf)
}

func (c *Codec) encodeVarLength(vec lookup.IndexVector) ([]byte, error) {
	if vec[0] != lookup.Absent && vec[0] != lookup.Yes {
		return nil, fmt.Errorf("%w: direction slot must be 0 or %d, got %d", ErrIndexOutOfRange, lookup.Yes, vec[0])
	}

	c.w.Reset()
	c.w.EncodeBit(vec[0] != lookup.Absent)

	skipped, present := 0, 0
	for num := 1; num < len(vec); num++ {
		d := vec[num]
		if d == lookup.Absent {
			skipped++
			continue
		}
		c.w.EncodeVarBits(uint(skipped + 1))
		c.w.EncodeVarBits(uint(remap(d)))
		skipped = 0
		present++
	}
	c.w.EncodeVarBits(0)

	if present == 0 {
		return nil, nil
	}

	ab := bytes.Clone(c.w.Bytes())
	if selfCheck {
		c.verify(vec, ab)
	}
	return ab, nil
}

func (c *Codec) verify(vec lookup.IndexVector, ab []byte) {
	if cap(c.check) < len(vec) {
		c.check = make(lookup.IndexVector, len(vec))
	}
	c.check = c.check[:len(vec)]
	if err := c.decodeVarLength(c.check, false, ab); err != nil {
		panic(fmt.Sprintf("codec: internal error: decoding %x: %v", ab, err))
	}
	for num := range vec {
		if c.check[num] != vec[num] {
			panic(fmt.Sprintf("codec: internal error: round trip of %v gave %v (buffer %x)", vec, c.check, ab))
		}
	}
}

func (c *Codec) decodeVarLength(dst lookup.IndexVector, reverse bool, buf []byte) error {
	if len(buf) == 0 {
		clear(dst)
		if reverse {
			dst[0] = lookup.Yes
		}
		return nil
	}

	c.r.Reset(buf)
	if reverse != c.r.DecodeBit() {
		dst[0] = lookup.Yes
	} else {
		dst[0] = lookup.Absent
	}

	num := 1
	for {
		delta := int(c.r.DecodeVarBits())
		if err := c.r.Err(); err != nil {
			return fmt.Errorf("codec: decoding %x: %w", buf, err)
		}
		if delta == 0 {
			break
		}
		if num+delta > len(dst) {
			// newer minor version, more names than we know
			break
		}
		for ; delta > 1; delta-- {
			dst[num] = lookup.Absent
			num++
		}

		d := unmap(int(c.r.DecodeVarBits()))
		if d >= c.shape.DomainSize(num) {
			d = lookup.Unknown
		}
		dst[num] = d
		num++
	}
	for ; num < len(dst); num++ {
		dst[num] = lookup.Absent
	}
	return c.r.Err()
}

// remap moves Unknown behind the seven lowest concrete values.
func remap(d int) int {
	switch {
	case d == lookup.Unknown:
		return unknownCode
	case d < 9:
		return d - 2
	default:
		return d - 1
	}
}

func unmap(dd int) int {
	switch {
	case dd == unknownCode:
		return lookup.Unknown
	case dd < unknownCode:
		return dd + 2
	default:
		return dd + 1
	}
}

// FixedWidth returns the number of bits a fixed-format word needs for shape,
// or ErrFixedOverflow when that exceeds 64.
func FixedWidth(shape Shape) (int, error) {
	total := 0
	for num := 0; num < shape.Len(); num++ {
		total += fieldWidth(shape.DomainSize(num))
	}
	if total > 64 {
		return total, fmt.Errorf("%w: %d bits", ErrFixedOverflow, total)
	}
	return total, nil
}

// fieldWidth is the bit width of one fixed-format field.
func fieldWidth(domainSize int) int {
	if domainSize == 3 {
		return 1
	}
	return bits.Len(uint(domainSize - 1))
}

// encodeFixed keeps the legacy word layout: each field is shifted in after the
// previous one, so name 0 ends up in the high bits and the last registered name
// in the low bits. Stored fixed-format buffers depend on this order.
func (c *Codec) encodeFixed(vec lookup.IndexVector) ([]byte, error) {
	if _, err := FixedWidth(c.shape); err != nil {
		return nil, err
	}

	var w uint64
	for num, d := range vec {
		size := c.shape.DomainSize(num)
		if size == 3 {
			// boolean field: only "yes" survives
			if d == lookup.Yes {
				d = 1
			} else {
				d = 0
			}
		}
		w = w<<uint(fieldWidth(size)) | uint64(d)
	}
	if w == 0 {
		return nil, nil
	}

	ab := make([]byte, 8)
	binary.BigEndian.PutUint64(ab, w)
	return ab, nil
}

func (c *Codec) decodeFixed(dst lookup.IndexVector, buf []byte) error {
	if len(buf) == 0 {
		clear(dst)
		return nil
	}
	if len(buf) != 8 {
		return fmt.Errorf("%w: got %d", ErrFixedLength, len(buf))
	}
	if _, err := FixedWidth(c.shape); err != nil {
		return err
	}

	n := c.shape.Len()
	if len(dst) < n {
		return fmt.Errorf("%w: got %d, registry has %d names", ErrVectorLength, len(dst), n)
	}

	w := binary.BigEndian.Uint64(buf)
	for num := n - 1; num >= 0; num-- {
		size := c.shape.DomainSize(num)
		width := uint(fieldWidth(size))
		d := int(w & (1<<width - 1))
		w >>= width
		if size == 3 && d == 1 {
			d = lookup.Yes
		}
		if d >= size {
			d = lookup.Unknown
		}
		dst[num] = d
	}
	for num := n; num < len(dst); num++ {
		dst[num] = lookup.Absent
	}
	return nil
}
