package bitcoder

// maxRange bounds the variable-length code so that decoding garbage cannot
// spin forever or overflow.
const maxRange = 1<<31 - 1

// Reader decodes bits written by a Writer.
//
// Reading past the end of the buffer yields zero bits and records
// ErrShortBuffer, which Err reports. Callers check Err once after decoding.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Reset rewinds the Reader onto a new buffer and clears its error.
func (r *Reader) Reset(buf []byte) {
	r.buf = buf
	r.pos = 0
	r.err = nil
}

// Err returns the first error encountered while decoding.
func (r *Reader) Err() error {
	return r.err
}

// DecodeBit reads a single bit.
func (r *Reader) DecodeBit() bool {
	idx := r.pos >> 3
	if idx >= len(r.buf) {
		if r.err == nil {
			r.err = ErrShortBuffer
		}
		return false
	}
	bit := r.buf[idx]&(1<<uint(r.pos&7)) != 0
	r.pos++
	return bit
}

// DecodeVarBits reads a value written by Writer.EncodeVarBits.
func (r *Reader) DecodeVarBits() uint {
	var rng, value uint
	for !r.DecodeBit() {
		if r.err != nil {
			return 0
		}
		value += rng + 1
		rng = 2*rng + 1
		if rng > maxRange {
			r.err = ErrOverflow
			return 0
		}
	}
	return value + r.decodeBounded(rng)
}

func (r *Reader) decodeBounded(max uint) uint {
	var value uint
	for im := uint(1); im <= max; im <<= 1 {
		if r.DecodeBit() {
			value |= im
		}
	}
	return value
}
