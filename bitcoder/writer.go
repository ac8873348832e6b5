package bitcoder

// Writer encodes bits into a caller-provided scratch buffer.
//
// The buffer is reused across Reset calls; it grows only when an encoding
// does not fit.
type Writer struct {
	buf []byte
	pos int // bits written
}

// NewWriter returns a Writer that encodes into scratch.
func NewWriter(scratch []byte) *Writer {
	return &Writer{buf: scratch[:cap(scratch)]}
}

// Reset discards everything written so far and keeps the buffer.
func (w *Writer) Reset() {
	w.pos = 0
}

// EncodeBit appends a single bit.
func (w *Writer) EncodeBit(bit bool) {
	idx := w.pos >> 3
	if idx >= len(w.buf) {
		w.grow()
	}
	if w.pos&7 == 0 {
		w.buf[idx] = 0
	}
	if bit {
		w.buf[idx] |= 1 << uint(w.pos&7)
	}
	w.pos++
}

// EncodeVarBits appends value in the self-delimiting variable-length code.
func (w *Writer) EncodeVarBits(value uint) {
	var rng uint
	for value > rng {
		w.EncodeBit(false)
		value -= rng + 1
		rng = 2*rng + 1
	}
	w.EncodeBit(true)
	w.encodeBounded(rng, value)
}

// encodeBounded writes value using exactly the bits needed to hold max.
func (w *Writer) encodeBounded(max, value uint) {
	for im := uint(1); im <= max; im <<= 1 {
		w.EncodeBit(value&im != 0)
	}
}

// EncodedLength returns the number of bytes touched so far.
func (w *Writer) EncodedLength() int {
	return (w.pos + 7) >> 3
}

// Bytes returns the encoded bytes. The slice aliases the scratch buffer and
// is only valid until the next write or Reset.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.EncodedLength()]
}

func (w *Writer) grow() {
	n := 2 * len(w.buf)
	if n < 16 {
		n = 16
	}
	nbuf := make([]byte, n)
	copy(nbuf, w.buf)
	w.buf = nbuf
}
