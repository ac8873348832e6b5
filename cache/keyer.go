package cache

import "github.com/jonwraymond/routecost/codec"

// Keyer derives the bucket checksum of an encoded buffer.
//
// Contract:
// - Determinism: same buffer and direction must produce the same checksum.
// - Direction: for reverse traversal the checksum is taken as if the low bit
// of byte InverseBitByte() were flipped. Buffers too short to contain that
// byte are hashed unchanged.
type Keyer interface {
	// Checksum returns the bucket checksum of buf.
	Checksum(buf []byte, reverse bool) uint32

	// InverseBitByte returns the index of the byte whose low bit encodes
	// direction.
	InverseBitByte() int
}

// CRCKeyer computes CRC-32 (IEEE) checksums.
type CRCKeyer struct {
	inverseByte int
}

// NewCRCKeyer creates a keyer flipping the low bit of byte inverseByte for
// reverse traversal.
func NewCRCKeyer(inverseByte int) *CRCKeyer {
	return &CRCKeyer{inverseByte: inverseByte}
}

// KeyerFor returns the keyer matching a codec's wire format.
func KeyerFor(c *codec.Codec) *CRCKeyer {
	return NewCRCKeyer(c.InverseBitByte())
}

// Checksum implements Keyer.
func (k *CRCKeyer) Checksum(buf []byte, reverse bool) uint32 {
	if !reverse {
		return codec.Checksum(buf, -1)
	}
	return codec.Checksum(buf, k.inverseByte)
}

// InverseBitByte implements Keyer.
func (k *CRCKeyer) InverseBitByte() int {
	return k.inverseByte
}

// Ensure CRCKeyer implements Keyer
var _ Keyer = (*CRCKeyer)(nil)
