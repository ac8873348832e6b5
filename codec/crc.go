package codec

import "hash/crc32"

// Checksum returns the IEEE CRC-32 of buf as if the low bit of
// buf[flipByte] were inverted. A flipByte outside buf disables the flip.
// buf is not modified.
func Checksum(buf []byte, flipByte int) uint32 {
	if flipByte < 0 || flipByte >= len(buf) {
		return crc32.ChecksumIEEE(buf)
	}
	var flipped [1]byte
	flipped[0] = buf[flipByte] ^ 1
	crc := crc32.Update(0, crc32.IEEETable, buf[:flipByte])
	crc = crc32.Update(crc, crc32.IEEETable, flipped[:])
	return crc32.Update(crc, crc32.IEEETable, buf[flipByte+1:])
}
