// Package bitcoder provides the bit-level stream primitive used by the lookup
// codec.
//
// Bits are packed LSB-first: the first bit written lands in bit 0 of byte 0,
// the ninth in bit 0 of byte 1. Non-negative integers use a self-delimiting
// variable-length code: a run of zero bits selects a range (0, 1, 3, 7, ...),
// a one bit closes the run, and the offset inside the range follows in as
// many bits as the range needs. Small values therefore cost very few bits:
// 0 takes one bit, 1 and 2 take three.
//
// Neither Writer nor Reader is safe for concurrent use.
package bitcoder
