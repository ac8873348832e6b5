// Package codec serializes lookup index vectors into compact byte buffers.
//
// Two wire formats exist. The variable-length format starts with one bit for
// slot 0 (the direction flag), followed by (skip distance, value) pairs of
// self-delimiting integers for every non-absent slot, and ends with a skip
// distance of zero. Values are remapped so the seven most frequent concrete
// values get the shortest codes:
//
//	index:  2 3 4 5 6 7 8 1 9 10 ...
//	code:   0 1 2 3 4 5 6 7 8  9 ...
//
// The legacy fixed format packs every slot into one big-endian 64-bit word,
// each slot taking the bits its domain needs; three-valued domains are
// booleans and take one bit.
//
// In both formats a vector without any concrete value encodes to nil, the
// absent encoding.
//
// Encode verifies each variable-length buffer by decoding it again and panics
// on mismatch. Build with -tags nocodeccheck to drop the check.
package codec
