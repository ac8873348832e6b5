// Package cache provides the direct-mapped result cache used on the cost
// evaluation hot path.
//
// Buckets are addressed by a CRC-32 of the encoded tag buffer, with one bit
// logically flipped for reverse traversal. A bucket holds the last buffer that
// hashed there together with six evaluated outputs; a miss overwrites it.
package cache
