package cache

import "fmt"

// DefaultCapacity is the bucket count used when none is configured.
const DefaultCapacity = 4096

// MaxCapacity is the largest useful bucket count. Bucket selection uses the
// low 28 bits of the checksum.
const MaxCapacity = 1 << 28

// Policy configures the result cache.
type Policy struct {
	// Capacity is the number of buckets. A capacity of 1 keeps only the last
	// result, which effectively disables caching.
	Capacity int
}

// DefaultPolicy returns the default caching policy.
// Capacity: 4096
func DefaultPolicy() Policy {
	return Policy{Capacity: DefaultCapacity}
}

// NoCachePolicy returns a single-bucket policy.
func NoCachePolicy() Policy {
	return Policy{Capacity: 1}
}

// Validate checks the capacity bounds.
func (p Policy) Validate() error {
	if p.Capacity < 1 || p.Capacity > MaxCapacity {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidCapacity, p.Capacity, MaxCapacity)
	}
	return nil
}

// ShouldCache returns true if more than one bucket is available.
func (p Policy) ShouldCache() bool {
	return p.Capacity > 1
}
