package cache

import "errors"

// Sentinel errors for cache operations.
var (
	ErrInvalidCapacity = errors.New("cache: capacity is invalid")
	ErrNilCompute      = errors.New("cache: compute function is nil")
)

// Outputs are the six built-in results of evaluating one tag buffer.
type Outputs struct {
	CostFactor         float32
	TurnCost           float32
	UphillCostFactor   float32
	DownhillCostFactor float32
	InitialCost        float32
	NodeAccessGranted  float32
}

// ComputeFunc decodes and evaluates buf on a cache miss. A true warned result
// marks the outputs as usable for this call only.
type ComputeFunc func(reverse bool, buf []byte) (out Outputs, warned bool, err error)

// Recorder receives cache events.
//
// Contract:
// - Concurrency: called from the goroutine that owns the cache.
// - Errors: implementations must not panic.
type Recorder interface {
	// RecordLookup is called once per Evaluate with whether it missed.
	RecordLookup(miss bool)

	// RecordWarning is called when a computed result was not retained.
	RecordWarning()
}

// Stats holds request counters.
type Stats struct {
	// Requests counts every Evaluate call.
	Requests uint64

	// Lookups counts calls that got past the identity fast path.
	Lookups uint64

	// Misses counts calls that ran the compute function.
	Misses uint64
}

// HitRatio returns the share of requests served without computing. It is 1
// when there were no requests.
func (s Stats) HitRatio() float64 {
	if s.Requests == 0 {
		return 1
	}
	return 1 - float64(s.Misses)/float64(s.Requests)
}
