package cache

// entry is one bucket. An invalid bucket never matches; its out stays
// readable until the bucket is next written.
type entry struct {
	valid   bool
	buf     []byte
	reverse bool
	crc     uint32
	out     Outputs
}

// ResultCache is a direct-mapped cache of evaluation outputs keyed by encoded
// tag buffers.
//
// The cache stores buffers by reference. Callers must not modify a buffer
// after passing it to Evaluate.
//
// Contract:
// - Concurrency: not safe for concurrent use; each worker owns its cache.
// - Ordering: output accessors report the bucket touched by the most recent
// Evaluate call and are undefined before the first one.
type ResultCache struct {
	keyer    Keyer
	entries  []entry
	current  int
	last     []byte
	lastRev  bool
	hasLast  bool
	stats    Stats
	recorder Recorder
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithRecorder sets the recorder notified of lookups and warnings.
func WithRecorder(r Recorder) Option {
	return func(c *ResultCache) {
		c.recorder = r
	}
}

// New creates a result cache. The policy is validated.
func New(policy Policy, keyer Keyer, opts ...Option) (*ResultCache, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if keyer == nil {
		keyer = NewCRCKeyer(0)
	}
	c := &ResultCache{
		keyer:   keyer,
		entries: make([]entry, policy.Capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Capacity returns the number of buckets.
func (c *ResultCache) Capacity() int {
	return len(c.entries)
}

// Evaluate makes the outputs for buf current, computing them on a miss.
//
// It reports whether the current outputs are the same bucket as after the
// previous call, which lets callers skip re-reading them. A miss always
// reports false. When compute warns, the outputs are current for this call
// but the bucket is cleared so the next identical request recomputes.
func (c *ResultCache) Evaluate(reverse bool, buf []byte, compute ComputeFunc) (bool, error) {
	if compute == nil {
		return false, ErrNilCompute
	}
	c.stats.Requests++

	prev := c.current
	if c.hasLast && sameSlice(buf, c.last) && reverse == c.lastRev {
		if e := &c.entries[prev]; e.valid && sameSlice(e.buf, buf) && e.reverse == reverse {
			c.record(false)
			return true, nil
		}
	}
	c.stats.Lookups++

	crc := c.keyer.Checksum(buf, reverse)
	c.current = int(crc&0xfffffff) % len(c.entries)
	c.last, c.lastRev, c.hasLast = buf, reverse, true

	e := &c.entries[c.current]
	if e.valid && e.crc == crc && c.matches(e, buf, reverse) {
		c.record(false)
		return prev == c.current, nil
	}

	c.stats.Misses++
	c.record(true)

	out, warned, err := compute(reverse, buf)
	e.out = out
	if err != nil || warned {
		e.valid, e.buf, e.crc = false, nil, 0
		if warned && c.recorder != nil {
			c.recorder.RecordWarning()
		}
		return false, err
	}
	e.valid, e.buf, e.reverse, e.crc = true, buf, reverse, crc
	return false, nil
}

// matches compares buf against a bucket's stored buffer, toggling the
// direction bit when the directions differ.
func (c *ResultCache) matches(e *entry, buf []byte, reverse bool) bool {
	if len(e.buf) != len(buf) {
		return false
	}
	flip := -1
	if e.reverse != reverse {
		flip = c.keyer.InverseBitByte()
		if flip < 0 || flip >= len(buf) {
			return false
		}
	}
	for i, b := range buf {
		if i == flip {
			b ^= 1
		}
		if e.buf[i] != b {
			return false
		}
	}
	return true
}

func (c *ResultCache) record(miss bool) {
	if c.recorder != nil {
		c.recorder.RecordLookup(miss)
	}
}

// Outputs returns all outputs of the current bucket.
func (c *ResultCache) Outputs() Outputs {
	return c.entries[c.current].out
}

// CostFactor returns the current cost factor.
func (c *ResultCache) CostFactor() float32 {
	return c.entries[c.current].out.CostFactor
}

// TurnCost returns the current turn cost.
func (c *ResultCache) TurnCost() float32 {
	return c.entries[c.current].out.TurnCost
}

// UphillCostFactor returns the current uphill cost factor.
func (c *ResultCache) UphillCostFactor() float32 {
	return c.entries[c.current].out.UphillCostFactor
}

// DownhillCostFactor returns the current downhill cost factor.
func (c *ResultCache) DownhillCostFactor() float32 {
	return c.entries[c.current].out.DownhillCostFactor
}

// InitialCost returns the current initial cost.
func (c *ResultCache) InitialCost() float32 {
	return c.entries[c.current].out.InitialCost
}

// NodeAccessGranted returns the current node-access-granted value.
func (c *ResultCache) NodeAccessGranted() float32 {
	return c.entries[c.current].out.NodeAccessGranted
}

// Stats returns the request counters.
func (c *ResultCache) Stats() Stats {
	return c.stats
}

// Reset empties every bucket and zeroes the counters.
func (c *ResultCache) Reset() {
	clear(c.entries)
	c.current = 0
	c.last, c.lastRev, c.hasLast = nil, false, false
	c.stats = Stats{}
}

// sameSlice reports whether a and b view the same memory.
func sameSlice(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
