package load

import "sync"

// Key identifies a cached calculation.
type Key struct {
	Input
	Voltage int
}

// Entry is a cached calculation together with the policy decision.
type Entry struct {
	Result
	Voltage          int  `json:"voltage"`
	RequiresMultiple bool `json:"requires_multiple"`
}

// Cache memoizes the most recent calculation. Any change to the key
// replaces the entry.
type Cache struct {
	mu     sync.Mutex
	policy Policy
	key    Key
	entry  Entry
	valid  bool
	hits   int
	misses int
}

// NewCache returns an empty cache that applies p.
func NewCache(p Policy) *Cache {
	return &Cache{policy: p}
}

// Get returns the entry for in at voltage, recomputing on a key change.
func (c *Cache) Get(in Input, voltage int) (Entry, error) {
	key := Key{Input: in, Voltage: voltage}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.key == key {
		c.hits++
		return c.entry, nil
	}

	res, err := Calculate(in)
	if err != nil {
		return Entry{}, err
	}
	c.misses++
	c.key = key
	c.entry = Entry{
		Result:           res,
		Voltage:          voltage,
		RequiresMultiple: c.policy.RequiresMultiple(voltage, res.LengthMeters),
	}
	c.valid = true
	return c.entry, nil
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.entry = Entry{}
	c.mu.Unlock()
}

// Stats returns hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
