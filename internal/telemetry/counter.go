package telemetry

import "sync"

// tryCell is a mutex-guarded value whose operations give up instead of
// waiting when the mutex is held.
type tryCell struct {
	mu sync.Mutex
	v  uint64
}

func (c *tryCell) store(v uint64) bool {
	if !c.mu.TryLock() {
		return false
	}
	c.v = v
	c.mu.Unlock()
	return true
}

func (c *tryCell) add(delta uint64) bool {
	if !c.mu.TryLock() {
		return false
	}
	c.v += delta
	c.mu.Unlock()
	return true
}

func (c *tryCell) load() (uint64, bool) {
	if !c.mu.TryLock() {
		return 0, false
	}
	v := c.v
	c.mu.Unlock()
	return v, true
}
