package ledger

import (
	"sync"
	"time"
)

// correction is the last accepted accrual for one name.
type correction struct {
	amount     int
	recordedAt time.Time
}

// correctionMemory remembers the last accrual per name so that an
// identical deduction right after it is treated as an undo.
// Callers hold the name's account lock; mu only protects the map.
type correctionMemory struct {
	mu      sync.Mutex
	entries map[string]correction
	ttl     time.Duration // zero keeps entries until consumed or overwritten
	now     func() time.Time
}

func newCorrectionMemory(ttl time.Duration, now func() time.Time) *correctionMemory {
	return &correctionMemory{
		entries: make(map[string]correction),
		ttl:     ttl,
		now:     now,
	}
}

func (c *correctionMemory) remember(name string, amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = correction{amount: amount, recordedAt: c.now()}
}

// matches reports whether an undo of amount is allowed for name.
// Expired entries are dropped on the way.
func (c *correctionMemory) matches(name string, amount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	if !ok {
		return false
	}
	if c.ttl > 0 && c.now().Sub(entry.recordedAt) > c.ttl {
		delete(c.entries, name)
		return false
	}
	return entry.amount == amount
}

func (c *correctionMemory) forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
