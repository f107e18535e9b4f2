package memory

import (
	"context" // request-scoped context, unused by the map but part of the store contract
	"sync"    // guards the map and the insertion order slice

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
	"github.com/finebot/penalty-ledger/internal/models"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// Records are kept in a map and listed back in insertion order.
type MemoryLedgerStore struct {
	mu      sync.Mutex               // protects records and order
	records map[string]models.Record // account name -> record
	order   []string                 // names in first-insert order
}

// NewMemoryLedgerStore creates and returns a new MemoryLedgerStore instance
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		records: make(map[string]models.Record),
		order:   make([]string, 0),
	}
}

// GetRecord returns the record stored for name, if any.
func (m *MemoryLedgerStore) GetRecord(ctx context.Context, name string) (models.Record, bool, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.records[name]
	return record, exists, nil
}

// UpsertRecord stores record under name. A new name is appended to the
// listing order; an existing one keeps its position.
func (m *MemoryLedgerStore) UpsertRecord(ctx context.Context, name string, record models.Record) error {

	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits (even if error occurs)

	if _, exists := m.records[name]; !exists {
		m.order = append(m.order, name)
	}
	m.records[name] = record
	return nil // always succeeds in memory, so returns nil
}

// ListRecords returns a copy of all records in insertion order.
func (m *MemoryLedgerStore) ListRecords(ctx context.Context) ([]models.NamedRecord, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	// build a fresh slice so callers can't modify internal state
	result := make([]models.NamedRecord, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, models.NamedRecord{Name: name, Record: m.records[name]})
	}
	return result, nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
