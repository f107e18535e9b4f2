package interfaces

import (
	"context"

	"github.com/finebot/penalty-ledger/internal/models"
)

// LedgerStore persists one record per account name.
// ListRecords must return records in a stable order.
type LedgerStore interface {
	GetRecord(ctx context.Context, name string) (models.Record, bool, error)
	UpsertRecord(ctx context.Context, name string, record models.Record) error
	ListRecords(ctx context.Context) ([]models.NamedRecord, error)
}
