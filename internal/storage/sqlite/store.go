package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
	"github.com/finebot/penalty-ledger/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS fine_records (
	name       TEXT PRIMARY KEY,
	total      INTEGER NOT NULL DEFAULT 0,
	today      INTEGER NOT NULL DEFAULT 0,
	day        TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteLedgerStore keeps records in a single-file SQLite database.
// Listing follows rowid, which is assigned on first insert and kept by
// ON CONFLICT updates.
type SQLiteLedgerStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteLedgerStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; SQLite serialises writes anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteLedgerStore{db: db}, nil
}

func (s *SQLiteLedgerStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteLedgerStore) GetRecord(ctx context.Context, name string) (models.Record, bool, error) {
	const query = `SELECT total, today, day FROM fine_records WHERE name = ? LIMIT 1`

	var record models.Record
	err := s.db.QueryRowContext(ctx, query, name).Scan(&record.Total, &record.Today, &record.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, false, nil
	}
	if err != nil {
		return models.Record{}, false, err
	}
	return record, true, nil
}

func (s *SQLiteLedgerStore) UpsertRecord(ctx context.Context, name string, record models.Record) error {
	const query = `INSERT INTO fine_records (name, total, today, day)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE
	SET total = excluded.total, today = excluded.today, day = excluded.day, updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query, name, record.Total, record.Today, string(record.Date))
	return err
}

func (s *SQLiteLedgerStore) ListRecords(ctx context.Context) ([]models.NamedRecord, error) {
	const query = `SELECT name, total, today, day FROM fine_records ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.NamedRecord
	for rows.Next() {
		var entry models.NamedRecord
		if err := rows.Scan(&entry.Name, &entry.Record.Total, &entry.Record.Today, &entry.Record.Date); err != nil {
			return nil, err
		}
		records = append(records, entry)
	}
	return records, rows.Err()
}

var _ interfaces.LedgerStore = (*SQLiteLedgerStore)(nil)
