package postgres

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq" // registers the "postgres" driver

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces" // interface LedgerStore
	"github.com/finebot/penalty-ledger/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS fine_records (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	total      INTEGER NOT NULL DEFAULT 0,
	today      INTEGER NOT NULL DEFAULT 0,
	day        TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects to dsn and makes sure the fine_records table exists.
func Open(ctx context.Context, dsn string) (*PostgresLedgerStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	p := NewPostgresLedgerStore(db)
	if err := p.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresLedgerStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresLedgerStore) Close() error {
	return p.db.Close()
}

func (p *PostgresLedgerStore) GetRecord(ctx context.Context, name string) (models.Record, bool, error) {
	const query = `SELECT total, today, day FROM fine_records WHERE name = $1 LIMIT 1`

	var record models.Record
	err := p.db.QueryRowContext(ctx, query, name).Scan(&record.Total, &record.Today, &record.Date)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, false, nil
	}
	if err != nil {
		return models.Record{}, false, err
	}

	return record, true, nil
}

func (p *PostgresLedgerStore) UpsertRecord(ctx context.Context, name string, record models.Record) error {
	const query = `INSERT INTO fine_records (name, total, today, day)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (name) DO UPDATE
	SET total = EXCLUDED.total, today = EXCLUDED.today, day = EXCLUDED.day, updated_at = now()`

	_, err := p.db.ExecContext(ctx, query, name, record.Total, record.Today, string(record.Date))
	return err
}

func (p *PostgresLedgerStore) ListRecords(ctx context.Context) ([]models.NamedRecord, error) {

	const query = `SELECT name, total, today, day FROM fine_records ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var records []models.NamedRecord

	for rows.Next() {
		var entry models.NamedRecord
		err := rows.Scan(
			&entry.Name,
			&entry.Record.Total,
			&entry.Record.Today,
			&entry.Record.Date,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
