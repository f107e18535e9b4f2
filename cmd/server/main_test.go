package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finebot/penalty-ledger/internal/config"
	"github.com/finebot/penalty-ledger/internal/models"
	"github.com/finebot/penalty-ledger/internal/storage/memory"
	"github.com/finebot/penalty-ledger/internal/storage/sqlite"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := newLogger("loud")
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, &config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &memory.MemoryLedgerStore{}, store)

	path := filepath.Join(t.TempDir(), "bot.db")
	store, closeSQLite, err := openStore(ctx, &config.Config{StoreDriver: config.StoreSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer closeSQLite()
	assert.IsType(t, &sqlite.SQLiteLedgerStore{}, store)

	require.NoError(t, store.UpsertRecord(ctx, "uj", models.Record{Total: 10, Today: 10, Date: "2024-05-01"}))
	_, found, err := store.GetRecord(ctx, "uj")
	require.NoError(t, err)
	assert.True(t, found)
}
