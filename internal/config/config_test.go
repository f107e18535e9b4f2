package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment can't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LINE_CHANNEL_ACCESS_TOKEN", "LINE_CHANNEL_SECRET", "LINE_API_ENDPOINT",
		"HTTP_ADDR", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "ROSTER", "MENU_GROUP_SIZE",
		"CORRECTION_TTL", "PUBLISH_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, DefaultRoster, cfg.Roster)
	assert.Equal(t, 3, cfg.GroupSize)
	assert.Equal(t, time.Duration(0), cfg.CorrectionTTL)
	assert.Equal(t, "penalty_events", cfg.KafkaTopic)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER", "A, B ,,C")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CORRECTION_TTL", "2m")
	t.Setenv("MENU_GROUP_SIZE", "2")
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, cfg.Roster)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CorrectionTTL)
	assert.Equal(t, 2, cfg.GroupSize)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
}

func TestInvalidSettings(t *testing.T) {
	t.Run("postgres without url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "redis")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("bad ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CORRECTION_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CORRECTION_TTL")
	})

	t.Run("zero group size", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MENU_GROUP_SIZE", "0")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "MENU_GROUP_SIZE")
	})

	t.Run("group wider than a carousel column", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MENU_GROUP_SIZE", "4")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "MENU_GROUP_SIZE")
	})

	t.Run("roster needs more than ten columns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MENU_GROUP_SIZE", "1")
		t.Setenv("ROSTER", "a,b,c,d,e,f,g,h,i,j,k")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "ROSTER")
	})

	t.Run("name longer than an action label", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROSTER", "uj,"+strings.Repeat("麻", 21))
		_, err := FromEnv()
		assert.ErrorContains(t, err, "ROSTER")
	})
}

func TestRosterAtCarouselLimits(t *testing.T) {
	clearEnv(t)
	names := make([]string, 30)
	for i := range names {
		names[i] = fmt.Sprintf("m%02d", i)
	}
	names[0] = strings.Repeat("麻", 20)
	t.Setenv("ROSTER", strings.Join(names, ","))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.Roster, 30)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are set, even when empty
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("ROSTER")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9999\nROSTER=甲,乙\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("ROSTER")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"甲", "乙"}, cfg.Roster)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
