package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/config"
	"cashledger/internal/core"
)

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

	assert.Nil(t, res.Events)
	assert.Nil(t, res.Publisher())

	all, err := res.Store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateMemoryBackendFromSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.tsv")
	require.NoError(t, os.WriteFile(seed, []byte("Date\tCoupons\tCard Cash\n2025-03-24\tCARD CASH\t300\n"), 0o644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)

	all, err := res.Store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, core.CardCash, all[0].Type)
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)

	all, err := res.Store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NoError(t, res.Cleanup())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.Error(t, err)

	_, err = f.CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)

	_, err = f.CreateBackend(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://localhost/"})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "cashledger",
		AMQPQueue:    "q",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	assert.Equal(t, "q", cfg.AMQPQueue)
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}
