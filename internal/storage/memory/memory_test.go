package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
	"cashledger/internal/storage"
	"cashledger/internal/storage/storagetest"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.EntryStore { return New() })
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.csv"))
	require.NoError(t, err)
	all, _ := s.FetchAll(context.Background())
	assert.Empty(t, all)

	path := filepath.Join(dir, "seed.csv")
	content := "Date,Coupons,Card Cash,Opening Balance\n2025-03-10,CARD CASH,250,\n2025-03-10,OPENING,,900\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err = NewFromFile(path)
	require.NoError(t, err)
	all, err = s.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	types := []core.EntryType{all[0].Type, all[1].Type}
	assert.ElementsMatch(t, []core.EntryType{core.CardCash, core.Opening}, types)
}

func TestNewFromFile_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Coupons\n"), 0o644))

	_, err := NewFromFile(path)
	assert.Error(t, err)
}
