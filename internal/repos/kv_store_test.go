package repos_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardauction/internal/domain"
	"cardauction/internal/repos"
)

func TestKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mirror.json")
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	kv, err := repos.NewKVStore(path)
	require.NoError(t, err)
	require.NoError(t, kv.Insert(ctx, auction("a1", 12, domain.StatusActive, at)))
	require.NoError(t, kv.SetSelection(ctx, domain.Selection{AuctionID: "a1", ItemID: 12}))
	require.NoError(t, kv.PutOverride(ctx, domain.Override{Kind: domain.KindCollector, ID: 3, TitleEn: "Three", UpdatedAt: at}))

	reopened, err := repos.NewKVStore(path)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.ItemID)

	sel, err := reopened.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a1", sel.AuctionID)

	o, ok, err := reopened.GetOverride(ctx, domain.KindCollector, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Three", o.TitleEn)
}

func TestKVStoreKeepsLocalStorageShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mirror.json")
	kv, err := repos.NewKVStore(path)
	require.NoError(t, err)

	require.NoError(t, kv.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: 4, TitleEn: "Four"}))

	raw, ok := kv.Raw(repos.KeyItemOverrides)
	require.True(t, ok)
	var byID map[string]domain.Override
	require.NoError(t, json.Unmarshal([]byte(raw), &byID))
	assert.Equal(t, "Four", byID["4"].TitleEn)

	_, ok = kv.Raw(repos.KeyCollectorOverrides)
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var file map[string]string
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Contains(t, file, repos.KeyItemOverrides)
}

func TestKVStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := repos.NewKVStore(path)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestKVStoreCorruptKeyIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	blob, _ := json.Marshal(map[string]string{repos.KeyAuctions: "[oops"})
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	kv, err := repos.NewKVStore(path)
	require.NoError(t, err)
	_, err = kv.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)
}
