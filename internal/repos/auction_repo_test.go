package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardauction/internal/domain"
	"cardauction/internal/repos"
)

func TestAuctionRepoCorruptAttributesIsStorageError(t *testing.T) {
	ctx := context.Background()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repos.NewAuctionRepo(db)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := auction("bad", 1, domain.StatusActive, base)
	a.TotalValue = 43
	require.NoError(t, repo.Insert(ctx, a))
	_, err = db.Exec(`UPDATE auctions SET matched_attributes = '{broken' WHERE id = 'bad'`)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = repo.Activate(ctx, auction("next", 2, domain.StatusActive, base.Add(time.Second)))
	assert.ErrorIs(t, err, domain.ErrStorage)

	// the failed activation rolled back
	_, err = repo.Get(ctx, "next")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
