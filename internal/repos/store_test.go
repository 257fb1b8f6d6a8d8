package repos_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardauction/internal/domain"
	"cardauction/internal/repos"
)

func engines(t *testing.T) map[string]*repos.Stores {
	t.Helper()
	out := map[string]*repos.Stores{}

	mem, err := repos.NewByEngine(repos.EngineMemory, "")
	require.NoError(t, err)
	out[repos.EngineMemory] = mem

	sq, err := repos.NewByEngine(repos.EngineSQLite, ":memory:")
	require.NoError(t, err)
	out[repos.EngineSQLite] = sq

	js, err := repos.NewByEngine(repos.EngineJSON, filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	out[repos.EngineJSON] = js

	t.Cleanup(func() {
		for _, s := range out {
			_ = s.Close()
		}
	})
	return out
}

func auction(id string, item int, status domain.AuctionStatus, at time.Time) domain.Auction {
	return domain.Auction{
		ID:                id,
		ItemID:            item,
		Status:            status,
		Language:          domain.LangEN,
		MatchedAttributes: []string{},
		CreatedAt:         at,
		UpdatedAt:         at,
	}
}

func TestAuctionStoreCRUD(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range engines(t) {
		t.Run(name, func(t *testing.T) {
			st := s.Auctions

			list, err := st.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)

			require.NoError(t, st.Insert(ctx, auction("a1", 3, domain.StatusPending, base)))
			require.NoError(t, st.Insert(ctx, auction("a2", 4, domain.StatusPending, base.Add(time.Minute))))

			err = st.Insert(ctx, auction("a1", 5, domain.StatusPending, base))
			assert.ErrorIs(t, err, domain.ErrStorage)

			list, err = st.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a2", list[0].ID, "newest first")

			got, err := st.Get(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, 3, got.ItemID)
			assert.Nil(t, got.CollectorID)
			assert.True(t, got.CreatedAt.Equal(base))

			_, err = st.Get(ctx, "missing")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			c := 7
			got.CollectorID = &c
			got.MatchedAttributes = []string{"vintage", "rare"}
			got.TotalValue = 21
			got.UpdatedAt = base.Add(2 * time.Minute)
			require.NoError(t, st.Update(ctx, got))

			again, err := st.Get(ctx, "a1")
			require.NoError(t, err)
			assert.True(t, got.Equal(again), "want %+v got %+v", got, again)

			assert.ErrorIs(t, st.Update(ctx, auction("nope", 1, domain.StatusActive, base)), domain.ErrNotFound)
		})
	}
}

func TestAuctionStoreActivateKeepsOneActive(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range engines(t) {
		t.Run(name, func(t *testing.T) {
			st := s.Auctions

			first := auction("first", 1, domain.StatusActive, base)
			done, err := st.Activate(ctx, first)
			require.NoError(t, err)
			assert.Empty(t, done)

			require.NoError(t, st.Insert(ctx, auction("queued", 2, domain.StatusPending, base.Add(time.Second))))

			second := auction("queued", 2, domain.StatusActive, base.Add(time.Second))
			second.UpdatedAt = base.Add(time.Minute)
			done, err = st.Activate(ctx, second)
			require.NoError(t, err)
			require.Len(t, done, 1)
			assert.Equal(t, "first", done[0].ID)
			assert.Equal(t, domain.StatusCompleted, done[0].Status)

			list, err := st.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			active := 0
			for _, a := range list {
				if a.Status == domain.StatusActive {
					active++
					assert.Equal(t, "queued", a.ID)
				}
			}
			assert.Equal(t, 1, active)

			old, err := st.Get(ctx, "first")
			require.NoError(t, err)
			assert.True(t, old.UpdatedAt.Equal(second.UpdatedAt))
		})
	}
}

func TestOverrideStore(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range engines(t) {
		t.Run(name, func(t *testing.T) {
			st := s.Overrides

			_, ok, err := st.GetOverride(ctx, domain.KindItem, 5)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: 9, TitleEn: "Nine", UpdatedAt: at}))
			require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: 5, TitleZh: "五", UpdatedAt: at}))
			require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindCollector, ID: 5, TitleEn: "Five", UpdatedAt: at}))

			o, ok, err := st.GetOverride(ctx, domain.KindItem, 5)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "五", o.TitleZh)
			assert.Empty(t, o.TitleEn)

			require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: 5, TitleEn: "Five", TitleZh: "五", UpdatedAt: at}))
			o, _, err = st.GetOverride(ctx, domain.KindItem, 5)
			require.NoError(t, err)
			assert.Equal(t, "Five", o.TitleEn)

			items, err := st.ListOverrides(ctx, domain.KindItem)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, 5, items[0].ID)
			assert.Equal(t, 9, items[1].ID)

			cols, err := st.ListOverrides(ctx, domain.KindCollector)
			require.NoError(t, err)
			require.Len(t, cols, 1)
		})
	}
}

func TestNewByEngineRejectsUnknown(t *testing.T) {
	_, err := repos.NewByEngine("mongo", "")
	assert.Error(t, err)
}
