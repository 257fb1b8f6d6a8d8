package repos_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cardauction/internal/domain"
	"cardauction/internal/repos"
)

func TestGormModelsRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := 2
	a := domain.Auction{
		ID: "x", ItemID: 1, CollectorID: &c, Status: domain.StatusCompleted,
		MatchedAttributes: []string{"vintage"}, TotalValue: 43, CreatedAt: at, UpdatedAt: at,
	}

	m := repos.AuctionToModel(a)
	assert.Equal(t, "auctions", m.TableName())
	assert.Equal(t, "en", m.Lang, "empty language stored as en")

	back := m.Domain()
	a.Language = domain.LangEN
	assert.True(t, a.Equal(back))

	// the model must not alias the caller's slice
	m.MatchedAttributes[0] = "changed"
	assert.Equal(t, "vintage", a.MatchedAttributes[0])

	o := domain.Override{Kind: domain.KindItem, ID: 4, TitleZh: "四", UpdatedAt: at}
	om := repos.OverrideToModel(o)
	assert.Equal(t, "customizations", om.TableName())
	assert.Equal(t, o, om.Domain())
}

// openPostgres connects to CARDAUCTION_TEST_POSTGRES_DSN and empties the
// tables. The test is skipped when the variable is unset.
func openPostgres(t *testing.T) *repos.GormStore {
	t.Helper()
	dsn := os.Getenv("CARDAUCTION_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CARDAUCTION_TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	st, err := repos.NewGormStoreFromDB(db)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`TRUNCATE auctions, customizations`).Error)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestGormStoreAgainstPostgres(t *testing.T) {
	st := openPostgres(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("update missing row", func(t *testing.T) {
		err := st.Update(ctx, auction("ghost", 1, domain.StatusPending, base))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("activate keeps one active", func(t *testing.T) {
		first := auction("a1", 1, domain.StatusActive, base)
		done, err := st.Activate(ctx, first)
		require.NoError(t, err)
		assert.Empty(t, done)

		c := 2
		second := auction("a2", 2, domain.StatusActive, base.Add(time.Second))
		second.CollectorID = &c
		second.MatchedAttributes = []string{"vintage", "rare"}
		second.TotalValue = 43
		done, err = st.Activate(ctx, second)
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, "a1", done[0].ID)
		assert.Equal(t, domain.StatusCompleted, done[0].Status)

		got, err := st.Get(ctx, "a2")
		require.NoError(t, err)
		assert.True(t, second.Equal(got), "stored %+v", got)

		old, err := st.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, old.Status)

		// re-activating the same id upserts in place
		second.TotalValue = 50
		second.UpdatedAt = base.Add(2 * time.Second)
		done, err = st.Activate(ctx, second)
		require.NoError(t, err)
		assert.Empty(t, done)
		got, err = st.Get(ctx, "a2")
		require.NoError(t, err)
		assert.Equal(t, 50, got.TotalValue)

		list, err := st.List(ctx)
		require.NoError(t, err)
		active := 0
		for _, a := range list {
			if a.Status == domain.StatusActive {
				active++
			}
		}
		assert.Equal(t, 1, active)
	})

	t.Run("overrides ordered by card id", func(t *testing.T) {
		for _, id := range []int{9, 2, 5} {
			require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: id, TitleEn: "t", UpdatedAt: base}))
		}
		require.NoError(t, st.PutOverride(ctx, domain.Override{Kind: domain.KindItem, ID: 5, TitleEn: "again", UpdatedAt: base}))

		list, err := st.ListOverrides(ctx, domain.KindItem)
		require.NoError(t, err)
		ids := make([]int, 0, len(list))
		for _, o := range list {
			ids = append(ids, o.ID)
		}
		assert.Equal(t, []int{2, 5, 9}, ids)

		o, ok, err := st.GetOverride(ctx, domain.KindItem, 5)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "again", o.TitleEn)
	})
}
