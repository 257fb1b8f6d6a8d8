package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cardauction/internal/content"
	"cardauction/internal/repos"
	"cardauction/internal/services"
)

type fixture struct {
	store   *repos.MemoryStore
	catalog *services.CatalogService
	matches *services.MatchTable
	auction *services.AuctionService
	custom  *services.CustomizationService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c, err := content.Default()
	require.NoError(t, err)
	store := repos.NewMemoryStore()
	catalog := services.NewCatalogService(c, store)
	matches := services.NewMatchTable(c)
	return fixture{
		store:   store,
		catalog: catalog,
		matches: matches,
		auction: services.NewAuctionService(store, matches),
		custom:  services.NewCustomizationService(store, catalog),
	}
}
