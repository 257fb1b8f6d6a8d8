package handlers

import (
	"cardauction/internal/content"
	"cardauction/internal/repos"
	"cardauction/internal/services"
)

type Deps struct {
	Catalog       *services.CatalogService
	Matches       *services.MatchTable
	Auctions      *services.AuctionService
	Customization *services.CustomizationService

	CardHandler          *CardHandler
	AuctionHandler       *AuctionHandler
	CustomizationHandler *CustomizationHandler
	MatchHandler         *MatchHandler
	GalleryHandler       *GalleryHandler
	AdminHandler         *AdminHandler
}

// NewDeps wires services and handlers over the primary stores. mirror is the
// optional client-local copy and may be nil.
func NewDeps(stores *repos.Stores, data *content.Content, mirror *repos.KVStore) *Deps {
	catalogSvc := services.NewCatalogService(data, stores.Overrides)
	matchTable := services.NewMatchTable(data)
	auctionSvc := services.NewAuctionService(stores.Auctions, matchTable)
	customSvc := services.NewCustomizationService(stores.Overrides, catalogSvc)
	if mirror != nil {
		auctionSvc.Mirror = mirror
		customSvc.Mirror = mirror
	}

	return &Deps{
		Catalog:       catalogSvc,
		Matches:       matchTable,
		Auctions:      auctionSvc,
		Customization: customSvc,

		CardHandler:          &CardHandler{Catalog: catalogSvc},
		AuctionHandler:       &AuctionHandler{Auctions: auctionSvc},
		CustomizationHandler: &CustomizationHandler{Custom: customSvc},
		MatchHandler:         &MatchHandler{Matches: matchTable},
		GalleryHandler:       &GalleryHandler{Catalog: catalogSvc, Auctions: auctionSvc},
		AdminHandler:         &AdminHandler{Matches: matchTable, Catalog: catalogSvc, Auctions: auctionSvc},
	}
}
