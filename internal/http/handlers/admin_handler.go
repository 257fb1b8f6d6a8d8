package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/services"
	"cardauction/internal/validate"
)

type AdminHandler struct {
	Matches  *services.MatchTable
	Catalog  *services.CatalogService
	Auctions *services.AuctionService
}

type setMatchReq struct {
	Score      int      `json:"score"`
	Attributes []string `json:"attributes"`
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	customized := map[domain.Kind]int{}
	for _, kind := range []domain.Kind{domain.KindItem, domain.KindCollector} {
		cards, err := h.Catalog.ListCards(ctx, kind, domain.LangEN)
		if err != nil {
			applog.Error(c, "admin.dashboard.fail", err, nil)
			return fail(c, err)
		}
		for _, card := range cards {
			if card.Customized {
				customized[kind]++
			}
		}
	}
	auctions, err := h.Auctions.ListAuctions(ctx)
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return fail(c, err)
	}
	byStatus := map[domain.AuctionStatus]int{}
	for _, a := range auctions {
		byStatus[a.Status]++
	}
	return c.JSON(fiber.Map{
		"matchesPopulated": h.Matches.Populated(),
		"customized":       customized,
		"auctions":         byStatus,
	})
}

// PUT /admin/matches/:itemId/:collectorId
func (h *AdminHandler) UpdateMatch(c *fiber.Ctx) error {
	itemID, ok := validate.Int(c.Params("itemId"))
	if !ok {
		return badRequest(c, "itemId", "itemId must be an integer")
	}
	collectorID, ok := validate.Int(c.Params("collectorId"))
	if !ok {
		return badRequest(c, "collectorId", "collectorId must be an integer")
	}
	var req setMatchReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if !validate.Score(req.Score) {
		return fail(c, fmt.Errorf("negative score %d: %w", req.Score, domain.ErrValidation))
	}
	keys := make([]domain.AttributeKey, 0, len(req.Attributes))
	for _, raw := range req.Attributes {
		k, ok := validate.AttributeKey(raw)
		if !ok {
			return badRequest(c, "attributes", "invalid attribute key")
		}
		keys = append(keys, k)
	}
	if err := h.Matches.SetMatch(itemID, collectorID, req.Score, keys); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "admin.match.update", map[string]any{"item_id": itemID, "collector_id": collectorID, "score": req.Score})
	return c.JSON(h.Matches.GetMatch(itemID, collectorID, domain.ParseLanguage(c.Query("lang"))))
}
