package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	"cardauction/internal/services"
	"cardauction/internal/validate"
)

type MatchHandler struct {
	Matches *services.MatchTable
}

// Lookup serves GET /matches/:itemId/:collectorId?lang=. Out-of-range ids
// answer with the zero result.
func (h *MatchHandler) Lookup(c *fiber.Ctx) error {
	itemID, ok := validate.LookupID(c.Params("itemId"))
	if !ok {
		return badRequest(c, "itemId", "itemId must be an integer")
	}
	collectorID, ok := validate.LookupID(c.Params("collectorId"))
	if !ok {
		return badRequest(c, "collectorId", "collectorId must be an integer")
	}
	return c.JSON(h.Matches.GetMatch(itemID, collectorID, domain.ParseLanguage(c.Query("lang"))))
}
