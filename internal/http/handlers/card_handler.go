package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	"cardauction/internal/services"
	"cardauction/internal/validate"
)

type CardHandler struct {
	Catalog *services.CatalogService
}

// List serves GET /cards/:kind?lang=.
func (h *CardHandler) List(c *fiber.Ctx) error {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	cards, err := h.Catalog.ListCards(c.UserContext(), kind, domain.ParseLanguage(c.Query("lang")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cards)
}

// Get serves GET /cards/:kind/:id?lang=.
func (h *CardHandler) Get(c *fiber.Ctx) error {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	id, ok := validate.CardID(kind, c.Params("id"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	card, err := h.Catalog.GetCard(c.UserContext(), kind, id, domain.ParseLanguage(c.Query("lang")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(card)
}
