package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/services"
)

type GalleryHandler struct {
	Catalog  *services.CatalogService
	Auctions *services.AuctionService
}

// Page serves GET /?kind=items|collectors&lang=en|zh.
func (h *GalleryHandler) Page(c *fiber.Ctx) error {
	kind := domain.KindItem
	if q := c.Query("kind"); q != "" {
		k, ok := domain.ParseKind(q)
		if !ok {
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
		}
		kind = k
	}
	lang := domain.ParseLanguage(c.Query("lang"))
	cards, err := h.Catalog.ListCards(c.UserContext(), kind, lang)
	if err != nil {
		return err
	}
	active, err := h.Auctions.GetActive(c.UserContext())
	if err != nil {
		// the gallery still renders without the banner
		applog.Warn(c, "gallery.active.fail", err, nil)
		active = nil
	}
	return render(c, "gallery", fiber.Map{
		"Kind":   kind,
		"Lang":   lang,
		"Cards":  cards,
		"Active": active,
	})
}
