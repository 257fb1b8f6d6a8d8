package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"cardauction/internal/config"
	applog "cardauction/internal/log"
)

// Register mounts every route on app. Middleware is left to the caller.
func Register(app *fiber.App, d *Deps, cfg config.Config) {
	app.Get("/", d.GalleryHandler.Page)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")
	api.Get("/cards/:kind", d.CardHandler.List)
	api.Get("/cards/:kind/:id", d.CardHandler.Get)

	// literal segments before /auctions/:id
	api.Get("/auctions", d.AuctionHandler.List)
	api.Post("/auctions", d.AuctionHandler.Create)
	api.Get("/auctions/active", d.AuctionHandler.Active)
	api.Put("/auctions/active/sync", d.AuctionHandler.Sync)
	api.Post("/auctions/next", d.AuctionHandler.Next)
	api.Post("/auctions/match/:itemId/:collectorId", d.AuctionHandler.Match)
	api.Get("/auctions/:id", d.AuctionHandler.Get)
	api.Put("/auctions/:id", d.AuctionHandler.Update)

	api.Get("/matches/:itemId/:collectorId", d.MatchHandler.Lookup)

	api.Get("/customizations/:kind/:id", d.CustomizationHandler.Get)
	api.Put("/customizations/:kind/:id", d.CustomizationHandler.Put)

	admin := app.Group("/admin",
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|admin"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.admin.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}),
		RequireAdmin(cfg.AdminUser, cfg.AdminPasswordHash),
	)
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Put("/matches/:itemId/:collectorId", d.AdminHandler.UpdateMatch)

	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
}
