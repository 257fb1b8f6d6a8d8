package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"cardauction/internal/config"
	"cardauction/internal/content"
	"cardauction/internal/http/handlers"
	applog "cardauction/internal/log"
	"cardauction/internal/repos"
)

func main() {
	cfg := config.Load()
	applog.Init(cfg.LogLevel, cfg.LogFile)
	defer applog.Sync()

	data, err := content.Load(cfg.ContentPath)
	if err != nil {
		applog.Error(nil, "content.load.fail", err, map[string]any{"path": cfg.ContentPath})
		os.Exit(1)
	}
	if missing := data.UnknownAttributeKeys(); len(missing) > 0 {
		applog.Warn(nil, "content.attributes.untranslated", nil, map[string]any{"keys": missing})
	}

	stores, err := repos.NewByEngine(cfg.StoreEngine, cfg.DBDSN)
	if err != nil {
		applog.Error(nil, "store.open.fail", err, map[string]any{"engine": cfg.StoreEngine})
		os.Exit(1)
	}
	defer stores.Close()

	var mirror *repos.KVStore
	if cfg.MirrorPath != "" {
		if mirror, err = repos.NewKVStore(cfg.MirrorPath); err != nil {
			// the mirror is optional; run without it
			applog.Warn(nil, "mirror.open.fail", err, map[string]any{"path": cfg.MirrorPath})
			mirror = nil
		}
	}

	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/images/") || c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	// access log
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		applog.Debug(c, "http.access", map[string]any{"ms": time.Since(start).Milliseconds()})
		return err
	})

	// ---------- Static assets ----------
	app.Static("/images", "./web/images")

	deps := handlers.NewDeps(stores, data, mirror)
	handlers.Register(app, deps, cfg)

	applog.Info(nil, "content.loaded", map[string]any{
		"items":      len(data.Items),
		"collectors": len(data.Collectors),
		"matches":    deps.Matches.Populated(),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		applog.Info(nil, "server.shutdown", nil)
		_ = app.Shutdown()
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen.fail", err, nil)
	}
}
