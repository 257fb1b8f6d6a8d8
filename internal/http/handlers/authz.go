package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"

	applog "cardauction/internal/log"
)

// RequireAdmin guards admin routes with basic auth checked against a bcrypt
// hash. An empty hash rejects everyone.
func RequireAdmin(user, passwordHash string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm: "cardauction admin",
		Authorizer: func(u, p string) bool {
			if passwordHash == "" || u != user {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			applog.Security(c, "access.denied.admin", nil)
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="cardauction admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		},
	})
}
