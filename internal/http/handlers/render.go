package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
)

const friendlyError = "Something went wrong. Please try again."

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

// fail maps a domain error to its status and a JSON {"error": ...} body.
// Storage failures are logged and reported without detail. Anything else goes
// to the app ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		applog.Info(c, "request.not_found", map[string]any{"reason": err.Error()})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		applog.Warn(c, "request.invalid_transition", err, nil)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		applog.Security(c, "validation.fail", map[string]any{"reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrStorage):
		applog.Error(c, "storage.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storage unavailable"})
	}
	return err
}

// badRequest reports malformed input that never reached a service.
func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback. Fiber errors keep their code; any
// other error is logged and answered with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := friendlyError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg = fe.Code, fe.Message
		applog.Info(c, "request.rejected", map[string]any{"code": code})
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if wantsJSON(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func wantsJSON(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/")
}
