package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/services"
	"cardauction/internal/validate"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 2000
)

type CustomizationHandler struct {
	Custom *services.CustomizationService
}

// Put serves PUT /customizations/:kind/:id?lang=.
func (h *CustomizationHandler) Put(c *fiber.Ctx) error {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	id, err := cardIDForWrite(kind, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	var req domain.OverrideFields
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	fields := domain.OverrideFields{}
	for _, f := range []struct {
		name string
		in   *string
		out  **string
		max  int
	}{
		{"titleEn", req.TitleEn, &fields.TitleEn, maxTitleLen},
		{"titleZh", req.TitleZh, &fields.TitleZh, maxTitleLen},
		{"descriptionEn", req.DescriptionEn, &fields.DescriptionEn, maxDescriptionLen},
		{"descriptionZh", req.DescriptionZh, &fields.DescriptionZh, maxDescriptionLen},
	} {
		v, ok := validate.Text(f.in, f.max)
		if !ok {
			return badRequest(c, f.name, fmt.Sprintf("%s longer than %d characters", f.name, f.max))
		}
		*f.out = v
	}

	card, err := h.Custom.SetOverride(c.UserContext(), kind, id, fields, domain.ParseLanguage(c.Query("lang")))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "customization.update", map[string]any{"kind": kind, "id": id})
	return c.JSON(card)
}

// Get serves GET /customizations/:kind/:id.
func (h *CustomizationHandler) Get(c *fiber.Ctx) error {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	id, ok := validate.CardID(kind, c.Params("id"))
	if !ok {
		return fail(c, domain.ErrNotFound)
	}
	o, found, err := h.Custom.GetOverride(c.UserContext(), kind, id)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return fail(c, domain.ErrNotFound)
	}
	return c.JSON(o)
}

// cardIDForWrite rejects out-of-domain ids as validation errors.
func cardIDForWrite(kind domain.Kind, raw string) (int, error) {
	id, ok := validate.Int(raw)
	if !ok || !kind.InRange(id) {
		return 0, fmt.Errorf("%s id %q out of range 1..%d: %w", kind, raw, kind.MaxID(), domain.ErrValidation)
	}
	return id, nil
}
