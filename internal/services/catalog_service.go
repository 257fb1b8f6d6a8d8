package services

import (
	"context"
	"fmt"

	"cardauction/internal/content"
	"cardauction/internal/domain"
	"cardauction/internal/repos"
)

// CatalogService resolves cards for one language. Each text field comes from
// the customization override if set, then the authored catalog, then a
// synthesized "{Kind} {id}" default.
type CatalogService struct {
	records   map[domain.Kind]map[int]content.CardRecord
	Overrides repos.OverrideStore
}

func NewCatalogService(c *content.Content, overrides repos.OverrideStore) *CatalogService {
	s := &CatalogService{
		records:   make(map[domain.Kind]map[int]content.CardRecord, 2),
		Overrides: overrides,
	}
	for _, kind := range []domain.Kind{domain.KindItem, domain.KindCollector} {
		byID := make(map[int]content.CardRecord)
		if c != nil {
			for _, r := range c.Records(kind) {
				byID[r.ID] = r
			}
		}
		s.records[kind] = byID
	}
	return s
}

// Exists reports whether id names a card of kind. The catalog size is fixed,
// so this is a range check.
func (s *CatalogService) Exists(kind domain.Kind, id int) bool {
	return kind.InRange(id)
}

// ListCards returns every card of kind in ascending id order.
func (s *CatalogService) ListCards(ctx context.Context, kind domain.Kind, lang domain.Language) ([]domain.Card, error) {
	if kind.MaxID() == 0 {
		return nil, fmt.Errorf("unknown kind %q: %w", kind, domain.ErrNotFound)
	}
	overrides, err := s.Overrides.ListOverrides(ctx, kind)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]domain.Override, len(overrides))
	for _, o := range overrides {
		byID[o.ID] = o
	}
	cards := make([]domain.Card, 0, kind.MaxID())
	for id := 1; id <= kind.MaxID(); id++ {
		o, ok := byID[id]
		cards = append(cards, s.resolve(kind, id, lang, o, ok))
	}
	return cards, nil
}

func (s *CatalogService) GetCard(ctx context.Context, kind domain.Kind, id int, lang domain.Language) (domain.Card, error) {
	if !s.Exists(kind, id) {
		return domain.Card{}, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	o, ok, err := s.Overrides.GetOverride(ctx, kind, id)
	if err != nil {
		return domain.Card{}, err
	}
	return s.resolve(kind, id, lang, o, ok), nil
}

func (s *CatalogService) resolve(kind domain.Kind, id int, lang domain.Language, o domain.Override, customized bool) domain.Card {
	rec := s.records[kind][id]
	def := kind.DefaultTitle(id)
	card := domain.Card{
		ID:            id,
		Kind:          kind,
		Language:      lang,
		Image:         kind.ImagePath(id, lang),
		TitleEn:       firstNonEmpty(o.TitleEn, rec.TitleEn, def),
		TitleZh:       firstNonEmpty(o.TitleZh, rec.TitleZh, def),
		DescriptionEn: firstNonEmpty(o.DescriptionEn, rec.DescriptionEn),
		DescriptionZh: firstNonEmpty(o.DescriptionZh, rec.DescriptionZh),
		Customized:    customized,
	}
	if lang == domain.LangZH {
		card.Name, card.Description = card.TitleZh, card.DescriptionZh
	} else {
		card.Name, card.Description = card.TitleEn, card.DescriptionEn
	}
	return card
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
