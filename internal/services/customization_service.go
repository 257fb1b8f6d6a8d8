package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/repos"
)

// CustomizationService merges partial text overrides into the override store.
type CustomizationService struct {
	mu        sync.Mutex
	Overrides repos.OverrideStore
	Catalog   *CatalogService
	// Mirror receives a best-effort copy of every written override.
	Mirror repos.OverrideStore
	Now    func() time.Time
}

func NewCustomizationService(overrides repos.OverrideStore, catalog *CatalogService) *CustomizationService {
	return &CustomizationService{
		Overrides: overrides,
		Catalog:   catalog,
		Now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// SetOverride applies the non-empty fields and returns the card resolved for
// lang. A write with nothing new stores nothing.
func (s *CustomizationService) SetOverride(ctx context.Context, kind domain.Kind, id int, fields domain.OverrideFields, lang domain.Language) (domain.Card, error) {
	if !kind.InRange(id) {
		return domain.Card{}, fmt.Errorf("%s id %d out of range: %w", kind, id, domain.ErrValidation)
	}
	s.mu.Lock()
	cur, ok, err := s.Overrides.GetOverride(ctx, kind, id)
	if err != nil {
		s.mu.Unlock()
		return domain.Card{}, err
	}
	if !ok {
		cur = domain.Override{Kind: kind, ID: id}
	}
	next, changed := cur.Merge(fields)
	if changed {
		next.Kind, next.ID = kind, id
		next.UpdatedAt = s.Now()
		if err := s.Overrides.PutOverride(ctx, next); err != nil {
			s.mu.Unlock()
			return domain.Card{}, err
		}
		if s.Mirror != nil {
			if err := s.Mirror.PutOverride(ctx, next); err != nil {
				applog.Warn(nil, "mirror.write_failed", err, map[string]any{"kind": kind, "id": id})
			}
		}
		applog.Info(nil, "customization.saved", map[string]any{"kind": kind, "id": id, "first": !ok})
	}
	s.mu.Unlock()
	return s.Catalog.GetCard(ctx, kind, id, lang)
}

// GetOverride returns the stored override, if any.
func (s *CustomizationService) GetOverride(ctx context.Context, kind domain.Kind, id int) (domain.Override, bool, error) {
	if !kind.InRange(id) {
		return domain.Override{}, false, fmt.Errorf("%s id %d out of range: %w", kind, id, domain.ErrValidation)
	}
	return s.Overrides.GetOverride(ctx, kind, id)
}
