package services

import (
	"fmt"
	"sync"

	"cardauction/internal/content"
	"cardauction/internal/domain"
)

// MatchTable is a dense (item, collector) lookup. Lookups are total: pairs
// without an authored entry and out-of-range ids both score 0 with no
// attributes.
type MatchTable struct {
	mu           sync.RWMutex
	cells        [domain.MaxItemID + 1][domain.MaxCollectorID + 1]domain.MatchEntry
	translations map[domain.AttributeKey]map[domain.Language]string
}

func NewMatchTable(c *content.Content) *MatchTable {
	t := &MatchTable{translations: make(map[domain.AttributeKey]map[domain.Language]string)}
	if c == nil {
		return t
	}
	for key, byLang := range c.Attributes {
		m := make(map[domain.Language]string, len(byLang))
		for lang, text := range byLang {
			m[domain.Language(lang)] = text
		}
		t.translations[domain.AttributeKey(key)] = m
	}
	for _, m := range c.Matches {
		keys := make([]domain.AttributeKey, len(m.Attributes))
		for i, k := range m.Attributes {
			keys[i] = domain.AttributeKey(k)
		}
		t.cells[m.ItemID][m.CollectorID] = domain.MatchEntry{Score: m.Score, AttributeKeys: keys}
	}
	return t
}

func inTable(itemID, collectorID int) bool {
	return domain.KindItem.InRange(itemID) && domain.KindCollector.InRange(collectorID)
}

// Entry returns the raw cell for a pair.
func (t *MatchTable) Entry(itemID, collectorID int) domain.MatchEntry {
	if !inTable(itemID, collectorID) {
		return domain.MatchEntry{AttributeKeys: []domain.AttributeKey{}}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	e := t.cells[itemID][collectorID]
	keys := make([]domain.AttributeKey, len(e.AttributeKeys))
	copy(keys, e.AttributeKeys)
	return domain.MatchEntry{Score: e.Score, AttributeKeys: keys}
}

// GetMatch resolves the pair's attributes into display strings for lang.
func (t *MatchTable) GetMatch(itemID, collectorID int, lang domain.Language) domain.MatchResult {
	e := t.Entry(itemID, collectorID)
	attrs := make([]string, len(e.AttributeKeys))
	for i, k := range e.AttributeKeys {
		attrs[i] = t.Translate(k, lang)
	}
	return domain.MatchResult{ItemID: itemID, CollectorID: collectorID, Score: e.Score, Attributes: attrs}
}

// Translate falls back to the key itself when there is no entry for lang.
func (t *MatchTable) Translate(key domain.AttributeKey, lang domain.Language) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if text := t.translations[key][lang]; text != "" {
		return text
	}
	return string(key)
}

// SetMatch replaces one cell. Unlike reads, writes reject ids outside the
// table.
func (t *MatchTable) SetMatch(itemID, collectorID, score int, keys []domain.AttributeKey) error {
	if !inTable(itemID, collectorID) {
		return fmt.Errorf("match (%d,%d) out of range: %w", itemID, collectorID, domain.ErrValidation)
	}
	if score < 0 {
		return fmt.Errorf("negative score %d: %w", score, domain.ErrValidation)
	}
	cp := make([]domain.AttributeKey, len(keys))
	copy(cp, keys)
	t.mu.Lock()
	t.cells[itemID][collectorID] = domain.MatchEntry{Score: score, AttributeKeys: cp}
	t.mu.Unlock()
	return nil
}

// Populated counts authored cells with a score or attributes.
func (t *MatchTable) Populated() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for i := 1; i <= domain.MaxItemID; i++ {
		for j := 1; j <= domain.MaxCollectorID; j++ {
			if e := t.cells[i][j]; e.Score > 0 || len(e.AttributeKeys) > 0 {
				n++
			}
		}
	}
	return n
}
