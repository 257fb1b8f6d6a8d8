// Package content loads the authored game data: the item and collector
// catalogs, attribute translations and the match table.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cardauction/internal/domain"
)

//go:embed data/content.yaml
var bundled []byte

const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// CardRecord is a raw catalog row. Empty titles fall back to synthesized
// defaults when the catalog resolves a card.
type CardRecord struct {
	ID            int    `yaml:"id" toml:"id"`
	TitleEn       string `yaml:"titleEn" toml:"titleEn"`
	TitleZh       string `yaml:"titleZh" toml:"titleZh"`
	DescriptionEn string `yaml:"descriptionEn" toml:"descriptionEn"`
	DescriptionZh string `yaml:"descriptionZh" toml:"descriptionZh"`
}

type MatchRecord struct {
	ItemID      int      `yaml:"itemId" toml:"itemId"`
	CollectorID int      `yaml:"collectorId" toml:"collectorId"`
	Score       int      `yaml:"score" toml:"score"`
	Attributes  []string `yaml:"attributes" toml:"attributes"`
}

type Content struct {
	Items      []CardRecord                 `yaml:"items" toml:"items"`
	Collectors []CardRecord                 `yaml:"collectors" toml:"collectors"`
	Attributes map[string]map[string]string `yaml:"attributes" toml:"attributes"` // key -> lang -> text
	Matches    []MatchRecord                `yaml:"matches" toml:"matches"`
}

// Default returns the content bundled into the binary.
func Default() (*Content, error) {
	return Parse(bundled, FormatYAML)
}

// Load reads path, picking the decoder from the file extension. An empty
// path yields the bundled content.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return Parse(data, FormatYAML)
	case ".toml":
		return Parse(data, FormatTOML)
	default:
		return nil, fmt.Errorf("unsupported content format %q: %w", ext, domain.ErrValidation)
	}
}

func Parse(data []byte, format string) (*Content, error) {
	var c Content
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse yaml content: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, fmt.Errorf("parse toml content: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported content format %q: %w", format, domain.ErrValidation)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks id ranges, id uniqueness, score signs and translation
// languages.
func (c *Content) Validate() error {
	check := func(kind domain.Kind, recs []CardRecord) error {
		seen := make(map[int]bool, len(recs))
		for _, r := range recs {
			if !kind.InRange(r.ID) {
				return fmt.Errorf("%s id %d out of range 1..%d: %w", kind, r.ID, kind.MaxID(), domain.ErrValidation)
			}
			if seen[r.ID] {
				return fmt.Errorf("duplicate %s id %d: %w", kind, r.ID, domain.ErrValidation)
			}
			seen[r.ID] = true
		}
		return nil
	}
	if err := check(domain.KindItem, c.Items); err != nil {
		return err
	}
	if err := check(domain.KindCollector, c.Collectors); err != nil {
		return err
	}
	type pair struct{ item, collector int }
	seen := make(map[pair]bool, len(c.Matches))
	for _, m := range c.Matches {
		if !domain.KindItem.InRange(m.ItemID) || !domain.KindCollector.InRange(m.CollectorID) {
			return fmt.Errorf("match (%d,%d) out of range: %w", m.ItemID, m.CollectorID, domain.ErrValidation)
		}
		if m.Score < 0 {
			return fmt.Errorf("match (%d,%d) has negative score: %w", m.ItemID, m.CollectorID, domain.ErrValidation)
		}
		p := pair{m.ItemID, m.CollectorID}
		if seen[p] {
			return fmt.Errorf("duplicate match (%d,%d): %w", m.ItemID, m.CollectorID, domain.ErrValidation)
		}
		seen[p] = true
	}
	for key, byLang := range c.Attributes {
		for lang := range byLang {
			switch domain.Language(lang) {
			case domain.LangEN, domain.LangZH:
			default:
				return fmt.Errorf("attribute %q has unsupported language %q: %w", key, lang, domain.ErrValidation)
			}
		}
	}
	return nil
}

// Records returns the catalog rows for kind.
func (c *Content) Records(kind domain.Kind) []CardRecord {
	if kind == domain.KindCollector {
		return c.Collectors
	}
	return c.Items
}

// UnknownAttributeKeys lists keys used by matches that have no translation
// entry. They still render, as themselves.
func (c *Content) UnknownAttributeKeys() []string {
	missing := map[string]bool{}
	for _, m := range c.Matches {
		for _, k := range m.Attributes {
			if _, ok := c.Attributes[k]; !ok {
				missing[k] = true
			}
		}
	}
	out := make([]string, 0, len(missing))
	for k := range missing {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
