package domain

import (
	"strconv"
	"strings"
	"time"
)

// Kind separates the two card catalogs. Items are auction goods, collectors
// are the bidder personas matched against them.
type Kind string

const (
	KindItem      Kind = "item"
	KindCollector Kind = "collector"
)

// Catalog sizes are fixed; ids run from 1 to the max inclusive.
const (
	MaxItemID      = 72
	MaxCollectorID = 30
)

func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	// routes use the plural form (/cards/items)
	s = strings.TrimSuffix(s, "s")
	switch Kind(s) {
	case KindItem, KindCollector:
		return Kind(s), true
	}
	return "", false
}

func (k Kind) MaxID() int {
	switch k {
	case KindItem:
		return MaxItemID
	case KindCollector:
		return MaxCollectorID
	}
	return 0
}

// InRange reports whether id is a valid catalog id for k.
func (k Kind) InRange(id int) bool { return id >= 1 && id <= k.MaxID() }

// Label is the display prefix used for synthesized titles.
func (k Kind) Label() string {
	if k == KindCollector {
		return "Collector"
	}
	return "Item"
}

func (k Kind) DefaultTitle(id int) string { return k.Label() + " " + strconv.Itoa(id) }

// ImagePath is derived from kind, id and language and never stored.
func (k Kind) ImagePath(id int, lang Language) string {
	return "/images/" + string(k) + "s/" + string(lang) + "/" + strconv.Itoa(id) + ".jpg"
}

// Language is one of the two supported display languages.
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// ParseLanguage never fails: empty or unsupported values fall back to English.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangZH:
		return LangZH
	default:
		return LangEN
	}
}

// Card is a catalog entry resolved for one language, with any customization
// override already merged in.
type Card struct {
	ID            int      `json:"id"`
	Kind          Kind     `json:"kind"`
	Language      Language `json:"lang"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	TitleEn       string   `json:"titleEn"`
	TitleZh       string   `json:"titleZh"`
	DescriptionEn string   `json:"descriptionEn"`
	DescriptionZh string   `json:"descriptionZh"`
	Customized    bool     `json:"customized"`
}

// Override holds per-card text that replaces catalog defaults at read time.
type Override struct {
	Kind          Kind      `json:"kind"`
	ID            int       `json:"id"`
	TitleEn       string    `json:"titleEn,omitempty"`
	TitleZh       string    `json:"titleZh,omitempty"`
	DescriptionEn string    `json:"descriptionEn,omitempty"`
	DescriptionZh string    `json:"descriptionZh,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OverrideFields is a partial update. Nil and empty values leave the stored
// override untouched; there is no way to clear a field.
type OverrideFields struct {
	TitleEn       *string `json:"titleEn,omitempty"`
	TitleZh       *string `json:"titleZh,omitempty"`
	DescriptionEn *string `json:"descriptionEn,omitempty"`
	DescriptionZh *string `json:"descriptionZh,omitempty"`
}

// Merge applies f over o and reports whether any field changed.
func (o Override) Merge(f OverrideFields) (Override, bool) {
	changed := false
	set := func(dst *string, v *string) {
		if v == nil || *v == "" || *dst == *v {
			return
		}
		*dst = *v
		changed = true
	}
	set(&o.TitleEn, f.TitleEn)
	set(&o.TitleZh, f.TitleZh)
	set(&o.DescriptionEn, f.DescriptionEn)
	set(&o.DescriptionZh, f.DescriptionZh)
	return o, changed
}
