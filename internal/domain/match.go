package domain

// AttributeKey is a language-neutral attribute identifier. Display strings
// come from the attribute translation table; unknown keys render as themselves.
type AttributeKey string

// MatchEntry is one authored cell of the match table.
type MatchEntry struct {
	Score         int            `json:"score"`
	AttributeKeys []AttributeKey `json:"attributes"`
}

// MatchResult is a MatchEntry with attributes resolved for one language.
type MatchResult struct {
	ItemID      int      `json:"itemId"`
	CollectorID int      `json:"collectorId"`
	Score       int      `json:"score"`
	Attributes  []string `json:"attributes"`
}
