package domain

import "time"

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	// StatusPending is a queued auction that has not been put up yet.
	StatusPending AuctionStatus = "pending"
	// StatusActive is the single in-flight auction accepting a collector.
	StatusActive AuctionStatus = "active"
	// StatusCompleted is terminal.
	StatusCompleted AuctionStatus = "completed"
)

func ParseStatus(s string) (AuctionStatus, bool) {
	switch AuctionStatus(s) {
	case StatusPending, StatusActive, StatusCompleted:
		return AuctionStatus(s), true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is allowed.
// completed -> completed is accepted so repeated completion is a no-op.
func (s AuctionStatus) CanTransition(next AuctionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive
	case StatusActive:
		return next == StatusCompleted
	case StatusCompleted:
		return next == StatusCompleted
	}
	return false
}

type Auction struct {
	ID                string        `json:"id"`
	ItemID            int           `json:"itemId"`
	CollectorID       *int          `json:"collectorId"`
	Status            AuctionStatus `json:"status"`
	Language          Language      `json:"lang,omitempty"`
	MatchedAttributes []string      `json:"matchedAttributes"`
	TotalValue        int           `json:"totalValue"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with a.
func (a Auction) Clone() Auction {
	if a.CollectorID != nil {
		id := *a.CollectorID
		a.CollectorID = &id
	}
	attrs := make([]string, len(a.MatchedAttributes))
	copy(attrs, a.MatchedAttributes)
	a.MatchedAttributes = attrs
	return a
}

// Equal compares every persisted field. Timestamps compare by instant.
func (a Auction) Equal(b Auction) bool {
	if a.ID != b.ID || a.ItemID != b.ItemID || a.Status != b.Status ||
		a.Language != b.Language || a.TotalValue != b.TotalValue {
		return false
	}
	if (a.CollectorID == nil) != (b.CollectorID == nil) {
		return false
	}
	if a.CollectorID != nil && *a.CollectorID != *b.CollectorID {
		return false
	}
	if len(a.MatchedAttributes) != len(b.MatchedAttributes) {
		return false
	}
	for i := range a.MatchedAttributes {
		if a.MatchedAttributes[i] != b.MatchedAttributes[i] {
			return false
		}
	}
	return a.CreatedAt.Equal(b.CreatedAt) && a.UpdatedAt.Equal(b.UpdatedAt)
}

// Selection is the "currently selected" pointer kept next to the auction list
// in the client-local store.
type Selection struct {
	AuctionID   string `json:"auctionId,omitempty"`
	ItemID      int    `json:"itemId,omitempty"`
	CollectorID int    `json:"collectorId,omitempty"`
}
