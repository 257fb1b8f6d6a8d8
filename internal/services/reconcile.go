package services

import "cardauction/internal/domain"

// Resolution is the outcome of reconciling the active auction held by the
// primary store with the one held by the client-local mirror. Writes are
// upserts: active auctions go through AuctionStore.Activate, the rest through
// Update or Insert.
type Resolution struct {
	Active       *domain.Auction
	PrimaryWrite []domain.Auction
	MirrorWrite  []domain.Auction
}

// Changed reports whether applying r writes anything.
func (r Resolution) Changed() bool { return len(r.PrimaryWrite)+len(r.MirrorWrite) > 0 }

// Reconcile decides which active auction wins. primary and mirror are the
// active auctions of each store (nil when none). held is the primary's copy
// of mirror.ID when that differs from primary.ID, nil otherwise.
//
// Equal sides are left alone. A missing side takes the present one. When both
// are present the later UpdatedAt wins and ties go to the primary. A mirror
// auction the primary already holds at an equal or newer UpdatedAt is stale
// and is overwritten with the primary's copy.
//
// Applying the result and reconciling again yields no writes.
func Reconcile(primary, mirror, held *domain.Auction) Resolution {
	switch {
	case primary == nil && mirror == nil:
		return Resolution{}
	case primary != nil && mirror != nil && primary.Equal(*mirror):
		return Resolution{Active: clonePtr(primary)}
	}

	if mirror != nil && held != nil && held.ID == mirror.ID && !held.UpdatedAt.Before(mirror.UpdatedAt) {
		r := Resolution{Active: clonePtr(primary), MirrorWrite: []domain.Auction{held.Clone()}}
		if primary != nil {
			r.MirrorWrite = append(r.MirrorWrite, primary.Clone())
		}
		return r
	}

	switch {
	case mirror == nil:
		return Resolution{Active: clonePtr(primary), MirrorWrite: []domain.Auction{primary.Clone()}}
	case primary == nil:
		return Resolution{Active: clonePtr(mirror), PrimaryWrite: []domain.Auction{mirror.Clone()}}
	case mirror.UpdatedAt.After(primary.UpdatedAt):
		return Resolution{Active: clonePtr(mirror), PrimaryWrite: []domain.Auction{mirror.Clone()}}
	default:
		return Resolution{Active: clonePtr(primary), MirrorWrite: []domain.Auction{primary.Clone()}}
	}
}

func clonePtr(a *domain.Auction) *domain.Auction {
	if a == nil {
		return nil
	}
	c := a.Clone()
	return &c
}
