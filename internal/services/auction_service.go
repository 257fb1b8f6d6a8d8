package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cardauction/internal/domain"
	applog "cardauction/internal/log"
	"cardauction/internal/repos"
)

// AuctionService owns auction transitions. A single mutex serializes every
// mutation so two callers can never both observe "no active auction" and
// both start one.
type AuctionService struct {
	mu      sync.Mutex
	Store   repos.AuctionStore
	Matches *MatchTable
	// Mirror is the optional client-local copy. Writes to it are best-effort
	// and GetActive reconciles against it.
	Mirror repos.AuctionStore
	Now    func() time.Time
	NewID  func() string

	last time.Time
}

func NewAuctionService(store repos.AuctionStore, matches *MatchTable) *AuctionService {
	return &AuctionService{
		Store:   store,
		Matches: matches,
		Now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		NewID:   uuid.NewString,
	}
}

// tick returns a timestamp strictly after the previous one so UpdatedAt
// ordering is total within the process. Microsecond resolution survives every
// engine's round trip. Callers hold s.mu.
func (s *AuctionService) tick() time.Time {
	t := s.Now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func checkItem(itemID int) error {
	if !domain.KindItem.InRange(itemID) {
		return fmt.Errorf("item id %d out of range 1..%d: %w", itemID, domain.MaxItemID, domain.ErrValidation)
	}
	return nil
}

func checkCollector(collectorID int) error {
	if !domain.KindCollector.InRange(collectorID) {
		return fmt.Errorf("collector id %d out of range 1..%d: %w", collectorID, domain.MaxCollectorID, domain.ErrValidation)
	}
	return nil
}

func (s *AuctionService) ListAuctions(ctx context.Context) ([]domain.Auction, error) {
	return s.Store.List(ctx)
}

func (s *AuctionService) GetAuction(ctx context.Context, id string) (domain.Auction, error) {
	a, err := s.Store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Auction{}, fmt.Errorf("auction %s: %w", id, domain.ErrNotFound)
	}
	return a, err
}

// StartAuction puts itemID up for auction, completing the current active
// auction first.
func (s *AuctionService) StartAuction(ctx context.Context, itemID int) (domain.Auction, error) {
	if err := checkItem(itemID); err != nil {
		return domain.Auction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, itemID)
}

func (s *AuctionService) startLocked(ctx context.Context, itemID int) (domain.Auction, error) {
	now := s.tick()
	a := domain.Auction{
		ID:                s.NewID(),
		ItemID:            itemID,
		Status:            domain.StatusActive,
		Language:          domain.LangEN,
		MatchedAttributes: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.activateLocked(ctx, a); err != nil {
		return domain.Auction{}, err
	}
	return a, nil
}

// activateLocked stores a as the active auction in the primary, then mirrors
// the auctions that changed.
func (s *AuctionService) activateLocked(ctx context.Context, a domain.Auction) error {
	completed, err := s.Store.Activate(ctx, a)
	if err != nil {
		return err
	}
	for _, done := range completed {
		applog.Info(nil, "auction.completed", map[string]any{"auction_id": done.ID, "item_id": done.ItemID, "reason": "superseded"})
	}
	s.mirror(ctx, a)
	applog.Info(nil, "auction.active", map[string]any{"auction_id": a.ID, "item_id": a.ItemID})
	return nil
}

// QueueAuction records a pending auction for itemID without touching the
// active one.
func (s *AuctionService) QueueAuction(ctx context.Context, itemID int) (domain.Auction, error) {
	if err := checkItem(itemID); err != nil {
		return domain.Auction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	a := domain.Auction{
		ID:                s.NewID(),
		ItemID:            itemID,
		Status:            domain.StatusPending,
		Language:          domain.LangEN,
		MatchedAttributes: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.Insert(ctx, a); err != nil {
		return domain.Auction{}, err
	}
	s.mirror(ctx, a)
	return a, nil
}

// Activate moves a pending auction to active under the same single-active
// rule as StartAuction.
func (s *AuctionService) Activate(ctx context.Context, id string) (domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return domain.Auction{}, err
	}
	if !a.Status.CanTransition(domain.StatusActive) {
		return a, fmt.Errorf("auction %s is %s: %w", id, a.Status, domain.ErrInvalidTransition)
	}
	a.Status = domain.StatusActive
	a.UpdatedAt = s.tick()
	if err := s.activateLocked(ctx, a); err != nil {
		return domain.Auction{}, err
	}
	return a, nil
}

// SelectCollector scores the auction's item against collectorID. The auction
// must be active.
func (s *AuctionService) SelectCollector(ctx context.Context, auctionID string, collectorID int, lang domain.Language) (domain.Auction, error) {
	if err := checkCollector(collectorID); err != nil {
		return domain.Auction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return domain.Auction{}, err
	}
	return s.selectLocked(ctx, a, collectorID, lang)
}

func (s *AuctionService) selectLocked(ctx context.Context, a domain.Auction, collectorID int, lang domain.Language) (domain.Auction, error) {
	if a.Status != domain.StatusActive {
		return a, fmt.Errorf("auction %s is %s: %w", a.ID, a.Status, domain.ErrInvalidTransition)
	}
	m := s.Matches.GetMatch(a.ItemID, collectorID, lang)
	next := a.Clone()
	next.CollectorID = &collectorID
	next.Language = lang
	next.MatchedAttributes = m.Attributes
	next.TotalValue = m.Score
	next.UpdatedAt = s.tick()
	if err := s.Store.Update(ctx, next); err != nil {
		return domain.Auction{}, err
	}
	s.mirror(ctx, next)
	return next, nil
}

// CompleteAuction ends an active auction. Completing a completed auction
// returns it unchanged.
func (s *AuctionService) CompleteAuction(ctx context.Context, id string) (domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return domain.Auction{}, err
	}
	return s.completeLocked(ctx, a)
}

func (s *AuctionService) completeLocked(ctx context.Context, a domain.Auction) (domain.Auction, error) {
	switch a.Status {
	case domain.StatusCompleted:
		return a, nil
	case domain.StatusActive:
	default:
		return a, fmt.Errorf("auction %s is %s: %w", a.ID, a.Status, domain.ErrInvalidTransition)
	}
	next := a.Clone()
	next.Status = domain.StatusCompleted
	next.UpdatedAt = s.tick()
	if err := s.Store.Update(ctx, next); err != nil {
		return domain.Auction{}, err
	}
	s.mirror(ctx, next)
	applog.Info(nil, "auction.completed", map[string]any{"auction_id": next.ID, "item_id": next.ItemID, "total_value": next.TotalValue})
	return next, nil
}

// UpdateStatus applies a requested status change.
func (s *AuctionService) UpdateStatus(ctx context.Context, id string, status domain.AuctionStatus) (domain.Auction, error) {
	switch status {
	case domain.StatusActive:
		return s.Activate(ctx, id)
	case domain.StatusCompleted:
		return s.CompleteAuction(ctx, id)
	}
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return domain.Auction{}, err
	}
	return a, fmt.Errorf("auction %s cannot move from %s to %s: %w", id, a.Status, status, domain.ErrInvalidTransition)
}

// NextItem completes the current auction and starts one for the following
// item, wrapping after the last item. With nothing active it starts item 1.
func (s *AuctionService) NextItem(ctx context.Context) (domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.activeLocked(ctx)
	if err != nil {
		return domain.Auction{}, err
	}
	next := 1
	if cur != nil {
		next = cur.ItemID%domain.MaxItemID + 1
	}
	return s.startLocked(ctx, next)
}

// Match scores itemID against collectorID on the active auction, starting a
// new auction for itemID when the active one is for another item or absent.
func (s *AuctionService) Match(ctx context.Context, itemID, collectorID int, lang domain.Language) (domain.Auction, error) {
	if err := checkItem(itemID); err != nil {
		return domain.Auction{}, err
	}
	if err := checkCollector(collectorID); err != nil {
		return domain.Auction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.activeLocked(ctx)
	if err != nil {
		return domain.Auction{}, err
	}
	var a domain.Auction
	if cur != nil && cur.ItemID == itemID {
		a = *cur
	} else if a, err = s.startLocked(ctx, itemID); err != nil {
		return domain.Auction{}, err
	}
	return s.selectLocked(ctx, a, collectorID, lang)
}

// GetActive returns the active auction or nil. With a mirror configured both
// stores are reconciled first.
func (s *AuctionService) GetActive(ctx context.Context) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(ctx)
}

func (s *AuctionService) activeLocked(ctx context.Context) (*domain.Auction, error) {
	primary, err := activeIn(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	if s.Mirror == nil {
		return primary, nil
	}
	mirror, err := activeIn(ctx, s.Mirror)
	if err != nil {
		applog.Warn(nil, "mirror.read_failed", err, nil)
		return primary, nil
	}
	return s.reconcileLocked(ctx, primary, mirror, true)
}

// SyncActive reconciles the primary store with the active auction reported
// by a client mirror and returns the winner.
func (s *AuctionService) SyncActive(ctx context.Context, client *domain.Auction) (*domain.Auction, error) {
	if client != nil {
		if err := checkClientAuction(*client); err != nil {
			return nil, err
		}
		c := s.normalizeClient(*client)
		client = &c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	primary, err := activeIn(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	return s.reconcileLocked(ctx, primary, client, s.Mirror != nil)
}

// normalizeClient rebuilds the derived fields of a client auction from the
// match table and truncates its timestamps to the precision every engine keeps.
func (s *AuctionService) normalizeClient(a domain.Auction) domain.Auction {
	c := a.Clone()
	c.Language = domain.ParseLanguage(string(c.Language))
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Microsecond)
	c.UpdatedAt = c.UpdatedAt.UTC().Truncate(time.Microsecond)
	c.MatchedAttributes = []string{}
	c.TotalValue = 0
	if c.CollectorID != nil {
		m := s.Matches.GetMatch(c.ItemID, *c.CollectorID, c.Language)
		c.MatchedAttributes = m.Attributes
		c.TotalValue = m.Score
	}
	return c
}

func (s *AuctionService) reconcileLocked(ctx context.Context, primary, mirror *domain.Auction, writeMirror bool) (*domain.Auction, error) {
	var held *domain.Auction
	if mirror != nil && (primary == nil || primary.ID != mirror.ID) {
		h, err := s.Store.Get(ctx, mirror.ID)
		switch {
		case err == nil:
			held = &h
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	res := Reconcile(primary, mirror, held)
	for _, a := range res.PrimaryWrite {
		if err := put(ctx, s.Store, a); err != nil {
			return nil, err
		}
		s.observe(a.UpdatedAt)
	}
	if writeMirror {
		for _, a := range res.MirrorWrite {
			s.mirror(ctx, a)
		}
	}
	if res.Changed() {
		fields := map[string]any{"primary_writes": len(res.PrimaryWrite), "mirror_writes": len(res.MirrorWrite)}
		if res.Active != nil {
			fields["auction_id"] = res.Active.ID
		}
		applog.Info(nil, "auction.reconciled", fields)
	}
	return res.Active, nil
}

// observe keeps tick ahead of timestamps adopted from the mirror.
func (s *AuctionService) observe(t time.Time) {
	if t.After(s.last) {
		s.last = t
	}
}

// mirror writes a through to the client-local copy. Failures are logged and
// never fail the primary operation.
func (s *AuctionService) mirror(ctx context.Context, a domain.Auction) {
	if s.Mirror == nil {
		return
	}
	if err := put(ctx, s.Mirror, a); err != nil {
		applog.Warn(nil, "mirror.write_failed", err, map[string]any{"auction_id": a.ID})
		return
	}
	if sel, ok := s.Mirror.(repos.SelectionStore); ok && a.Status == domain.StatusActive {
		pointer := domain.Selection{AuctionID: a.ID, ItemID: a.ItemID}
		if a.CollectorID != nil {
			pointer.CollectorID = *a.CollectorID
		}
		if err := sel.SetSelection(ctx, pointer); err != nil {
			applog.Warn(nil, "mirror.write_failed", err, map[string]any{"auction_id": a.ID, "key": repos.KeySelected})
		}
	}
}

func put(ctx context.Context, st repos.AuctionStore, a domain.Auction) error {
	if a.Status == domain.StatusActive {
		_, err := st.Activate(ctx, a)
		return err
	}
	err := st.Update(ctx, a)
	if errors.Is(err, domain.ErrNotFound) {
		return st.Insert(ctx, a)
	}
	return err
}

func activeIn(ctx context.Context, st repos.AuctionStore) (*domain.Auction, error) {
	list, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		if a.Status == domain.StatusActive {
			return &a, nil
		}
	}
	return nil, nil
}

func checkClientAuction(a domain.Auction) error {
	if a.ID == "" {
		return fmt.Errorf("auction id required: %w", domain.ErrValidation)
	}
	if a.Status != domain.StatusActive {
		return fmt.Errorf("client auction must be active, got %q: %w", a.Status, domain.ErrValidation)
	}
	if err := checkItem(a.ItemID); err != nil {
		return err
	}
	if a.CollectorID != nil {
		if err := checkCollector(*a.CollectorID); err != nil {
			return err
		}
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		return fmt.Errorf("timestamps required: %w", domain.ErrValidation)
	}
	return nil
}
