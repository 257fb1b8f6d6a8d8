package repos

import (
	"context"
	"slices"
	"sync"

	"cardauction/internal/domain"
)

type overrideKey struct {
	kind domain.Kind
	id   int
}

// MemoryStore keeps auctions and overrides in process memory. Writers build a
// new slice or map and swap it in, so readers never see a half-applied write.
type MemoryStore struct {
	mu        sync.RWMutex
	auctions  []domain.Auction
	overrides map[overrideKey]domain.Override
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{overrides: make(map[overrideKey]domain.Override)}
}

func (m *MemoryStore) List(_ context.Context) ([]domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Auction, len(m.auctions))
	for i, a := range m.auctions {
		out[i] = a.Clone()
	}
	slices.SortFunc(out, newerFirst)
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.auctions {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return domain.Auction{}, domain.ErrNotFound
}

func (m *MemoryStore) Insert(_ context.Context, a domain.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.auctions {
		if cur.ID == a.ID {
			return domain.StorageErr("insert auction", errDuplicateID(a.ID))
		}
	}
	next := make([]domain.Auction, len(m.auctions), len(m.auctions)+1)
	copy(next, m.auctions)
	m.auctions = append(next, a.Clone())
	return nil
}

func (m *MemoryStore) Update(_ context.Context, a domain.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.auctions {
		if cur.ID == a.ID {
			next := slices.Clone(m.auctions)
			next[i] = a.Clone()
			m.auctions = next
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MemoryStore) Activate(_ context.Context, a domain.Auction) ([]domain.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, completed := activate(m.auctions, a)
	m.auctions = next
	return completed, nil
}

func (m *MemoryStore) GetOverride(_ context.Context, kind domain.Kind, id int) (domain.Override, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.overrides[overrideKey{kind, id}]
	return o, ok, nil
}

func (m *MemoryStore) ListOverrides(_ context.Context, kind domain.Kind) ([]domain.Override, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Override, 0)
	for k, o := range m.overrides {
		if k.kind == kind {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Override) int { return a.ID - b.ID })
	return out, nil
}

func (m *MemoryStore) PutOverride(_ context.Context, o domain.Override) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make(map[overrideKey]domain.Override, len(m.overrides)+1)
	for k, v := range m.overrides {
		next[k] = v
	}
	next[overrideKey{o.Kind, o.ID}] = o
	m.overrides = next
	return nil
}

// activate is shared by the in-process engines. It never mutates cur.
func activate(cur []domain.Auction, a domain.Auction) (next, completed []domain.Auction) {
	next = make([]domain.Auction, 0, len(cur)+1)
	replaced := false
	for _, x := range cur {
		switch {
		case x.ID == a.ID:
			next = append(next, a.Clone())
			replaced = true
		case x.Status == domain.StatusActive:
			done := x.Clone()
			done.Status = domain.StatusCompleted
			done.UpdatedAt = a.UpdatedAt
			next = append(next, done)
			completed = append(completed, done.Clone())
		default:
			next = append(next, x)
		}
	}
	if !replaced {
		next = append(next, a.Clone())
	}
	return next, completed
}
