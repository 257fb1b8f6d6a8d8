package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardauction/internal/domain"
)

const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EngineJSON     = "json"
	EnginePostgres = "postgres"
)

// AuctionStore persists auctions. Every method is all-or-nothing: on error
// nothing was written.
type AuctionStore interface {
	// List returns every auction, newest first.
	List(ctx context.Context) ([]domain.Auction, error)
	// Get returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (domain.Auction, error)
	Insert(ctx context.Context, a domain.Auction) error
	// Update replaces an existing auction, domain.ErrNotFound if absent.
	Update(ctx context.Context, a domain.Auction) error
	// Activate completes every other active auction (stamped with
	// a.UpdatedAt) and upserts a, in one step. It returns the auctions it
	// completed.
	Activate(ctx context.Context, a domain.Auction) ([]domain.Auction, error)
}

// OverrideStore persists customization overrides keyed by (kind, id).
type OverrideStore interface {
	GetOverride(ctx context.Context, kind domain.Kind, id int) (domain.Override, bool, error)
	// ListOverrides returns the overrides of one kind in ascending id order.
	ListOverrides(ctx context.Context, kind domain.Kind) ([]domain.Override, error)
	PutOverride(ctx context.Context, o domain.Override) error
}

// SelectionStore is implemented by stores that also keep the client's
// "currently selected" pointer.
type SelectionStore interface {
	Selection(ctx context.Context) (domain.Selection, error)
	SetSelection(ctx context.Context, s domain.Selection) error
}

type Stores struct {
	Auctions  AuctionStore
	Overrides OverrideStore
	close     func() error
}

func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// NewByEngine opens the backend named by engine. dsn is a file path for
// sqlite and json, a connection string for postgres, and ignored for memory.
func NewByEngine(engine, dsn string) (*Stores, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite:
		db, err := OpenDB(dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{Auctions: NewAuctionRepo(db), Overrides: NewOverrideRepo(db), close: db.Close}, nil
	case EngineMemory:
		m := NewMemoryStore()
		return &Stores{Auctions: m, Overrides: m}, nil
	case EngineJSON:
		kv, err := NewKVStore(dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{Auctions: kv, Overrides: kv}, nil
	case EnginePostgres:
		g, err := NewGormStore(dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{Auctions: g, Overrides: g, close: g.Close}, nil
	default:
		return nil, errors.New("unsupported store engine: " + engine)
	}
}

// newerFirst orders by CreatedAt descending, ties broken by id so the order
// is stable across engines. Use with slices.SortFunc.
func newerFirst(a, b domain.Auction) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}

func errDuplicateID(id string) error { return fmt.Errorf("auction %s already exists", id) }
