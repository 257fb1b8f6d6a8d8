package repos

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"cardauction/internal/domain"
)

// Fixed keys of the client-local store. Values are JSON blobs, the same shape
// the browser keeps in localStorage.
const (
	KeyItemOverrides      = "cardauction.items"
	KeyCollectorOverrides = "cardauction.collectors"
	KeyAuctions           = "cardauction.auctions"
	KeySelected           = "cardauction.selected"
)

// KVStore is a string-to-JSON key/value file. It backs the "json" engine and
// the client-local mirror.
type KVStore struct {
	filePath string
	mu       sync.RWMutex
	data     map[string]string
}

func NewKVStore(filePath string) (*KVStore, error) {
	s := &KVStore{filePath: filePath, data: make(map[string]string)}
	if err := s.load(); err != nil {
		return nil, domain.StorageErr("load kv store", err)
	}
	return s, nil
}

// Raw returns the blob stored under key.
func (s *KVStore) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *KVStore) List(_ context.Context) ([]domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, err := s.auctionsLocked()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(list, newerFirst)
	return list, nil
}

func (s *KVStore) Get(_ context.Context, id string) (domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, err := s.auctionsLocked()
	if err != nil {
		return domain.Auction{}, err
	}
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Auction{}, domain.ErrNotFound
}

func (s *KVStore) Insert(_ context.Context, a domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.auctionsLocked()
	if err != nil {
		return err
	}
	for _, cur := range list {
		if cur.ID == a.ID {
			return domain.StorageErr("insert auction", errDuplicateID(a.ID))
		}
	}
	return s.putLocked(KeyAuctions, append(list, a))
}

func (s *KVStore) Update(_ context.Context, a domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.auctionsLocked()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return s.putLocked(KeyAuctions, list)
		}
	}
	return domain.ErrNotFound
}

func (s *KVStore) Activate(_ context.Context, a domain.Auction) ([]domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.auctionsLocked()
	if err != nil {
		return nil, err
	}
	next, completed := activate(list, a)
	if err := s.putLocked(KeyAuctions, next); err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *KVStore) GetOverride(_ context.Context, kind domain.Kind, id int) (domain.Override, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, err := s.overridesLocked(kind)
	if err != nil {
		return domain.Override{}, false, err
	}
	o, ok := m[strconv.Itoa(id)]
	return o, ok, nil
}

func (s *KVStore) ListOverrides(_ context.Context, kind domain.Kind) ([]domain.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, err := s.overridesLocked(kind)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Override, 0, len(m))
	for _, o := range m {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b domain.Override) int { return a.ID - b.ID })
	return out, nil
}

func (s *KVStore) PutOverride(_ context.Context, o domain.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.overridesLocked(o.Kind)
	if err != nil {
		return err
	}
	m[strconv.Itoa(o.ID)] = o
	return s.putLocked(overrideKeyFor(o.Kind), m)
}

func (s *KVStore) Selection(_ context.Context) (domain.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sel domain.Selection
	if err := s.getLocked(KeySelected, &sel); err != nil {
		return domain.Selection{}, err
	}
	return sel, nil
}

func (s *KVStore) SetSelection(_ context.Context, sel domain.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(KeySelected, sel)
}

func overrideKeyFor(kind domain.Kind) string {
	if kind == domain.KindCollector {
		return KeyCollectorOverrides
	}
	return KeyItemOverrides
}

func (s *KVStore) auctionsLocked() ([]domain.Auction, error) {
	list := []domain.Auction{}
	if err := s.getLocked(KeyAuctions, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *KVStore) overridesLocked(kind domain.Kind) (map[string]domain.Override, error) {
	m := map[string]domain.Override{}
	if err := s.getLocked(overrideKeyFor(kind), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// getLocked decodes key into v, leaving v untouched when the key is absent.
func (s *KVStore) getLocked(key string, v any) error {
	raw, ok := s.data[key]
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return domain.StorageErr("decode "+key, err)
	}
	return nil
}

// putLocked encodes v under key and persists the file. The in-memory map only
// changes once the file write succeeded.
func (s *KVStore) putLocked(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return domain.StorageErr("encode "+key, err)
	}
	next := make(map[string]string, len(s.data)+1)
	for k, val := range s.data {
		next[k] = val
	}
	next[key] = string(b)
	if err := s.persist(next); err != nil {
		return domain.StorageErr("persist "+key, err)
	}
	s.data = next
	return nil
}

func (s *KVStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	state := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &state); err != nil {
			return err
		}
	}
	s.data = state
	return nil
}

func (s *KVStore) persist(state map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
