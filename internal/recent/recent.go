package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"partshop/storefront/internal/state"

	log "github.com/sirupsen/logrus"
)

const (
	// StorageKey is the well-known key the log is persisted under.
	StorageKey = "recent_searches"

	DefaultLimit = 5
)

// KeyFor scopes the storage key to one user. An empty user gets the
// unscoped key.
func KeyFor(userID string) string {
	if userID == "" {
		return StorageKey
	}
	return StorageKey + ":" + userID
}

// Store is a bounded, most-recent-first, case-insensitively deduplicated log
// of search terms. Every mutation is written through to the key-value store
// before it becomes visible.
type Store struct {
	mu    sync.Mutex
	kv    state.KeyValueStore
	key   string
	limit int
	items []string
}

func New(kv state.KeyValueStore, key string, limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{
		kv:    kv,
		key:   key,
		limit: limit,
		items: []string{},
	}
}

// Load reads the persisted log. Absent or undecodable data yields an empty
// log; only an unreachable store is an error.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to load recent searches: %w", err)
	}

	items := []string{}
	if ok {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			log.Warnf("⚠️ Discarding corrupt recent searches under %s: %v", s.key, err)
			items = []string{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = normalize(items, s.limit)
	return nil
}

// Record moves term to the front, dropping any case-insensitive duplicate and
// anything past the limit. Blank terms are ignored.
func (s *Store) Record(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := normalize(append([]string{term}, s.items...), s.limit)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, []string{}); err != nil {
		return err
	}
	s.items = []string{}
	return nil
}

// Items returns a copy of the log, most recent first.
func (s *Store) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.items...)
}

func (s *Store) persist(ctx context.Context, items []string) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode recent searches: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist recent searches: %w", err)
	}
	return nil
}

// normalize keeps the first occurrence of each term (case-insensitive) and
// truncates to limit.
func normalize(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, limit)
	for _, item := range items {
		if len(out) == limit {
			break
		}
		folded := strings.ToLower(item)
		if _, dup := seen[folded]; dup || strings.TrimSpace(item) == "" {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, item)
	}
	return out
}
