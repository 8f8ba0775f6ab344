package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"partshop/storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store keeps each user's cart lines and applied promo code. Lines are
// returned ordered by product ID.
type Store interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
	Quantity(ctx context.Context, userID, productID string) (qty int, ok bool, err error)
	Add(ctx context.Context, userID, productID string, delta int) (int, error)
	Set(ctx context.Context, userID, productID string, qty int) error
	Remove(ctx context.Context, userID, productID string) (bool, error)
	Clear(ctx context.Context, userID string) error
	PromoCode(ctx context.Context, userID string) (string, error)
	SetPromoCode(ctx context.Context, userID, code string) error
}

type redisStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

// NewRedisStore keeps one hash per user (product ID -> quantity) and the
// applied promo code under a sibling key.
func NewRedisStore(redisClient *redis.Client) Store {
	return &redisStore{
		redisClient: redisClient,
		keyPrefix:   "storefront:cart:",
	}
}

func (s *redisStore) linesKey(userID string) string {
	return s.keyPrefix + userID
}

func (s *redisStore) promoKey(userID string) string {
	return s.keyPrefix + userID + ":promo"
}

func (s *redisStore) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	fields, err := s.redisClient.HGetAll(ctx, s.linesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(fields))
	for productID, raw := range fields {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 1 {
			continue
		}
		lines = append(lines, domain.CartLine{ProductID: productID, Quantity: qty})
	}
	sortLines(lines)
	return lines, nil
}

func (s *redisStore) Quantity(ctx context.Context, userID, productID string) (int, bool, error) {
	qty, err := s.redisClient.HGet(ctx, s.linesKey(userID), productID).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cart line %s: %w", productID, err)
	}
	return qty, true, nil
}

func (s *redisStore) Add(ctx context.Context, userID, productID string, delta int) (int, error) {
	qty, err := s.redisClient.HIncrBy(ctx, s.linesKey(userID), productID, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add cart line %s: %w", productID, err)
	}
	return int(qty), nil
}

func (s *redisStore) Set(ctx context.Context, userID, productID string, qty int) error {
	if err := s.redisClient.HSet(ctx, s.linesKey(userID), productID, qty).Err(); err != nil {
		return fmt.Errorf("failed to set cart line %s: %w", productID, err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, userID, productID string) (bool, error) {
	n, err := s.redisClient.HDel(ctx, s.linesKey(userID), productID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove cart line %s: %w", productID, err)
	}
	return n > 0, nil
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	if err := s.redisClient.Del(ctx, s.linesKey(userID), s.promoKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *redisStore) PromoCode(ctx context.Context, userID string) (string, error) {
	code, err := s.redisClient.Get(ctx, s.promoKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get promo code: %w", err)
	}
	return code, nil
}

func (s *redisStore) SetPromoCode(ctx context.Context, userID, code string) error {
	var err error
	if code == "" {
		err = s.redisClient.Del(ctx, s.promoKey(userID)).Err()
	} else {
		err = s.redisClient.Set(ctx, s.promoKey(userID), code, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to set promo code: %w", err)
	}
	return nil
}

type memoryCart struct {
	lines map[string]int
	promo string
}

type memoryStore struct {
	mu    sync.Mutex
	carts map[string]*memoryCart
}

func NewMemoryStore() Store {
	return &memoryStore{carts: make(map[string]*memoryCart)}
}

func (s *memoryStore) cart(userID string) *memoryCart {
	c, ok := s.carts[userID]
	if !ok {
		c = &memoryCart{lines: make(map[string]int)}
		s.carts[userID] = c
	}
	return c
}

func (s *memoryStore) Lines(_ context.Context, userID string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	lines := make([]domain.CartLine, 0, len(c.lines))
	for productID, qty := range c.lines {
		if qty < 1 {
			continue
		}
		lines = append(lines, domain.CartLine{ProductID: productID, Quantity: qty})
	}
	sortLines(lines)
	return lines, nil
}

func (s *memoryStore) Quantity(_ context.Context, userID, productID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.cart(userID).lines[productID]
	return qty, ok, nil
}

func (s *memoryStore) Add(_ context.Context, userID, productID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(userID)
	c.lines[productID] += delta
	return c.lines[productID], nil
}

func (s *memoryStore) Set(_ context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).lines[productID] = qty
	return nil
}

func (s *memoryStore) Remove(_ context.Context, userID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(userID)
	_, ok := c.lines[productID]
	delete(c.lines, productID)
	return ok, nil
}

func (s *memoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *memoryStore) PromoCode(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(userID).promo, nil
}

func (s *memoryStore) SetPromoCode(_ context.Context, userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).promo = code
	return nil
}

func sortLines(lines []domain.CartLine) {
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
}
