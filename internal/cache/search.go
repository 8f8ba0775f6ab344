package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"partshop/storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// SearchCache keeps rendered catalog pages in redis for a short TTL.
type SearchCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: "storefront:search:",
	}
}

func (c *SearchCache) GetSearchPage(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, bool) {
	key := c.Key(filter)

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("⚠️ Search cache read failed for %s: %v", key, err)
		}
		return nil, false
	}

	var page domain.SearchPage
	if err := json.Unmarshal(val, &page); err != nil {
		log.Warnf("⚠️ Dropping undecodable search cache entry %s: %v", key, err)
		c.client.Del(ctx, key)
		return nil, false
	}

	return &page, true
}

func (c *SearchCache) SetSearchPage(ctx context.Context, filter domain.ProductFilter, page *domain.SearchPage) {
	key := c.Key(filter)

	data, err := json.Marshal(page)
	if err != nil {
		log.Warnf("⚠️ Failed to encode search page for %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warnf("⚠️ Search cache write failed for %s: %v", key, err)
	}
}

// Invalidate drops every cached page, used after a catalog import.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan search cache: %w", err)
	}
	return nil
}

// Key is derived from the normalized filter; text is lowercased because
// matching is case-insensitive. Free-form fields are escaped so they cannot
// forge a separator.
func (c *SearchCache) Key(filter domain.ProductFilter) string {
	key := fmt.Sprintf("%sq=%s:cat=%s:sort=%s:p%d:l%d",
		c.keyPrefix,
		url.QueryEscape(strings.ToLower(filter.Text)),
		url.QueryEscape(filter.CategoryID),
		url.QueryEscape(filter.Sort.String()),
		filter.Page, filter.Limit)

	if filter.PriceMin != nil {
		key += fmt.Sprintf(":minp%d", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		key += fmt.Sprintf(":maxp%d", *filter.PriceMax)
	}
	if filter.InStockOnly {
		key += ":stock"
	}

	return key
}
