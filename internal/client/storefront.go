package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"partshop/storefront/internal/config"
	"partshop/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// StorefrontClient talks to the storefront HTTP API. It satisfies
// session.Backend so a search session can run against a remote service.
type StorefrontClient interface {
	Suggestions(ctx context.Context, query string) ([]domain.SearchSuggestion, error)
	Search(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Close() error
}

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront returned %d: %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

type storefrontClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client

	// Circuit breaker for 429 responses
	circuitBreakerMutex sync.RWMutex
	throttledUntil      time.Time
	circuitBreakerDelay time.Duration
}

func NewStorefrontClient(cfg config.ClientConfig) StorefrontClient {
	rps := cfg.MaxRequestsPerSecond
	if rps < 1 {
		rps = 1
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.Token != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.Token)
	}

	return &storefrontClient{
		rl:                  ratelimit.New(rps),
		httpClient:          client,
		circuitBreakerDelay: 5 * time.Second,
	}
}

func (c *storefrontClient) Suggestions(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	var out envelope[domain.Suggestions]
	if err := c.getJSON(ctx, "/search/suggestions", map[string]string{"q": query}, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	if out.Data == nil {
		return []domain.SearchSuggestion{}, nil
	}
	return out.Data, nil
}

func (c *storefrontClient) Search(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, error) {
	var out envelope[domain.SearchPage]
	if err := c.getJSON(ctx, "/products", filterParams(filter), &out); err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return &out.Data, nil
}

func (c *storefrontClient) Product(ctx context.Context, id string) (*domain.Product, error) {
	var out envelope[domain.Product]
	if err := c.getJSON(ctx, "/products/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &out.Data, nil
}

func (c *storefrontClient) Categories(ctx context.Context) ([]domain.Category, error) {
	var out envelope[[]domain.Category]
	if err := c.getJSON(ctx, "/categories", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out.Data, nil
}

func (c *storefrontClient) Close() error {
	return c.httpClient.Close()
}

func filterParams(filter domain.ProductFilter) map[string]string {
	params := map[string]string{}
	if filter.Text != "" {
		params["text"] = filter.Text
	}
	if filter.CategoryID != "" {
		params["category"] = filter.CategoryID
	}
	if filter.PriceMin != nil {
		params["price_min"] = strconv.FormatInt(*filter.PriceMin, 10)
	}
	if filter.PriceMax != nil {
		params["price_max"] = strconv.FormatInt(*filter.PriceMax, 10)
	}
	if filter.InStockOnly {
		params["in_stock"] = "true"
	}
	if filter.Sort != "" {
		params["sort"] = filter.Sort.String()
	}
	if filter.Page > 0 {
		params["page"] = strconv.Itoa(filter.Page)
	}
	if filter.Limit > 0 {
		params["limit"] = strconv.Itoa(filter.Limit)
	}
	return params
}

func (c *storefrontClient) isCircuitBreakerOpen() (bool, time.Duration) {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.throttledUntil)
	return remaining > 0, remaining
}

func (c *storefrontClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.throttledUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Storefront throttled us, pausing requests until %v", c.throttledUntil.Format("15:04:05"))
}

func (c *storefrontClient) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	if open, remaining := c.isCircuitBreakerOpen(); open {
		return fmt.Errorf("circuit breaker is open - requests paused for %v more", remaining.Round(time.Millisecond))
	}

	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	body := []byte(resp.String())

	if resp.IsError() {
		if resp.StatusCode() == http.StatusTooManyRequests {
			c.triggerCircuitBreaker()
		}
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
		var e envelope[json.RawMessage]
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
