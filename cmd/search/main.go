package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"partshop/storefront/internal/client"
	"partshop/storefront/internal/config"
	"partshop/storefront/internal/container"
	"partshop/storefront/internal/domain"
	"partshop/storefront/internal/recent"
	"partshop/storefront/internal/session"

	log "github.com/sirupsen/logrus"
)

// A terminal search box against a running storefront. Each line is treated
// as the current contents of the box; an empty line submits, ":clear" resets
// and ":recent" lists recent searches.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	api := client.NewStorefrontClient(cfg.Client)
	defer api.Close()

	ctx := context.Background()
	kv, closeState, err := container.OpenClientState(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open client state: %v", err)
	}
	defer closeState()

	history := recent.New(kv, recent.StorageKey, cfg.Search.RecentSearchLimit)
	if err := history.Load(ctx); err != nil {
		log.Fatalf("Failed to load recent searches: %v", err)
	}

	box := session.New(api, history, session.Options{
		Debounce:       cfg.Search.Debounce(),
		MinQueryLength: cfg.Search.MinQueryLength,
		PageSize:       cfg.Catalog.DefaultLimit,
	})
	defer box.Close()

	box.OnChange(func(snap session.Snapshot) {
		if snap.State == session.StateIdle && !snap.Loading && len(snap.Suggestions) > 0 {
			printSuggestions(snap.Suggestions)
		}
	})

	log.Infof("🔎 Searching %s", cfg.Client.BaseURL)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":clear":
			box.Clear()
		case ":recent":
			printSuggestions(box.RecentSuggestions())
		case "":
			query := box.Snapshot().Query
			page, err := box.Submit(ctx, query)
			if err != nil {
				log.Errorf("❌ Search failed: %v", err)
				continue
			}
			printPage(page)
		default:
			box.Type(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Errorf("❌ Failed to read input: %v", err)
	}
}

func printSuggestions(items []domain.SearchSuggestion) {
	for _, item := range items {
		switch s := item.(type) {
		case domain.CategorySuggestion:
			fmt.Printf("  [category] %s\n", s.Name)
		case domain.ProductSuggestion:
			fmt.Printf("  [product]  %s (%s) %d\n", s.Name, s.CategoryName, s.Price)
		case domain.RecentQuerySuggestion:
			fmt.Printf("  [recent]   %s\n", s.Text)
		}
	}
}

func printPage(page *domain.SearchPage) {
	fmt.Printf("%d results (page %d)\n", page.TotalCount, page.Page)
	for _, item := range page.Items {
		stock := "in stock"
		if !item.InStock {
			stock = "out of stock"
		}
		fmt.Printf("  %-30s %-16s %8d  %s\n", item.Name, item.PartNumber, item.Price, stock)
	}
}
