// Command seedcatalog is a development utility: it seeds a demo prefill
// profile into Redis, pulls the live catalog and prints how each selection
// resolves, which makes name-join mismatches visible before they reach the
// storefront.
package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/buensabor/storefront/internal/adapter/client"
	"github.com/buensabor/storefront/internal/adapter/storage"
	"github.com/buensabor/storefront/internal/config"
	"github.com/buensabor/storefront/internal/core/domain"
	"github.com/buensabor/storefront/internal/core/service"
)

const demoSessionKey = "demo-session"

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Seed a demo profile
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	cache := storage.NewRedisAdapter(rdb)
	profile := domain.Profile{
		Name:    "Demo Customer",
		Email:   "demo@example.com",
		Phone:   "+54 11 1234-5678",
		Address: "Av. Corrientes 1234",
	}
	if err := cache.SaveProfile(ctx, demoSessionKey, profile); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded profile for session %q\n", demoSessionKey)

	// Pull the catalog and report how selections resolve
	catalogClient := client.NewCatalogHTTPClient(cfg.CatalogBaseURL, cfg.APIToken, cfg.ClientTimeout)
	catalog := service.NewCatalogService(catalogClient)
	if err := catalog.Load(ctx); err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	products := catalog.Products()
	subcats := catalog.FlattenSubcategories()
	fmt.Printf("catalog: %d products, %d subcategories\n", len(products), len(subcats))

	for _, opt := range catalog.VisibleSelectionOptions(service.SelectionAll) {
		matched := catalog.ResolveSelection(opt.ID)
		fmt.Printf("  %-24s -> %d products\n", opt.Name, len(matched))
	}

	unmatched := 0
	for _, sub := range subcats {
		if len(catalog.ResolveSelection(strconv.FormatInt(sub.ID, 10))) == 0 {
			unmatched++
			fmt.Printf("  warning: subcategory %q matches no product by name\n", sub.Name)
		}
	}
	if unmatched == 0 {
		fmt.Println("all subcategories resolve to at least one product")
	}
}
