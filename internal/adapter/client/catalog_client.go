package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buensabor/storefront/internal/core/domain"
)

// CatalogHTTPClient consumes the catalog service's two bearer-authenticated
// endpoints. Any non-2xx status is an error; the caller treats the catalog
// as all-or-nothing.
type CatalogHTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewCatalogHTTPClient(baseURL, token string, timeout time.Duration) *CatalogHTTPClient {
	return &CatalogHTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type productPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PrepMinutes int             `json:"prep_time_minutes"`
	Images      []string        `json:"images"`
	Category    struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}

type categoryPayload struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	RawMaterial   bool              `json:"is_raw_material"`
	Subcategories []categoryPayload `json:"subcategories"`
}

func (c *CatalogHTTPClient) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var payload []productPayload
	if err := c.getJSON(ctx, "/products", &payload); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			PrepMinutes: p.PrepMinutes,
			Images:      p.Images,
			Category: domain.CategoryRef{
				ID:   p.Category.ID,
				Name: p.Category.Name,
			},
		})
	}
	return products, nil
}

func (c *CatalogHTTPClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var payload []categoryPayload
	if err := c.getJSON(ctx, "/categories", &payload); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(payload))
	for _, p := range payload {
		categories = append(categories, toCategory(p))
	}
	return categories, nil
}

func toCategory(p categoryPayload) domain.Category {
	cat := domain.Category{
		ID:          p.ID,
		Name:        p.Name,
		RawMaterial: p.RawMaterial,
	}
	for _, sub := range p.Subcategories {
		cat.Subcategories = append(cat.Subcategories, toCategory(sub))
	}
	return cat
}

func (c *CatalogHTTPClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("catalog service returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
