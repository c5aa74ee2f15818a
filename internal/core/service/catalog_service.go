package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/buensabor/storefront/internal/core/domain"
	"github.com/buensabor/storefront/internal/port"
)

var ErrCatalogUnavailable = errors.New("catalog unavailable")

// SelectionAll is the synthetic selection id matching every product.
const SelectionAll = "all"

// SelectionOption is one entry of the category picker: the synthetic "all"
// option, a top-level category, or a subcategory of the currently selected
// top-level category.
type SelectionOption struct {
	ID       string
	Name     string
	TopLevel bool
}

// CatalogService loads the product list and category tree once per session
// and answers selection queries against them. State is replaced atomically
// on each successful load; a failed load keeps the previous state.
type CatalogService struct {
	client port.CatalogClient

	mu         sync.RWMutex
	loaded     bool
	products   []domain.Product
	categories []domain.Category
	subcats    map[int64]domain.Category
}

func NewCatalogService(client port.CatalogClient) *CatalogService {
	return &CatalogService{client: client}
}

// Load fetches products and categories. Both calls must succeed; partial
// data is never kept.
func (s *CatalogService) Load(ctx context.Context) error {
	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetch products: %v", ErrCatalogUnavailable, err)
	}

	categories, err := s.client.FetchCategories(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetch categories: %v", ErrCatalogUnavailable, err)
	}

	subcats := indexSubcategories(categories)

	s.mu.Lock()
	s.products = products
	s.categories = categories
	s.subcats = subcats
	s.loaded = true
	s.mu.Unlock()

	return nil
}

func (s *CatalogService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *CatalogService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product looks up a product by id.
func (s *CatalogService) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// FlattenSubcategories returns every subcategory node across the whole
// tree, at any depth. Top-level categories themselves are not included.
func (s *CatalogService) FlattenSubcategories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.subcats))
	for _, c := range s.categories {
		collectSubcategories(c.Subcategories, &out)
	}
	return out
}

// ResolveSelection returns the products visible for a selection id. "all"
// matches everything; a top-level category matches products named after one
// of its immediate subcategories; a subcategory matches products sharing
// its name. An unknown id resolves to an empty result, not an error.
//
// The product/subcategory join is by display name: the product payload
// carries only a top-level category reference, no subcategory key.
func (s *CatalogService) ResolveSelection(sel string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sel == SelectionAll {
		out := make([]domain.Product, len(s.products))
		copy(out, s.products)
		return out
	}

	id, err := strconv.ParseInt(sel, 10, 64)
	if err != nil {
		return []domain.Product{}
	}

	for _, cat := range s.categories {
		if cat.ID != id {
			continue
		}
		names := make(map[string]bool, len(cat.Subcategories))
		for _, sub := range cat.Subcategories {
			names[sub.Name] = true
		}
		out := []domain.Product{}
		for _, p := range s.products {
			if names[p.Name] {
				out = append(out, p)
			}
		}
		return out
	}

	if sub, ok := s.subcats[id]; ok {
		out := []domain.Product{}
		for _, p := range s.products {
			if p.Name == sub.Name {
				out = append(out, p)
			}
		}
		return out
	}

	return []domain.Product{}
}

// VisibleSelectionOptions builds the category picker for the current
// selection: "all", every top-level category, and the immediate
// subcategories of the selected top-level category only. Subcategories of
// other categories and deeper descendants are never listed, so the picker
// drills down one level at a time.
func (s *CatalogService) VisibleSelectionOptions(selected string) []SelectionOption {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts := []SelectionOption{{ID: SelectionAll, Name: "All", TopLevel: true}}
	for _, c := range s.categories {
		opts = append(opts, SelectionOption{
			ID:       strconv.FormatInt(c.ID, 10),
			Name:     c.Name,
			TopLevel: true,
		})
	}

	id, err := strconv.ParseInt(selected, 10, 64)
	if err != nil {
		return opts
	}

	for _, c := range s.categories {
		if c.ID != id {
			continue
		}
		for _, sub := range c.Subcategories {
			opts = append(opts, SelectionOption{
				ID:   strconv.FormatInt(sub.ID, 10),
				Name: sub.Name,
			})
		}
		break
	}

	return opts
}

func indexSubcategories(categories []domain.Category) map[int64]domain.Category {
	flat := make(map[int64]domain.Category)
	var nodes []domain.Category
	for _, c := range categories {
		collectSubcategories(c.Subcategories, &nodes)
	}
	for _, n := range nodes {
		flat[n.ID] = n
	}
	return flat
}

func collectSubcategories(nodes []domain.Category, out *[]domain.Category) {
	for _, n := range nodes {
		*out = append(*out, n)
		collectSubcategories(n.Subcategories, out)
	}
}
