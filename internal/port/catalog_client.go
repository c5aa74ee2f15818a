package port

import (
	"context"

	"github.com/buensabor/storefront/internal/core/domain"
)

type CatalogClient interface {
	// FetchProducts retrieves the flat product list from the catalog service
	FetchProducts(ctx context.Context) ([]domain.Product, error)

	// FetchCategories retrieves the category tree from the catalog service
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}
