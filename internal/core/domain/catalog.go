package domain

import "github.com/shopspring/decimal"

// CategoryRef is the category reference carried by a product payload.
// It points at a top-level category only; products do not carry a
// subcategory foreign key.
type CategoryRef struct {
	ID   int64
	Name string
}

// Product is immutable once loaded from the catalog service.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	PrepMinutes int
	Images      []string
	Category    CategoryRef
}

// Category is one node of the catalog tree. Subcategories share the same
// shape, so the tree nests to arbitrary depth. Ids are unique across the
// whole tree, not just among siblings.
type Category struct {
	ID            int64
	Name          string
	RawMaterial   bool
	Subcategories []Category
}
