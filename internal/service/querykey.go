package service

import (
	"strconv"
	"strings"

	"shopstock-rest-api/internal/model"
)

// Key namespaces. Listing keys share one prefix so a single sweep can
// invalidate every cached view; item keys live in a separate namespace
// addressable per product.
const (
	ListingKeyPrefix = "items:"
	ItemKeyPrefix    = "item:"
)

// ListingKey derives the cache key for a normalized listing query.
// The key is a structured composition of every field that affects the
// result set, with explicit defaults substituted for absent values so an
// omitted field and its default value produce the same key.
func ListingKey(q model.ListingQuery) string {
	search := q.Search
	if search == "" {
		search = "all"
	}
	category := q.Category
	if category == "" {
		category = "all"
	}
	minPrice := "0"
	if q.MinPrice > 0 {
		minPrice = formatPrice(q.MinPrice)
	}
	maxPrice := "max"
	if q.MaxPrice >= 0 {
		maxPrice = formatPrice(q.MaxPrice)
	}
	inStock := "any"
	if q.InStock {
		inStock = "true"
	}
	sort := q.Sort
	if sort == "" {
		sort = model.SortNone
	}

	return ListingKeyPrefix + strings.Join([]string{
		search,
		category,
		minPrice,
		maxPrice,
		inStock,
		sort,
		strconv.Itoa(q.Page),
		strconv.Itoa(q.PageSize),
	}, ":")
}

// ItemKey derives the cache key for a single item lookup.
func ItemKey(productID string) string {
	return ItemKeyPrefix + productID
}

// formatPrice renders a price bound without a trailing fraction for
// whole values, so 10 and 10.0 derive the same key.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
