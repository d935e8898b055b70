package service

import (
	"strings"
	"testing"

	"shopstock-rest-api/internal/model"
)

func TestListingKey_Defaults(t *testing.T) {
	// An entirely-defaulted query and an explicitly-defaulted query must
	// derive the same key.
	omitted := NormalizeListing(ListingParams{})
	explicit := NormalizeListing(ListingParams{
		Search:   "",
		Category: "",
		MinPrice: "0",
		InStock:  "false",
		Sort:     "none",
		Page:     "1",
		Limit:    "10",
	})

	if got, want := ListingKey(omitted), ListingKey(explicit); got != want {
		t.Fatalf("keys differ: %q vs %q", got, want)
	}

	if got, want := ListingKey(omitted), "items:all:all:0:max:any:none:1:10"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestListingKey_Deterministic(t *testing.T) {
	q := NormalizeListing(ListingParams{
		Search:   "lamp",
		Category: "Furniture",
		MinPrice: "10",
		MaxPrice: "99.5",
		InStock:  "true",
		Sort:     model.SortPriceDesc,
		Page:     "3",
		Limit:    "25",
	})

	first := ListingKey(q)
	for i := 0; i < 10; i++ {
		if got := ListingKey(q); got != first {
			t.Fatalf("key changed between calls: %q vs %q", got, first)
		}
	}
}

func TestListingKey_Injective(t *testing.T) {
	base := NormalizeListing(ListingParams{
		Search:   "lamp",
		Category: "Furniture",
		MinPrice: "10",
		MaxPrice: "100",
		InStock:  "true",
		Sort:     model.SortPriceAsc,
		Page:     "2",
		Limit:    "20",
	})

	variants := map[string]model.ListingQuery{
		"search":   base,
		"category": base,
		"minPrice": base,
		"maxPrice": base,
		"inStock":  base,
		"sort":     base,
		"page":     base,
		"pageSize": base,
	}
	v := variants["search"]
	v.Search = "desk"
	variants["search"] = v
	v = variants["category"]
	v.Category = "Books"
	variants["category"] = v
	v = variants["minPrice"]
	v.MinPrice = 11
	variants["minPrice"] = v
	v = variants["maxPrice"]
	v.MaxPrice = 101
	variants["maxPrice"] = v
	v = variants["inStock"]
	v.InStock = false
	variants["inStock"] = v
	v = variants["sort"]
	v.Sort = model.SortNewest
	variants["sort"] = v
	v = variants["page"]
	v.Page = 3
	variants["page"] = v
	v = variants["pageSize"]
	v.PageSize = 21
	variants["pageSize"] = v

	baseKey := ListingKey(base)
	for field, q := range variants {
		if got := ListingKey(q); got == baseKey {
			t.Errorf("changing %s did not change the key %q", field, got)
		}
	}
}

func TestKeyNamespaces(t *testing.T) {
	listing := ListingKey(NormalizeListing(ListingParams{}))
	item := ItemKey("abc-123")

	if !strings.HasPrefix(listing, ListingKeyPrefix) {
		t.Errorf("listing key %q lacks prefix %q", listing, ListingKeyPrefix)
	}
	if !strings.HasPrefix(item, ItemKeyPrefix) {
		t.Errorf("item key %q lacks prefix %q", item, ItemKeyPrefix)
	}
	if strings.HasPrefix(item, ListingKeyPrefix) {
		t.Errorf("item key %q collides with the listing namespace", item)
	}
}

func TestNormalizeListing_Fallbacks(t *testing.T) {
	q := NormalizeListing(ListingParams{
		Category: "NotACategory",
		Sort:     "cheapest",
		MinPrice: "abc",
		MaxPrice: "-5",
		Page:     "0",
		Limit:    "-1",
	})

	if q.Category != "" {
		t.Errorf("Category = %q, want unfiltered", q.Category)
	}
	if q.Sort != model.SortNone {
		t.Errorf("Sort = %q, want %q", q.Sort, model.SortNone)
	}
	if q.MinPrice != 0 {
		t.Errorf("MinPrice = %v, want 0", q.MinPrice)
	}
	if q.MaxPrice != -1 {
		t.Errorf("MaxPrice = %v, want unbounded", q.MaxPrice)
	}
	if q.Page != 1 {
		t.Errorf("Page = %d, want 1", q.Page)
	}
	if q.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", q.PageSize, DefaultPageSize)
	}
}

func TestNormalizeListing_WholePricesMatch(t *testing.T) {
	a := NormalizeListing(ListingParams{MinPrice: "10", MaxPrice: "20"})
	b := NormalizeListing(ListingParams{MinPrice: "10.0", MaxPrice: "20.00"})

	if ListingKey(a) != ListingKey(b) {
		t.Fatalf("equivalent price bounds derive different keys: %q vs %q", ListingKey(a), ListingKey(b))
	}
}
