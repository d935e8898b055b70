package model

import "time"

// Item represents a single catalog item.
type Item struct {
	ID          int64     `json:"-"`
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int64     `json:"stock"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Categories is the closed set of valid item categories.
var Categories = []string{
	"Electronics", "Clothing", "Footwear", "Home & Kitchen",
	"Grocery", "Health & Personal Care", "Books", "Furniture",
	"Toys", "Sports & Fitness", "Beauty & Fashion", "Automotive",
	"Jewelry", "Office Supplies", "Baby Products",
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ItemUpdate holds the mutable fields of an item for partial updates.
// Nil fields are left unchanged.
type ItemUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Stock       *int64    `json:"stock"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
}

// Sort modes accepted by listing queries.
const (
	SortNone      = "none"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ListingQuery is a normalized listing request: every field carries an
// explicit value, so two requests that mean the same thing compare equal.
type ListingQuery struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64 // <0 means unbounded
	InStock  bool
	Sort     string
	Page     int
	PageSize int
}

// ItemFilter is the store-level predicate derived from a ListingQuery.
type ItemFilter struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64 // <0 means unbounded
	InStock  bool
	Sort     string
	Offset   int
	Limit    int
}

// ListingResult is one page of a filtered catalog view.
type ListingResult struct {
	Items       []Item `json:"items"`
	TotalItems  int64  `json:"totalItems"`
	TotalPages  int64  `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}
