package repository

import (
	"context"

	"shopstock-rest-api/internal/model"
)

// Repository errors.
type RepositoryError string

func (e RepositoryError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the requested item does not exist.
	ErrNotFound RepositoryError = "item not found"

	// ErrDuplicate indicates a unique constraint (productId or name) was violated.
	ErrDuplicate RepositoryError = "item already exists"
)

// CatalogRepository defines catalog data access methods.
type CatalogRepository interface {
	// GetByProductID retrieves a single item. Returns ErrNotFound if absent.
	GetByProductID(ctx context.Context, productID string) (*model.Item, error)

	// List returns one page of items matching the filter plus the total
	// match count independent of pagination.
	List(ctx context.Context, filter model.ItemFilter) ([]model.Item, int64, error)

	// Insert stores a new item. Returns ErrDuplicate on productId/name conflicts.
	Insert(ctx context.Context, item *model.Item) error

	// InsertMany stores multiple items in one transaction.
	InsertMany(ctx context.Context, items []*model.Item) error

	// Update applies a partial update and returns the updated item.
	Update(ctx context.Context, productID string, upd model.ItemUpdate) (*model.Item, error)

	// Delete removes an item. Returns ErrNotFound if absent.
	Delete(ctx context.Context, productID string) error

	// Stats returns statistics about the catalog database.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
