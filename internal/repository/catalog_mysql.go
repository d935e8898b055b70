package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"shopstock-rest-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLCatalogRepository implements CatalogRepository using MySQL.
type MySQLCatalogRepository struct {
	db *sql.DB
}

// NewMySQLCatalogRepository creates a MySQL catalog repository from an
// existing connection pool. DSN must include parseTime=true.
func NewMySQLCatalogRepository(db *sql.DB) (*MySQLCatalogRepository, error) {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		product_id VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL UNIQUE,
		description TEXT NOT NULL,
		price DOUBLE NOT NULL,
		stock BIGINT NOT NULL,
		category VARCHAR(64) NOT NULL,
		images TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_items_price (price),
		INDEX idx_items_category (category),
		INDEX idx_items_stock (stock),
		INDEX idx_items_created_at (created_at)
	)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create items table: %w", err)
	}

	log.Printf("[MySQLCatalogRepository] Initialized")
	return &MySQLCatalogRepository{db: db}, nil
}

// GetByProductID retrieves a single item by its product ID.
func (r *MySQLCatalogRepository) GetByProductID(ctx context.Context, productID string) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE product_id = ?`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// List returns one page of items matching the filter plus the total match count.
func (r *MySQLCatalogRepository) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, int64, error) {
	where, args := buildItemWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where + buildItemOrder(filter.Sort) + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0, filter.Limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, total, nil
}

// Insert stores a new item and stamps its timestamps.
func (r *MySQLCatalogRepository) Insert(ctx context.Context, item *model.Item) error {
	return insertItem(ctx, r.db, item)
}

// InsertMany stores multiple items in one transaction.
func (r *MySQLCatalogRepository) InsertMany(ctx context.Context, items []*model.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the updated item.
func (r *MySQLCatalogRepository) Update(ctx context.Context, productID string, upd model.ItemUpdate) (*model.Item, error) {
	sets, args := buildUpdateSets(upd)
	result, err := r.db.ExecContext(ctx, `UPDATE items SET `+sets+` WHERE product_id = ?`, append(args, productID)...)
	if err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	// RowsAffected is 0 for a no-change update in MySQL, so existence is
	// checked by the reload instead.
	if _, err := result.RowsAffected(); err != nil {
		return nil, err
	}

	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE product_id = ?`, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}
	return item, nil
}

// Delete removes an item by its product ID.
func (r *MySQLCatalogRepository) Delete(ctx context.Context, productID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns statistics about the catalog database.
func (r *MySQLCatalogRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_items"] = count

	var outOfStock int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE stock = 0").Scan(&outOfStock); err == nil {
		stats["out_of_stock"] = outOfStock
	}

	return stats, nil
}

// Close closes the database connection.
func (r *MySQLCatalogRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*MySQLCatalogRepository)(nil)
