package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"shopstock-rest-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteCatalogRepository implements CatalogRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteCatalogRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCatalogRepository creates a new SQLite catalog repository.
// dbPath is the path to the SQLite database file (e.g., "./data/catalog.db")
func NewSQLiteCatalogRepository(dbPath string) (*SQLiteCatalogRepository, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createCatalogTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteCatalogRepository] Initialized with database: %s", dbPath)
	return &SQLiteCatalogRepository{db: db}, nil
}

// createCatalogTables creates the items table.
func createCatalogTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		stock INTEGER NOT NULL,
		category TEXT NOT NULL,
		images TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_price ON items(price);
	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
	CREATE INDEX IF NOT EXISTS idx_items_stock ON items(stock);
	CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// scanItem reads one item row.
func scanItem(row interface{ Scan(...interface{}) error }) (*model.Item, error) {
	var item model.Item
	var images string
	err := row.Scan(&item.ID, &item.ProductID, &item.Name, &item.Description,
		&item.Price, &item.Stock, &item.Category, &images,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Images = decodeImages(images)
	return &item, nil
}

// GetByProductID retrieves a single item by its product ID.
func (r *SQLiteCatalogRepository) GetByProductID(ctx context.Context, productID string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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
func (r *SQLiteCatalogRepository) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	where, args := buildItemWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM items` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
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
func (r *SQLiteCatalogRepository) Insert(ctx context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return insertItem(ctx, r.db, item)
}

// InsertMany stores multiple items in one transaction.
func (r *SQLiteCatalogRepository) InsertMany(ctx context.Context, items []*model.Item) error {
	if len(items) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

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

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertItem(ctx context.Context, db execer, item *model.Item) error {
	now := time.Now().UTC().Truncate(time.Second)
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Images == nil {
		item.Images = []string{}
	}

	query := `
		INSERT INTO items (product_id, name, description, price, stock, category, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := db.ExecContext(ctx, query, item.ProductID, item.Name, item.Description,
		item.Price, item.Stock, item.Category, encodeImages(item.Images),
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert item %s: %w", item.Name, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		item.ID = id
	}
	return nil
}

// Update applies a partial update and returns the updated item.
func (r *SQLiteCatalogRepository) Update(ctx context.Context, productID string, upd model.ItemUpdate) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sets, args := buildUpdateSets(upd)
	query := `UPDATE items SET ` + sets + ` WHERE product_id = ?`
	result, err := r.db.ExecContext(ctx, query, append(args, productID)...)
	if err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE product_id = ?`, productID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}
	return item, nil
}

// Delete removes an item by its product ID.
func (r *SQLiteCatalogRepository) Delete(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteCatalogRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteCatalogRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*SQLiteCatalogRepository)(nil)
