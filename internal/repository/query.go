package repository

import (
	"encoding/json"
	"strings"
	"time"

	"shopstock-rest-api/internal/model"
)

// itemColumns is the select list shared by both SQL backends.
const itemColumns = "id, product_id, name, description, price, stock, category, images, created_at, updated_at"

// buildItemWhere converts a filter into a WHERE clause with ? placeholders.
// Returns an empty clause when the filter matches everything.
func buildItemWhere(filter model.ItemFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinPrice > 0 {
		conds = append(conds, "price >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice >= 0 {
		conds = append(conds, "price <= ?")
		args = append(args, filter.MaxPrice)
	}
	if filter.InStock {
		conds = append(conds, "stock > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildItemOrder converts a sort mode into an ORDER BY clause.
// Unknown modes fall back to insertion order.
func buildItemOrder(sort string) string {
	switch sort {
	case model.SortPriceAsc:
		return " ORDER BY price ASC, id ASC"
	case model.SortPriceDesc:
		return " ORDER BY price DESC, id ASC"
	case model.SortNewest:
		return " ORDER BY created_at DESC, id DESC"
	default:
		return " ORDER BY id ASC"
	}
}

// buildUpdateSets converts a partial update into a SET clause. The
// updated_at stamp is always included, so even an empty update is a write.
func buildUpdateSets(upd model.ItemUpdate) (string, []interface{}) {
	var sets []string
	var args []interface{}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *upd.Stock)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Images != nil {
		sets = append(sets, "images = ?")
		args = append(args, encodeImages(*upd.Images))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Truncate(time.Second))

	return strings.Join(sets, ", "), args
}

// encodeImages serializes image references for storage.
func encodeImages(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeImages deserializes stored image references.
func decodeImages(data string) []string {
	if data == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(data), &images); err != nil {
		return []string{}
	}
	return images
}

// isDuplicateErr reports whether err is a unique constraint violation from
// either backend (SQLite "UNIQUE constraint" / MySQL error 1062).
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
