package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"shopstock-rest-api/internal/cache"
	"shopstock-rest-api/internal/handler"
	"shopstock-rest-api/internal/repository"
	"shopstock-rest-api/internal/router"
	"shopstock-rest-api/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := repository.NewSQLiteCatalogRepository(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCatalogRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	svc := service.NewCatalogService(repo, mem, time.Hour)

	r := router.New(router.Config{
		Handler:        handler.New("test"),
		CatalogHandler: handler.NewCatalogHandler(svc),
		AdminHandler:   handler.NewAdminHandler(repo, "sqlite", "memory"),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, envelope) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func createItem(t *testing.T, srv *httptest.Server, name, category string, price float64, stock int64) string {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"name":     name,
		"category": category,
		"price":    price,
		"stock":    stock,
	})
	if status != http.StatusCreated {
		t.Fatalf("create %s: status = %d", name, status)
	}
	var item struct {
		ProductID string `json:"productId"`
	}
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatalf("decode created item: %v", err)
	}
	if item.ProductID == "" {
		t.Fatalf("created item has no productId")
	}
	return item.ProductID
}

type listingPayload struct {
	Items []struct {
		ProductID string  `json:"productId"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
	} `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
}

func listItems(t *testing.T, srv *httptest.Server, query string) listingPayload {
	t.Helper()
	status, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/items"+query, nil)
	if status != http.StatusOK {
		t.Fatalf("list %q: status = %d", query, status)
	}
	var listing listingPayload
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	return listing
}

func TestCreateItem_Validation(t *testing.T) {
	srv := newTestServer(t)

	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"name":     "Widget",
		"category": "NotACategory",
		"price":    5,
		"stock":    1,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Message != "Invalid category" {
		t.Fatalf("error = %+v", env.Error)
	}

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"category": "Books", "price": 5, "stock": 1,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("missing name: status = %d, want 400", status)
	}
}

func TestCreateItem_Duplicate(t *testing.T) {
	srv := newTestServer(t)

	createItem(t, srv, "Go Primer", "Books", 10, 5)
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"name": "Go Primer", "category": "Books", "price": 12, "stock": 1,
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate name: status = %d, want 409", status)
	}
}

func TestBulkCreateItems(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items/bulk", []map[string]interface{}{
		{"name": "Go Primer", "category": "Books", "price": 10, "stock": 5},
		{"name": "SQL Primer", "category": "Books", "price": 15, "stock": 2},
	})
	if status != http.StatusCreated {
		t.Fatalf("bulk create: status = %d, want 201", status)
	}

	listing := listItems(t, srv, "?category=Books")
	if listing.TotalItems != 2 {
		t.Fatalf("totalItems = %d, want 2", listing.TotalItems)
	}

	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items/bulk", []map[string]interface{}{
		{"name": "Paint", "category": "NotACategory", "price": 5, "stock": 1},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("bulk with bad category: status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Message != "Invalid category in one or more items" {
		t.Fatalf("error = %+v", env.Error)
	}

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/items/bulk", []map[string]interface{}{})
	if status != http.StatusBadRequest {
		t.Fatalf("empty bulk: status = %d, want 400", status)
	}
}

func TestListItems_FilterSortPage(t *testing.T) {
	srv := newTestServer(t)

	createItem(t, srv, "Go Primer", "Books", 10, 5)
	createItem(t, srv, "SQL Primer", "Books", 30, 0)
	createItem(t, srv, "Desk Lamp", "Furniture", 25, 3)

	listing := listItems(t, srv, "?category=Books&sort=price_desc")
	if listing.TotalItems != 2 || len(listing.Items) != 2 {
		t.Fatalf("listing = %+v", listing)
	}
	if listing.Items[0].Price != 30 || listing.Items[1].Price != 10 {
		t.Fatalf("price_desc order wrong: %+v", listing.Items)
	}

	listing = listItems(t, srv, "?inStock=true")
	if listing.TotalItems != 2 {
		t.Fatalf("inStock totalItems = %d, want 2", listing.TotalItems)
	}

	listing = listItems(t, srv, "?page=2&limit=2")
	if listing.TotalItems != 3 || listing.TotalPages != 2 || listing.CurrentPage != 2 || len(listing.Items) != 1 {
		t.Fatalf("pagination listing = %+v", listing)
	}

	// Malformed sort and category fall back to defaults instead of failing.
	listing = listItems(t, srv, "?category=Bogus&sort=cheapest")
	if listing.TotalItems != 3 {
		t.Fatalf("fallback listing = %+v", listing)
	}
}

func TestItemLifecycleThroughCache(t *testing.T) {
	srv := newTestServer(t)

	id := createItem(t, srv, "Go Primer", "Books", 10, 5)

	// Warm both the listing and the item entry.
	listing := listItems(t, srv, "?category=Books")
	if listing.TotalItems != 1 || listing.Items[0].Price != 10 {
		t.Fatalf("initial listing = %+v", listing)
	}
	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/items/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("get item: status = %d", status)
	}

	// Update the price; every subsequent read must see it immediately.
	status, env := doJSON(t, http.MethodPut, srv.URL+"/api/v1/items/"+id, map[string]interface{}{"price": 20})
	if status != http.StatusOK {
		t.Fatalf("update: status = %d", status)
	}
	var updated struct {
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil || updated.Price != 20 {
		t.Fatalf("update response = %s (err %v)", env.Data, err)
	}

	listing = listItems(t, srv, "?category=Books&sort=price_desc")
	if len(listing.Items) != 1 || listing.Items[0].Price != 20 {
		t.Fatalf("stale listing after update: %+v", listing)
	}

	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/v1/items/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("get after update: status = %d", status)
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil || updated.Price != 20 {
		t.Fatalf("stale item after update: %s", env.Data)
	}

	// Delete and verify 404 plus an empty listing.
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/items/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: status = %d", status)
	}
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/items/"+id, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", status)
	}
	listing = listItems(t, srv, "?category=Books")
	if listing.TotalItems != 0 {
		t.Fatalf("listing after delete = %+v", listing)
	}
}

func TestUpdateDelete_NotFound(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/items/nope", map[string]interface{}{"price": 1})
	if status != http.StatusNotFound {
		t.Fatalf("update missing: status = %d, want 404", status)
	}
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/items/nope", nil)
	if status != http.StatusNotFound {
		t.Fatalf("delete missing: status = %d, want 404", status)
	}
}

func TestAdminStats(t *testing.T) {
	srv := newTestServer(t)
	createItem(t, srv, "Go Primer", "Books", 10, 5)

	status, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("stats: status = %d", status)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if fmt.Sprint(stats["db_type"]) != "sqlite" || fmt.Sprint(stats["cache_type"]) != "memory" {
		t.Fatalf("stats = %v", stats)
	}
}
