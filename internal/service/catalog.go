package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"shopstock-rest-api/internal/cache"
	"shopstock-rest-api/internal/model"
	"shopstock-rest-api/internal/repository"
	"shopstock-rest-api/pkg/uid"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is the staleness ceiling for cached entries. Explicit
	// invalidation is the primary consistency mechanism; the TTL only
	// backstops missed invalidations.
	DefaultTTL = 1 * time.Hour

	// DefaultPageSize is applied when no limit is requested.
	DefaultPageSize = 10
)

// CatalogService answers listing and lookup requests through the catalog
// cache and keeps the cache consistent across mutations. The cache is
// advisory: a nil or failing cache degrades every read to a store query.
type CatalogService struct {
	repo   repository.CatalogRepository
	cache  cache.Cache
	ttl    time.Duration
	misses singleflight.Group

	// gen severs coalesced listing flights from readers that arrive
	// after an invalidation. A reader issued after a completed write
	// must never attach to a store scan that began before it.
	gen atomic.Int64
}

// NewCatalogService creates a new catalog service.
// Returns nil if repo is nil (required dependency). cacheStore may be nil.
func NewCatalogService(repo repository.CatalogRepository, cacheStore cache.Cache, ttl time.Duration) *CatalogService {
	if repo == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogService{
		repo:  repo,
		cache: cacheStore,
		ttl:   ttl,
	}
}

// ListingParams carries the raw, untrusted query parameters of a listing
// request before normalization.
type ListingParams struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
	InStock  string
	Sort     string
	Page     string
	Limit    string
}

// NormalizeListing coerces raw parameters into a ListingQuery. Malformed
// category and sort values fall back to the unfiltered/unsorted defaults
// rather than failing the request; page and limit are clamped to >= 1.
func NormalizeListing(p ListingParams) model.ListingQuery {
	q := model.ListingQuery{
		Search:   strings.TrimSpace(p.Search),
		MaxPrice: -1,
		Sort:     model.SortNone,
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if cat := strings.TrimSpace(p.Category); model.ValidCategory(cat) {
		q.Category = cat
	}
	if v, err := strconv.ParseFloat(p.MinPrice, 64); err == nil && v > 0 {
		q.MinPrice = v
	}
	if v, err := strconv.ParseFloat(p.MaxPrice, 64); err == nil && v >= 0 {
		q.MaxPrice = v
	}
	q.InStock = p.InStock == "true"

	switch p.Sort {
	case model.SortPriceAsc, model.SortPriceDesc, model.SortNewest:
		q.Sort = p.Sort
	}

	if v, err := strconv.Atoi(p.Page); err == nil && v >= 1 {
		q.Page = v
	}
	if v, err := strconv.Atoi(p.Limit); err == nil && v >= 1 {
		q.PageSize = v
	}

	return q
}

// ListItems answers a listing request read-through: cache hit returns
// immediately; a miss queries the store, populates the cache, and returns.
// Concurrent misses for the same key are coalesced into one store query.
// Flights are scoped to the current invalidation generation, so a reader
// that arrives after a sweep always starts a fresh store scan.
func (s *CatalogService) ListItems(ctx context.Context, q model.ListingQuery) (*model.ListingResult, error) {
	key := ListingKey(q)
	flight := strconv.FormatInt(s.gen.Load(), 10) + "|" + key

	if payload := s.cacheGet(ctx, key); payload != nil {
		var result model.ListingResult
		if err := json.Unmarshal(payload, &result); err == nil {
			return &result, nil
		}
		log.Printf("[CatalogService] corrupt cache entry for %s, refetching", key)
	}

	v, err, _ := s.misses.Do(flight, func() (interface{}, error) {
		filter := model.ItemFilter{
			Search:   q.Search,
			Category: q.Category,
			MinPrice: q.MinPrice,
			MaxPrice: q.MaxPrice,
			InStock:  q.InStock,
			Sort:     q.Sort,
			Offset:   (q.Page - 1) * q.PageSize,
			Limit:    q.PageSize,
		}

		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		result := &model.ListingResult{
			Items:       items,
			TotalItems:  total,
			TotalPages:  (total + int64(q.PageSize) - 1) / int64(q.PageSize),
			CurrentPage: q.Page,
		}

		s.cacheSet(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ListingResult), nil
}

// GetItem answers a single-item lookup read-through, keyed by product ID.
func (s *CatalogService) GetItem(ctx context.Context, productID string) (*model.Item, error) {
	key := ItemKey(productID)

	if payload := s.cacheGet(ctx, key); payload != nil {
		var item model.Item
		if err := json.Unmarshal(payload, &item); err == nil {
			return &item, nil
		}
		log.Printf("[CatalogService] corrupt cache entry for %s, refetching", key)
	}

	v, err, _ := s.misses.Do(key, func() (interface{}, error) {
		item, err := s.repo.GetByProductID(ctx, productID)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, item)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Item), nil
}

// CreateItem stores a new item, assigning a product ID when absent, and
// sweeps the listing keyspace before returning.
func (s *CatalogService) CreateItem(ctx context.Context, item *model.Item) error {
	if item.ProductID == "" {
		item.ProductID = uid.New()
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return err
	}
	s.InvalidateListings(ctx)
	return nil
}

// BulkCreateItems stores multiple items in one transaction and sweeps the
// listing keyspace before returning.
func (s *CatalogService) BulkCreateItems(ctx context.Context, items []*model.Item) error {
	for _, item := range items {
		if item.ProductID == "" {
			item.ProductID = uid.New()
		}
	}
	if err := s.repo.InsertMany(ctx, items); err != nil {
		return err
	}
	s.InvalidateListings(ctx)
	return nil
}

// UpdateItem applies a partial update and invalidates both the item entry
// and every listing entry before returning: the changed fields can move
// the item into or out of any filtered or sorted view.
func (s *CatalogService) UpdateItem(ctx context.Context, productID string, upd model.ItemUpdate) (*model.Item, error) {
	item, err := s.repo.Update(ctx, productID, upd)
	if err != nil {
		return nil, err
	}
	s.InvalidateItem(ctx, productID)
	return item, nil
}

// DeleteItem removes an item and invalidates its entry plus every listing
// entry before returning.
func (s *CatalogService) DeleteItem(ctx context.Context, productID string) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	s.InvalidateItem(ctx, productID)
	return nil
}

// InvalidateListings removes every cached listing view. Sweeping the whole
// keyspace trades hit rate after writes for unconditional correctness: a
// single write can affect an unbounded number of query signatures.
func (s *CatalogService) InvalidateListings(ctx context.Context) {
	s.gen.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, ListingKeyPrefix); err != nil {
		log.Printf("[CatalogService] listing sweep failed: %v", err)
	}
}

// InvalidateItem removes the single-item entry and sweeps the listings.
// Forgetting the item flight keeps a lookup issued after the write from
// attaching to a store read that started before it.
func (s *CatalogService) InvalidateItem(ctx context.Context, productID string) {
	s.misses.Forget(ItemKey(productID))
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ItemKey(productID)); err != nil {
			log.Printf("[CatalogService] item invalidation failed for %s: %v", productID, err)
		}
	}
	s.InvalidateListings(ctx)
}

// cacheGet returns the cached payload or nil on any miss or cache error.
func (s *CatalogService) cacheGet(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			log.Printf("[CatalogService] cache get failed for %s: %v", key, err)
		}
		return nil
	}
	return payload
}

// cacheSet stores v as JSON; failures are logged, never surfaced.
func (s *CatalogService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[CatalogService] cache marshal failed for %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		log.Printf("[CatalogService] cache set failed for %s: %v", key, err)
	}
}
