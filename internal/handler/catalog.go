package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopstock-rest-api/internal/model"
	"shopstock-rest-api/internal/repository"
	"shopstock-rest-api/internal/service"
	"shopstock-rest-api/pkg/apierror"
	"shopstock-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles catalog item HTTP requests.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// createItemRequest is the payload for item creation.
type createItemRequest struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int64    `json:"stock"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// validate checks the request and converts it into a model item.
func (req *createItemRequest) validate() (*model.Item, *apierror.Error) {
	if req.Name == "" {
		return nil, apierror.BadRequest("name is required")
	}
	if !model.ValidCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if req.Price < 0 {
		return nil, apierror.BadRequest("price must be non-negative")
	}
	if req.Stock < 0 {
		return nil, apierror.BadRequest("stock must be non-negative")
	}
	return &model.Item{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      req.Images,
	}, nil
}

// CreateItem handles POST /api/v1/items
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	item, apiErr := req.validate()
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	if err := h.catalogService.CreateItem(r.Context(), item); err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.Created(w, item)
}

// BulkCreateItems handles POST /api/v1/items/bulk
func (h *CatalogHandler) BulkCreateItems(w http.ResponseWriter, r *http.Request) {
	var reqs []createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		response.Error(w, apierror.BadRequest("Request body must be an array of items"))
		return
	}
	defer r.Body.Close()

	if len(reqs) == 0 {
		response.Error(w, apierror.BadRequest("Request body must be an array of items"))
		return
	}

	items := make([]*model.Item, 0, len(reqs))
	for i := range reqs {
		item, apiErr := reqs[i].validate()
		if apiErr != nil {
			response.Error(w, apierror.BadRequest("Invalid category in one or more items"))
			return
		}
		items = append(items, item)
	}

	if err := h.catalogService.BulkCreateItems(r.Context(), items); err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.Created(w, map[string]interface{}{
		"message": "Items added successfully",
		"data":    items,
	})
}

// ListItems handles GET /api/v1/items
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	params := service.ListingParams{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		MinPrice: r.URL.Query().Get("minPrice"),
		MaxPrice: r.URL.Query().Get("maxPrice"),
		InStock:  r.URL.Query().Get("inStock"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     r.URL.Query().Get("page"),
		Limit:    r.URL.Query().Get("limit"),
	}

	result, err := h.catalogService.ListItems(r.Context(), service.NormalizeListing(params))
	if err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.OK(w, result)
}

// GetItem handles GET /api/v1/items/{product_id}
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		response.Error(w, apierror.BadRequest("product_id is required"))
		return
	}

	item, err := h.catalogService.GetItem(r.Context(), productID)
	if err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.OK(w, item)
}

// UpdateItem handles PUT /api/v1/items/{product_id}
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		response.Error(w, apierror.BadRequest("product_id is required"))
		return
	}

	var upd model.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if upd.Category != nil && !model.ValidCategory(*upd.Category) {
		response.Error(w, apierror.BadRequest("Invalid category"))
		return
	}
	if upd.Price != nil && *upd.Price < 0 {
		response.Error(w, apierror.BadRequest("price must be non-negative"))
		return
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		response.Error(w, apierror.BadRequest("stock must be non-negative"))
		return
	}

	item, err := h.catalogService.UpdateItem(r.Context(), productID, upd)
	if err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.OK(w, item)
}

// DeleteItem handles DELETE /api/v1/items/{product_id}
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		response.Error(w, apierror.BadRequest("product_id is required"))
		return
	}

	if err := h.catalogService.DeleteItem(r.Context(), productID); err != nil {
		response.Error(w, mapCatalogError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"message":    "Item deleted",
		"product_id": productID,
	})
}

// mapCatalogError converts repository errors into API errors.
func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("Item not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.Conflict("An item with that productId or name already exists")
	default:
		return err
	}
}
