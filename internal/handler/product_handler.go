package handler

import (
	"net/http"
	"strconv"
	"strings"

	"flora-kart/internal/model"
	"flora-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxImageBytes bounds product image uploads.
const MaxImageBytes = 5 << 20

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/v1/products with filters, sort and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func productFilterFromQuery(r *http.Request) (model.ProductFilter, error) {
	q := r.URL.Query()
	filter := model.ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Sort:   model.ParseSort(q.Get("sort"), model.ProductSortFields, model.DefaultProductSort),
		Page:   pageFromQuery(r),
	}

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidID, "Invalid categoryId: "+v)
		}
		filter.CategoryID = &id
	}
	if v := strings.TrimSpace(q.Get("supplierId")); v != "" {
		filter.SupplierID = &v
	}
	for name, dst := range map[string]**bool{"isBestSeller": &filter.IsBestSeller, "isNew": &filter.IsNew} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return filter, model.InvalidInput("invalid %s: %s", name, v)
			}
			*dst = &b
		}
	}
	for name, dst := range map[string]**decimal.Decimal{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		if v := q.Get(name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return filter, model.InvalidInput("invalid %s: %s", name, v)
			}
			*dst = &d
		}
	}

	return filter, nil
}

// Get handles GET /api/v1/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.service.GetWithVariants(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// GetBySlug handles GET /api/v1/products/slug/{slug}.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"product": product})
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"product": product})
}

// Update handles PUT /api/v1/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"product": product})
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeMessage(w, "Product deleted successfully")
}

// ListVariants handles GET /api/v1/products/{id}/variants.
func (h *ProductHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	variants, err := h.service.ListVariants(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if variants == nil {
		variants = []model.Variant{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"variants": variants})
}

// CreateVariant handles POST /api/v1/products/{id}/variants.
func (h *ProductHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var in model.VariantInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	variant, err := h.service.CreateVariant(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"variant": variant})
}

// UploadImage handles POST /api/v1/products/{id}/image as multipart form field "image".
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+(1<<10))
	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		writeError(w, r, model.InvalidInput("image must be a multipart upload of at most %d bytes", MaxImageBytes), h.logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, model.InvalidInput("image file is required"), h.logger)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	product, err := h.service.UploadImage(r.Context(), id, contentType, file)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"product": product})
}
