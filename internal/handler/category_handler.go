package handler

import (
	"net/http"
	"strings"

	"flora-kart/internal/model"
	"flora-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.CategoryFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   pageFromQuery(r),
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"category": category})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var in model.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeMessage(w, "Category deleted successfully")
}
