package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/pkg/common"
	"go.uber.org/zap"
)

// CategoryHandler serves the public category catalog.
type CategoryHandler struct {
	categories *repository.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories *repository.CategoryRepository, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.FindAll(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, categories)
}

// Get handles GET /api/categories/{categoryID}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.FindByID(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, category)
}
