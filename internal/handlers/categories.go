package handlers

import (
	"net/http"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CategoryHandler serves the fixed category list
type CategoryHandler struct {
	categories database.CategoryRepositoryInterface
	logger     *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories database.CategoryRepositoryInterface, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterRoutes registers category routes on the /api/v1 router
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/categories", h.ListCategories).Methods("GET")
}

// ListCategories lists all categories with their colors
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
