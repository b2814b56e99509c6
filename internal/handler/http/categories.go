package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		log.Err(err).Str("func", "*Handler.createCategory").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	created, err := h.services.CategoryService.Create(ctx, category)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createCategory").Msg("error creating category")
		http.Error(w, "error creating category", statusFromError(err))
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	familyID := r.URL.Query().Get("familyId")
	if familyID == "" {
		log.Error().Str("func", "*Handler.listCategories").Msg("no family ID was given")
		http.Error(w, "no family ID was given", http.StatusBadRequest)
		return
	}

	categories, err := h.services.CategoryService.ListByFamily(ctx, familyID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listCategories").Msg("error listing categories")
		http.Error(w, "error listing categories", statusFromError(err))
		return
	}

	utils.WriteJSON(w, categories, http.StatusOK)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	category, err := h.services.CategoryService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.getCategory").Msg("error getting category")
		http.Error(w, "error getting category", statusFromError(err))
		return
	}

	utils.WriteJSON(w, category, http.StatusOK)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		log.Err(err).Str("func", "*Handler.updateCategory").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	category.ID = chi.URLParam(r, "id")

	updated, err := h.services.CategoryService.Update(ctx, category)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateCategory").Msg("error updating category")
		http.Error(w, "error updating category", statusFromError(err))
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := h.services.CategoryService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		log.Err(err).Str("func", "*Handler.deleteCategory").Msg("error deleting category")
		http.Error(w, "error deleting category", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
