package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		log.Err(err).Str("func", "*Handler.createExpense").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	created, err := h.services.ExpenseService.Create(ctx, expense)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createExpense").Msg("error creating expense")
		http.Error(w, "error creating expense", statusFromError(err))
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	familyID := r.URL.Query().Get("familyId")
	if familyID == "" {
		log.Error().Str("func", "*Handler.listExpenses").Msg("no family ID was given")
		http.Error(w, "no family ID was given", http.StatusBadRequest)
		return
	}

	expenses, err := h.services.ExpenseService.ListByFamily(ctx, familyID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listExpenses").Msg("error listing expenses")
		http.Error(w, "error listing expenses", statusFromError(err))
		return
	}

	utils.WriteJSON(w, expenses, http.StatusOK)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	expense, err := h.services.ExpenseService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.getExpense").Msg("error getting expense")
		http.Error(w, "error getting expense", statusFromError(err))
		return
	}

	utils.WriteJSON(w, expense, http.StatusOK)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		log.Err(err).Str("func", "*Handler.updateExpense").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	expense.ID = chi.URLParam(r, "id")

	updated, err := h.services.ExpenseService.Update(ctx, expense)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateExpense").Msg("error updating expense")
		http.Error(w, "error updating expense", statusFromError(err))
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := h.services.ExpenseService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		log.Err(err).Str("func", "*Handler.deleteExpense").Msg("error deleting expense")
		http.Error(w, "error deleting expense", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
