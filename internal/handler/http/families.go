// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/service"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

type createFamilyRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request createFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.createFamily").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	family, err := h.services.FamilyService.Create(ctx, request.Name)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createFamily").Msg("error creating family")
		http.Error(w, "error creating family", statusFromError(err))
		return
	}

	utils.WriteJSON(w, family, http.StatusCreated)
}

func (h *Handler) listFamilies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	families, err := h.services.FamilyService.List(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listFamilies").Msg("error listing families")
		http.Error(w, "error listing families", statusFromError(err))
		return
	}

	utils.WriteJSON(w, families, http.StatusOK)
}

func (h *Handler) getFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	family, err := h.services.FamilyService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.getFamily").Msg("error getting family")
		http.Error(w, "error getting family", statusFromError(err))
		return
	}

	utils.WriteJSON(w, family, http.StatusOK)
}

// deleteFamilyConflict is the structured body answered when a delete is
// refused because the family still owns live records.
type deleteFamilyConflict struct {
	Error string `json:"error"`
}

func (h *Handler) deleteFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	err := h.services.FamilyService.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrFamilyHasDependents) {
		log.Info().Str("func", "*Handler.deleteFamily").Msg("delete refused, family has live dependents")
		utils.WriteJSON(w, deleteFamilyConflict{Error: err.Error()}, http.StatusConflict)
		return
	}
	if err != nil {
		log.Err(err).Str("func", "*Handler.deleteFamily").Msg("error deleting family")
		http.Error(w, "error deleting family", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addFamilyMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var member models.FamilyMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		log.Err(err).Str("func", "*Handler.addFamilyMember").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	member.FamilyID = chi.URLParam(r, "id")

	created, err := h.services.FamilyService.AddMember(ctx, member)
	if err != nil {
		log.Err(err).Str("func", "*Handler.addFamilyMember").Msg("error adding family member")
		http.Error(w, "error adding family member", statusFromError(err))
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) listFamilyMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	members, err := h.services.FamilyService.ListMembers(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.listFamilyMembers").Msg("error listing family members")
		http.Error(w, "error listing family members", statusFromError(err))
		return
	}

	utils.WriteJSON(w, members, http.StatusOK)
}
