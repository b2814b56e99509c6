package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	familyID := chi.URLParam(r, "familyId")
	if familyID == "" {
		log.Error().Str("func", "*Handler.sync").Msg("no family ID was given")
		http.Error(w, "no family ID was given", http.StatusBadRequest)
		return
	}

	var syncRequest models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&syncRequest); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	response, err := h.services.SyncService.Sync(ctx, familyID, syncRequest)
	if err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("error reconciling changeset")
		http.Error(w, "error reconciling changeset", statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
