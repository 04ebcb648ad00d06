package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

func (h *APIHandlers) listRiskFlags(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := repository.RiskFlagQuery{UserID: query.Get("userId")}
	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			verr := &domain.ValidationError{}
			verr.Add("active", "active must be true or false")
			respondError(w, h.logger, verr)
			return
		}
		q.Active = &active
	}

	flags, err := h.services.RiskFlags.List(r.Context(), q)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, flags)
}

func (h *APIHandlers) resolveRiskFlag(w http.ResponseWriter, r *http.Request) {
	var in service.ResolveFlagInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	flag, err := h.services.RiskFlags.Resolve(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, flag)
}
