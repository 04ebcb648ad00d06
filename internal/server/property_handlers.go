package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

func (h *APIHandlers) listProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	properties, err := h.services.Properties.List(r.Context(), repository.PropertyQuery{
		SellerID: query.Get("sellerId"),
		Status:   domain.PropertyStatus(query.Get("status")),
		City:     query.Get("city"),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, properties)
}

func (h *APIHandlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in service.PropertyInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	property, err := h.services.Properties.Create(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, property)
}

func (h *APIHandlers) getProperty(w http.ResponseWriter, r *http.Request) {
	property, err := h.services.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, property)
}

func (h *APIHandlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	property, err := h.services.Properties.Update(r.Context(), chi.URLParam(r, "id"), func(p *domain.Property) error {
		return applyPatch(raw, p)
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, property)
}

func (h *APIHandlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Properties.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "property deleted")
}

func (h *APIHandlers) transferProperty(w http.ResponseWriter, r *http.Request) {
	var in service.TransferInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	property, err := h.services.Properties.Transfer(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, property)
}
