package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

func (h *APIHandlers) listOffers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offers, err := h.services.Offers.List(r.Context(), repository.OfferQuery{
		PropertyID: query.Get("propertyId"),
		BuyerID:    query.Get("buyerId"),
		Status:     domain.OfferStatus(query.Get("status")),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, offers)
}

func (h *APIHandlers) createOffer(w http.ResponseWriter, r *http.Request) {
	var in service.OfferInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	offer, err := h.services.Offers.Create(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, offer)
}

func (h *APIHandlers) getOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.services.Offers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, offer)
}

func (h *APIHandlers) updateOffer(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	offer, err := h.services.Offers.Update(r.Context(), chi.URLParam(r, "id"), func(o *domain.Offer) error {
		return applyPatch(raw, o)
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, offer)
}

func (h *APIHandlers) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Offers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "offer deleted")
}
