package server

import (
	"net/http"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

func (h *APIHandlers) login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.services.Auth.Login(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (h *APIHandlers) me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, h.logger, service.ErrInvalidToken)
		return
	}

	user, err := h.services.Auth.Authenticate(r.Context(), token)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, user)
}
