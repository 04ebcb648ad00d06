package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

func (h *APIHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.Users.List(r.Context(), repository.UserQuery{
		Role: domain.Role(r.URL.Query().Get("role")),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

func (h *APIHandlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.services.Users.Register(r.Context(), in, clientSource(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (h *APIHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *APIHandlers) updateUser(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.services.Users.Update(r.Context(), chi.URLParam(r, "id"), func(u *domain.User) error {
		return applyPatch(raw, u)
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *APIHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "user deleted")
}

func (h *APIHandlers) verifyUser(w http.ResponseWriter, r *http.Request) {
	var in service.VerifyIdentityInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.services.Users.VerifyIdentity(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *APIHandlers) evaluateUser(w http.ResponseWriter, r *http.Request) {
	flags, err := h.services.Users.Evaluate(r.Context(), chi.URLParam(r, "id"))
	if err != nil && len(flags) == 0 {
		respondError(w, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("risk evaluation incomplete", "userId", chi.URLParam(r, "id"), "error", err)
	}
	if flags == nil {
		flags = []domain.RiskFlag{}
	}
	respondData(w, http.StatusOK, flags)
}

func (h *APIHandlers) userRiskFlags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.services.Users.Get(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	flags, err := h.services.RiskFlags.List(r.Context(), repository.RiskFlagQuery{UserID: id})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, flags)
}

func (h *APIHandlers) userLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.services.Users.Links(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, links)
}
