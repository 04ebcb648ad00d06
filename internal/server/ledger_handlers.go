package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
)

const defaultLedgerLimit = 100

func (h *APIHandlers) listLedger(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	events, err := h.ledger.List(r.Context(), repository.LedgerQuery{
		Type:    query.Get("type"),
		ActorID: query.Get("actorId"),
		Limit:   int64(parseInt(query.Get("limit"), defaultLedgerLimit)),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, events)
}

func (h *APIHandlers) appendLedger(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		respondError(w, h.logger, &badRequest{fmt.Errorf("decode body: %w", err)})
		return
	}

	in, err := ledger.ParseAppendRequest(body)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	event, err := h.ledger.Append(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, event)
}

func (h *APIHandlers) getLedgerEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, event)
}

func (h *APIHandlers) resetLedger(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.Reset(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("ledger reset", "removed", result.Removed, "seeded", result.Seeded)
	respondData(w, http.StatusOK, result)
}

func (h *APIHandlers) verifyLedger(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Verify(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if !report.Valid {
		h.logger.Warn("ledger chain broken", "eventId", report.BrokenAt, "reason", report.Reason)
	}
	respondData(w, http.StatusOK, report)
}
