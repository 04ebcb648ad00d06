package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every API response.
type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// badRequest marks malformed request input.
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, envelope{Success: false, Error: msg})
}

// respondError maps service and storage errors onto HTTP statuses.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	var breq *badRequest
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, envelope{Error: "validation failed", Message: verr.Error(), Details: verr.Fields})
	case errors.As(err, &breq):
		respondJSON(w, http.StatusBadRequest, envelope{Error: "invalid request body", Message: breq.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		respondJSON(w, http.StatusConflict, envelope{Error: "already exists", Message: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, envelope{Error: "unauthorized", Message: err.Error()})
	case errors.Is(err, graph.ErrUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, envelope{Error: "service unavailable", Message: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, envelope{Error: "internal server error", Message: err.Error()})
	}
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, &badRequest{errors.New("request body is required")}
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &badRequest{err}
	}
	if len(raw) == 0 {
		return nil, &badRequest{errors.New("request body is required")}
	}
	return raw, nil
}

// decodeStrict decodes raw into dst, rejecting unknown fields.
func decodeStrict(raw []byte, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &badRequest{fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

// applyPatch replaces the top-level fields of current named in raw. Each named
// field is decoded from scratch, so nested values the client leaves out are
// dropped rather than inherited from current.
func applyPatch[T any](raw []byte, current *T) error {
	var check T
	if err := decodeStrict(raw, &check); err != nil {
		return err
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(raw, &patch); err != nil {
		return &badRequest{fmt.Errorf("decode body: %w", err)}
	}

	encoded, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode current value: %w", err)
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return fmt.Errorf("decode current value: %w", err)
	}
	for key, value := range patch {
		for existing := range merged {
			if strings.EqualFold(existing, key) {
				delete(merged, existing)
			}
		}
		merged[key] = value
	}

	body, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode merged value: %w", err)
	}
	var fresh T
	if err := decodeStrict(body, &fresh); err != nil {
		return err
	}
	*current = fresh
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	raw, err := readBody(w, r)
	if err != nil {
		return err
	}
	return decodeStrict(raw, dst)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
