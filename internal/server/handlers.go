package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
)

// LedgerService is the ledger behaviour exposed over HTTP.
type LedgerService interface {
	Append(ctx context.Context, in ledger.AppendInput) (domain.LedgerEvent, error)
	List(ctx context.Context, q repository.LedgerQuery) ([]domain.LedgerEvent, error)
	Get(ctx context.Context, id string) (domain.LedgerEvent, error)
	Reset(ctx context.Context) (ledger.ResetResult, error)
	Verify(ctx context.Context) (ledger.VerifyReport, error)
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	services *service.Services
	ledger   LedgerService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, services *service.Services, ledger LedgerService) *APIHandlers {
	return &APIHandlers{
		logger:   logger.With("component", "api"),
		services: services,
		ledger:   ledger,
	}
}

// clientSource identifies where a registration came from: the X-Client-ID
// header when present, otherwise the remote IP.
func clientSource(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Client-ID")); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
