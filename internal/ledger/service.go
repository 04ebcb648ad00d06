package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
)

const (
	defaultGenesisBlock   = 1_000_000
	defaultEventsPerBlock = 10
)

// EventStore is the storage contract required by the ledger service.
type EventStore interface {
	Insert(ctx context.Context, event domain.LedgerEvent) error
	List(ctx context.Context, q repository.LedgerQuery) ([]domain.LedgerEvent, error)
	InSequence(ctx context.Context) ([]domain.LedgerEvent, error)
	Get(ctx context.Context, id string) (domain.LedgerEvent, error)
	Latest(ctx context.Context) (domain.LedgerEvent, bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Options configures block numbering.
type Options struct {
	GenesisBlock   int64
	EventsPerBlock int64
}

// ResetResult reports what a reset removed and re-seeded.
type ResetResult struct {
	Removed int64 `json:"removed"`
	Seeded  int   `json:"seeded"`
}

// VerifyReport is the outcome of walking the chain.
type VerifyReport struct {
	Valid    bool   `json:"valid"`
	Checked  int    `json:"checked"`
	BrokenAt string `json:"brokenAt,omitempty"`
	Reason   string `json:"reason,omitempty"`
	HeadHash string `json:"headHash"`
}

// Service appends, lists and verifies ledger events.
type Service struct {
	events EventStore
	signer Signer
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
	nowFn  func() time.Time
	newID  func() string
	seed   []AppendInput

	// mu serialises appends so each event links to its true predecessor.
	mu sync.Mutex
}

// NewService constructs a ledger Service.
func NewService(events EventStore, logger *slog.Logger, opts Options) *Service {
	if opts.GenesisBlock <= 0 {
		opts.GenesisBlock = defaultGenesisBlock
	}
	if opts.EventsPerBlock <= 0 {
		opts.EventsPerBlock = defaultEventsPerBlock
	}
	return &Service{
		events: events,
		signer: RandomSigner{},
		opts:   opts,
		logger: logger.With("component", "ledger"),
		tracer: otel.Tracer("github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"),
		nowFn:  time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *Service) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// WithSigner replaces the signature generator.
func (s *Service) WithSigner(signer Signer) {
	if signer != nil {
		s.signer = signer
	}
}

// WithSeed sets the events re-appended after a reset.
func (s *Service) WithSeed(seed []AppendInput) {
	s.seed = seed
}

// Append validates in and stores it as the next event.
func (s *Service) Append(ctx context.Context, in AppendInput) (domain.LedgerEvent, error) {
	if err := in.Validate(); err != nil {
		return domain.LedgerEvent{}, err
	}

	ctx, span := s.tracer.Start(ctx, "ledger.Append", trace.WithAttributes(
		attribute.String("ledger.event_type", in.Type),
		attribute.String("ledger.actor_id", in.ActorID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.appendLocked(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return domain.LedgerEvent{}, err
	}
	span.SetAttributes(attribute.Int64("ledger.sequence", event.Sequence))
	return event, nil
}

// Record appends an event produced by the backend itself.
func (s *Service) Record(ctx context.Context, eventType, actorID, actorName string, details map[string]any) (domain.LedgerEvent, error) {
	if details == nil {
		details = map[string]any{}
	}
	return s.Append(ctx, AppendInput{
		Type:      eventType,
		ActorID:   actorID,
		ActorName: actorName,
		Details:   details,
	})
}

func (s *Service) appendLocked(ctx context.Context, in AppendInput) (domain.LedgerEvent, error) {
	var (
		sequence     int64
		previousHash = GenesisHash
	)
	last, ok, err := s.events.Latest(ctx)
	if err != nil {
		return domain.LedgerEvent{}, fmt.Errorf("read ledger head: %w", err)
	}
	if ok {
		sequence = last.Sequence + 1
		previousHash = last.ChainHash
	}

	// BSON keeps millisecond precision; truncating keeps the hash reproducible
	// from the stored timestamp.
	timestamp := s.nowFn().UTC().Truncate(time.Millisecond)

	hash, err := HashEvent(in.Type, in.ActorID, in.ActorName, in.Details, timestamp)
	if err != nil {
		return domain.LedgerEvent{}, err
	}
	signature, err := s.signer.Sign(hash)
	if err != nil {
		return domain.LedgerEvent{}, err
	}

	event := domain.LedgerEvent{
		ID:               s.newID(),
		Type:             in.Type,
		Timestamp:        timestamp,
		Hash:             hash,
		ActorID:          in.ActorID,
		ActorName:        in.ActorName,
		Details:          in.Details,
		Signature:        signature,
		BlockNumber:      s.opts.GenesisBlock + sequence/s.opts.EventsPerBlock,
		TransactionIndex: sequence % s.opts.EventsPerBlock,
		Sequence:         sequence,
		PreviousHash:     previousHash,
		ChainHash:        ChainHash(previousHash, hash),
	}
	if err := s.events.Insert(ctx, event); err != nil {
		return domain.LedgerEvent{}, err
	}

	s.logger.Debug("ledger event appended",
		"eventId", event.ID,
		"type", event.Type,
		"sequence", event.Sequence,
		"block", event.BlockNumber,
	)
	return event, nil
}

// List returns events, most recent first.
func (s *Service) List(ctx context.Context, q repository.LedgerQuery) ([]domain.LedgerEvent, error) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	return s.events.List(ctx, q)
}

// Get returns one event by id.
func (s *Service) Get(ctx context.Context, id string) (domain.LedgerEvent, error) {
	return s.events.Get(ctx, id)
}

// Reset deletes every event and re-appends the configured seed events.
func (s *Service) Reset(ctx context.Context) (ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.events.DeleteAll(ctx)
	if err != nil {
		return ResetResult{}, err
	}
	result := ResetResult{Removed: removed}
	for _, in := range s.seed {
		if _, err := s.appendLocked(ctx, in); err != nil {
			return result, fmt.Errorf("reseed ledger: %w", err)
		}
		result.Seeded++
	}

	s.logger.Info("ledger reset", "removed", result.Removed, "seeded", result.Seeded)
	return result, nil
}

// Verify recomputes every hash and chain link in append order and reports the
// first event that does not match.
func (s *Service) Verify(ctx context.Context) (VerifyReport, error) {
	events, err := s.events.InSequence(ctx)
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Valid: true, HeadHash: GenesisHash}
	previous := GenesisHash
	for _, event := range events {
		report.Checked++
		hash, err := HashEvent(event.Type, event.ActorID, event.ActorName, event.Details, event.Timestamp)
		if err != nil {
			return VerifyReport{}, err
		}
		switch {
		case hash != event.Hash:
			report.Reason = "event hash does not match its contents"
		case event.PreviousHash != previous:
			report.Reason = "previous hash does not match the preceding event"
		case ChainHash(previous, hash) != event.ChainHash:
			report.Reason = "chain hash does not match"
		}
		if report.Reason != "" {
			report.Valid = false
			report.BrokenAt = event.ID
			return report, nil
		}
		previous = event.ChainHash
	}
	report.HeadHash = previous
	return report, nil
}
