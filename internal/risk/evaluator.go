package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

// Evaluator runs every rule against a candidate user.
type Evaluator struct {
	users  UserLookup
	rules  []Rule
	logger *slog.Logger
	tracer trace.Tracer
	newID  func() string
}

// NewEvaluator constructs an Evaluator over the given rules.
func NewEvaluator(users UserLookup, rules []Rule, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		users:  users,
		rules:  rules,
		logger: logger.With("component", "risk"),
		tracer: otel.Tracer("github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"),
		newID:  func() string { return uuid.NewString() },
	}
}

// Evaluate runs all rules and returns one flag per rule that fired. A failing
// rule does not stop the others; their errors are joined and returned together
// with the flags that were produced.
func (e *Evaluator) Evaluate(ctx context.Context, candidate domain.User, ec EvaluationContext) ([]domain.RiskFlag, error) {
	if ec.Now.IsZero() {
		ec.Now = time.Now().UTC()
	}

	ctx, span := e.tracer.Start(ctx, "risk.Evaluate", trace.WithAttributes(
		attribute.String("risk.user_id", candidate.ID),
		attribute.Int("risk.rules", len(e.rules)),
	))
	defer span.End()

	var (
		flags []domain.RiskFlag
		errs  []error
	)
	for _, rule := range e.rules {
		finding, err := rule.Evaluate(ctx, e.users, candidate, ec)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.Name(), err))
			continue
		}
		if finding == nil {
			continue
		}
		flags = append(flags, domain.RiskFlag{
			ID:          e.newID(),
			UserID:      candidate.ID,
			Type:        finding.Type,
			Severity:    finding.Severity,
			Description: finding.Description,
			Confidence:  finding.Confidence,
			Metadata:    finding.Metadata,
			IsActive:    true,
			CreatedAt:   ec.Now,
		})
	}

	span.SetAttributes(attribute.Int("risk.flags", len(flags)))
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rule lookup failed")
		e.logger.Warn("risk evaluation incomplete", "userId", candidate.ID, "error", err)
	}
	if len(flags) > 0 {
		e.logger.Info("risk flags raised", "userId", candidate.ID, "count", len(flags))
	}
	return flags, err
}
