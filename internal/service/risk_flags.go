package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"
)

// RiskService evaluates users and manages the resulting flags.
type RiskService struct {
	clock
	flags     *repository.RiskFlags
	evaluator *risk.Evaluator
	ledger    LedgerRecorder
	logger    *slog.Logger
}

// NewRiskService constructs a RiskService.
func NewRiskService(flags *repository.RiskFlags, evaluator *risk.Evaluator, ledger LedgerRecorder, logger *slog.Logger) *RiskService {
	return &RiskService{
		clock:     defaultClock(),
		flags:     flags,
		evaluator: evaluator,
		ledger:    ledger,
		logger:    logger.With("component", "risk_flags"),
	}
}

// Evaluate runs every rule against user, stores the flags that fired and
// records one risk_flagged event when there is at least one. A rule that
// already has an active flag for the user returns that flag instead of a new
// one. Rule lookup errors are returned together with the flags.
func (s *RiskService) Evaluate(ctx context.Context, user domain.User, ec risk.EvaluationContext) ([]domain.RiskFlag, error) {
	if s.evaluator == nil {
		return nil, errors.New("risk evaluator is not configured")
	}
	flags, evalErr := s.evaluator.Evaluate(ctx, user, ec)
	if len(flags) == 0 {
		return nil, evalErr
	}

	active := true
	existing, err := s.flags.List(ctx, repository.RiskFlagQuery{UserID: user.ID, Active: &active})
	if err != nil {
		return nil, errors.Join(evalErr, fmt.Errorf("list active flags: %w", err))
	}
	byRule := make(map[string]domain.RiskFlag, len(existing))
	for _, flag := range existing {
		if rule := flagRule(flag); rule != "" {
			if _, seen := byRule[rule]; !seen {
				byRule[rule] = flag
			}
		}
	}

	var (
		result []domain.RiskFlag
		stored []domain.RiskFlag
		errs   []error
	)
	if evalErr != nil {
		errs = append(errs, evalErr)
	}
	for _, flag := range flags {
		if prior, ok := byRule[flagRule(flag)]; ok {
			result = append(result, prior)
			continue
		}
		if err := s.flags.Create(ctx, flag); err != nil {
			errs = append(errs, err)
			continue
		}
		stored = append(stored, flag)
		result = append(result, flag)
	}

	if len(stored) > 0 {
		summary := make([]map[string]any, 0, len(stored))
		for _, f := range stored {
			summary = append(summary, map[string]any{
				"flagId":     f.ID,
				"type":       string(f.Type),
				"severity":   string(f.Severity),
				"confidence": f.Confidence,
			})
		}
		record(ctx, s.ledger, s.logger, domain.EventRiskFlagged, user.ID, user.Name, map[string]any{
			"flags": summary,
		})
	}
	return result, errors.Join(errs...)
}

func flagRule(flag domain.RiskFlag) string {
	rule, _ := flag.Metadata["rule"].(string)
	return rule
}

// List returns flags matching q, newest first.
func (s *RiskService) List(ctx context.Context, q repository.RiskFlagQuery) ([]domain.RiskFlag, error) {
	return s.flags.List(ctx, q)
}

// Resolve deactivates a flag.
func (s *RiskService) Resolve(ctx context.Context, id string, in ResolveFlagInput) (domain.RiskFlag, error) {
	if err := requireField("resolvedBy", in.ResolvedBy); err != nil {
		return domain.RiskFlag{}, err
	}
	flag, err := s.flags.Get(ctx, id)
	if err != nil {
		return domain.RiskFlag{}, err
	}

	now := s.now()
	flag.IsActive = false
	flag.ResolvedAt = &now
	flag.ResolvedBy = in.ResolvedBy
	if err := s.flags.Update(ctx, id, flag); err != nil {
		return domain.RiskFlag{}, err
	}
	s.logger.Info("risk flag resolved", "flagId", id, "resolvedBy", in.ResolvedBy)
	return flag, nil
}
