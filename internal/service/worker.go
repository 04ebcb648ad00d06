package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/seed"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// TaskError accumulates multiple errors produced during bulk loading.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error { return e.Errors }

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// EventAppender appends caller supplied ledger events.
type EventAppender interface {
	Append(ctx context.Context, in ledger.AppendInput) (domain.LedgerEvent, error)
}

// LoadSummary counts what a load stored. Entities whose id already exists are
// counted as skipped.
type LoadSummary struct {
	Users      int64 `json:"users"`
	Properties int64 `json:"properties"`
	Offers     int64 `json:"offers"`
	Events     int64 `json:"events"`
	Skipped    int64 `json:"skipped"`
}

// BulkLoader writes datasets into the repository using a worker pool.
type BulkLoader struct {
	clock
	repo       *repository.Repository
	events     EventAppender
	workers    int
	bcryptCost int
	logger     *slog.Logger
}

// NewBulkLoader creates a BulkLoader with the provided concurrency.
func NewBulkLoader(repo *repository.Repository, events EventAppender, workers, bcryptCost int, logger *slog.Logger) *BulkLoader {
	if workers <= 0 {
		workers = 4
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &BulkLoader{
		clock:      defaultClock(),
		repo:       repo,
		events:     events,
		workers:    workers,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "loader"),
	}
}

// Load stores users, then properties, then offers concurrently within each
// collection. Ledger events are appended in order, and only into an empty
// ledger.
func (bl *BulkLoader) Load(ctx context.Context, ds seed.Dataset) (LoadSummary, error) {
	var summary LoadSummary

	err := bl.run(ctx, len(ds.Users), func(idx int) error {
		return bl.store(&summary.Users, &summary.Skipped, func() error {
			user, err := bl.prepareUser(ds.Users[idx])
			if err != nil {
				return err
			}
			return bl.repo.Users.Create(ctx, user)
		})
	})
	if err != nil {
		return summary, fmt.Errorf("load users: %w", err)
	}

	err = bl.run(ctx, len(ds.Properties), func(idx int) error {
		return bl.store(&summary.Properties, &summary.Skipped, func() error {
			p := ds.Properties[idx]
			bl.stamp(&p.CreatedAt, &p.UpdatedAt)
			if p.Currency == "" {
				p.Currency = defaultCurrency
			}
			if err := validateProperty(p); err != nil {
				return fmt.Errorf("property %s: %w", p.ID, err)
			}
			return bl.repo.Properties.Create(ctx, p)
		})
	})
	if err != nil {
		return summary, fmt.Errorf("load properties: %w", err)
	}

	err = bl.run(ctx, len(ds.Offers), func(idx int) error {
		return bl.store(&summary.Offers, &summary.Skipped, func() error {
			o := ds.Offers[idx]
			bl.stamp(&o.CreatedAt, &o.UpdatedAt)
			if o.Currency == "" {
				o.Currency = defaultCurrency
			}
			if err := validateOffer(o); err != nil {
				return fmt.Errorf("offer %s: %w", o.ID, err)
			}
			return bl.repo.Offers.Create(ctx, o)
		})
	})
	if err != nil {
		return summary, fmt.Errorf("load offers: %w", err)
	}

	if err := bl.appendEvents(ctx, ds.Events, &summary); err != nil {
		return summary, err
	}

	bl.logger.Info("dataset loaded",
		"users", summary.Users,
		"properties", summary.Properties,
		"offers", summary.Offers,
		"events", summary.Events,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (bl *BulkLoader) appendEvents(ctx context.Context, events []ledger.AppendInput, summary *LoadSummary) error {
	if bl.events == nil || len(events) == 0 {
		return nil
	}
	existing, err := bl.repo.Ledger.Count(ctx)
	if err != nil {
		return fmt.Errorf("count ledger events: %w", err)
	}
	if existing > 0 {
		bl.logger.Info("ledger already populated, skipping seed events", "existing", existing)
		return nil
	}
	for _, in := range events {
		if _, err := bl.events.Append(ctx, in); err != nil {
			return fmt.Errorf("append seed event %s: %w", in.Type, err)
		}
		summary.Events++
	}
	return nil
}

func (bl *BulkLoader) prepareUser(rec seed.UserRecord) (domain.User, error) {
	user := rec.User
	user.Name = identity.SanitizeString(user.Name)
	user.Email = identity.NormalizeEmail(user.Email)
	user.Phone = identity.NormalizePhone(user.Phone)
	if user.RegistrationSource == "" {
		user.RegistrationSource = "seed"
	}
	bl.stamp(&user.CreatedAt, &user.UpdatedAt)
	if err := validateUser(user); err != nil {
		return domain.User{}, fmt.Errorf("user %s: %w", user.ID, err)
	}
	if rec.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bl.bcryptCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password for %s: %w", user.ID, err)
		}
		user.PasswordHash = string(hash)
	}
	return user, nil
}

func (bl *BulkLoader) stamp(createdAt, updatedAt *time.Time) {
	now := bl.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

// store runs create, counting successes in stored and duplicate ids in skipped.
func (bl *BulkLoader) store(stored, skipped *int64, create func() error) error {
	err := create()
	switch {
	case err == nil:
		atomic.AddInt64(stored, 1)
		return nil
	case errors.Is(err, store.ErrDuplicate):
		atomic.AddInt64(skipped, 1)
		return nil
	default:
		return err
	}
}

func (bl *BulkLoader) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < bl.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}
	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
