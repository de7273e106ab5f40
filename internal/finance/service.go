package finance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/finease/finease-server/internal/domain"
	"github.com/finease/finease-server/internal/store"
	"github.com/rs/zerolog"
)

// Service is the ownership-scoped transaction service. Every operation
// takes the caller's verified email and restricts reads and writes to that
// caller's records. The store is injected so tests can substitute the
// in-memory implementation.
type Service struct {
	store store.RecordStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a transaction service on top of a record store.
func NewService(recordStore store.RecordStore, log zerolog.Logger) *Service {
	return &Service{
		store: recordStore,
		log:   log,
		now:   time.Now,
	}
}

// Detail is the result of Get: the record plus the recomputed sum of amount
// over the caller's records sharing its category and type, the fetched
// record included.
type Detail struct {
	Transaction *domain.Transaction
	TotalAmount float64
}

// Overview is the caller's income/expense summary. TotalExpense is a
// positive magnitude; TotalBalance is income minus expense.
type Overview struct {
	TotalBalance float64 `json:"totalBalance"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
}

// List returns all of the owner's records, ordered per opts. The owner is
// always the verified caller; there is deliberately no way to list someone
// else's records.
func (s *Service) List(ctx context.Context, owner string, opts store.ListOptions) ([]*domain.Transaction, error) {
	txs, err := s.store.List(ctx, owner, opts)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return txs, nil
}

// Create persists a new record for the owner. Amount is required and must
// already be coerced to a number by the payload decoder; email and
// createdAt are stamped here, discarding anything the client sent.
func (s *Service) Create(ctx context.Context, owner string, in *domain.TransactionInput) (string, error) {
	if in.Amount == nil {
		return "", domain.NewValidationError("amount is required")
	}

	tx := &domain.Transaction{
		Email:     owner,
		Amount:    *in.Amount,
		CreatedAt: s.now(),
		Extra:     in.Extra,
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("Create: %w", err)
	}

	s.log.Info().Str("id", id).Str("owner", owner).Float64("amount", tx.Amount).Msg("Transaction created")
	return id, nil
}

// Get fetches one record and the category/type total over the caller's
// records. A missing record is ErrNotFound; someone else's record is
// ErrForbidden.
func (s *Service) Get(ctx context.Context, owner, id string) (*Detail, error) {
	tx, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if tx.Email != owner {
		return nil, domain.ErrForbidden
	}

	total, err := s.store.SumByCategoryType(ctx, owner, tx.Category, tx.Type)
	if err != nil {
		return nil, fmt.Errorf("Get: aggregate: %w", err)
	}

	return &Detail{Transaction: tx, TotalAmount: total}, nil
}

// Update applies a partial update to the caller's record. The payload
// decoder has already dropped the server-owned fields, so a client cannot
// reassign a record to another owner. Unsupplied fields stay untouched.
func (s *Service) Update(ctx context.Context, owner, id string, in *domain.TransactionInput) (int64, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("Update: %w", err)
	}
	if existing.Email != owner {
		return 0, domain.ErrForbidden
	}

	fields := in.Fields()
	if len(fields) == 0 {
		return 0, nil
	}

	modified, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return 0, fmt.Errorf("Update: %w", err)
	}

	s.log.Info().Str("id", id).Str("owner", owner).Int64("modified", modified).Msg("Transaction updated")
	return modified, nil
}

// Delete removes the caller's record. Deleting an identifier that does not
// exist is not an error: the count is zero, matching the store semantics.
func (s *Service) Delete(ctx context.Context, owner, id string) (int64, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("Delete: %w", err)
	}
	if existing.Email != owner {
		return 0, domain.ErrForbidden
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("Delete: %w", err)
	}

	s.log.Info().Str("id", id).Str("owner", owner).Int64("deleted", deleted).Msg("Transaction deleted")
	return deleted, nil
}

// Summarize computes the caller's totals. Records typed neither Income nor
// Expense count toward neither sum.
func (s *Service) Summarize(ctx context.Context, owner string) (*Overview, error) {
	txs, err := s.store.List(ctx, owner, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("Summarize: %w", err)
	}

	var income, expense float64
	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeIncome:
			income += tx.Amount
		case domain.TypeExpense:
			expense += math.Abs(tx.Amount)
		}
	}

	return &Overview{
		TotalBalance: income - expense,
		TotalIncome:  income,
		TotalExpense: expense,
	}, nil
}
