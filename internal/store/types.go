package store

import (
	"context"

	"github.com/finease/finease-server/internal/domain"
)

// Sort keys accepted by List. Anything else falls back to the default
// ordering (newest first by creation time).
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListOptions controls the ordering of a List call. The zero value means
// createdAt descending.
type ListOptions struct {
	SortBy SortField
	Order  SortOrder
}

// RecordStore provides an interface for transaction persistence. The
// MongoDB implementation lives in internal/infra/mongo; an in-memory
// implementation for tests and local runs lives in internal/store/inmemory.
type RecordStore interface {
	// List returns all records owned by owner, ordered per opts.
	List(ctx context.Context, owner string, opts ListOptions) ([]*domain.Transaction, error)

	// FindByID returns the record with the given identifier, regardless of
	// owner. Returns domain.ErrNotFound when no record exists and a
	// domain.ValidationError when the identifier is malformed.
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)

	// Insert persists a new record and returns the store-assigned identifier.
	Insert(ctx context.Context, tx *domain.Transaction) (string, error)

	// Update applies a partial field update to the record with the given
	// identifier and returns the number of records modified.
	Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error)

	// Delete removes the record with the given identifier and returns the
	// number of records deleted (zero when none existed).
	Delete(ctx context.Context, id string) (int64, error)

	// SumByCategoryType returns the sum of amount over the owner's records
	// matching both category and txType. Zero matches sum to zero.
	SumByCategoryType(ctx context.Context, owner, category, txType string) (float64, error)
}
