package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/finease/finease-server/internal/domain"
	"github.com/finease/finease-server/internal/store"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of RecordStore. It is safe for
// concurrent use. Data is lost on restart - for persistence, use the
// MongoDB-backed store in internal/infra/mongo.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Transaction
	order   []string // insertion order, tie-breaker for equal timestamps
}

// NewStore creates a new empty in-memory record store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*domain.Transaction),
	}
}

// List implements the RecordStore interface.
func (s *Store) List(ctx context.Context, owner string, opts store.ListOptions) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0)
	for _, id := range s.order {
		tx := s.records[id]
		if tx == nil || tx.Email != owner {
			continue
		}
		result = append(result, copyTransaction(tx))
	}

	sortTransactions(result, opts)
	return result, nil
}

// FindByID implements the RecordStore interface.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.records[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return copyTransaction(tx), nil
}

// Insert implements the RecordStore interface. The identifier is a fresh
// UUID, mirroring the ObjectID the MongoDB store assigns.
func (s *Store) Insert(ctx context.Context, tx *domain.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyTransaction(tx)
	stored.ID = uuid.New().String()
	s.records[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.ID, nil
}

// Update implements the RecordStore interface.
func (s *Store) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.records[id]
	if !exists {
		return 0, nil
	}

	for key, val := range fields {
		switch key {
		case "amount":
			if amount, ok := val.(float64); ok {
				tx.Amount = amount
			}
		case "category":
			if cat, ok := val.(string); ok {
				tx.Category = cat
			}
		case "type":
			if typ, ok := val.(string); ok {
				tx.Type = typ
			}
		case "date":
			if date, ok := val.(string); ok {
				tx.Date = date
			}
		default:
			if tx.Extra == nil {
				tx.Extra = make(map[string]interface{})
			}
			tx.Extra[key] = val
		}
	}
	return 1, nil
}

// Delete implements the RecordStore interface. Deleting an unknown
// identifier is not an error: the count is simply zero.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return 0, nil
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// SumByCategoryType implements the RecordStore interface.
func (s *Store) SumByCategoryType(ctx context.Context, owner, category, txType string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, tx := range s.records {
		if tx.Email == owner && tx.Category == category && tx.Type == txType {
			total += tx.Amount
		}
	}
	return total, nil
}

// sortTransactions orders records per opts; the default is createdAt
// descending, matching the store-side sort of the MongoDB implementation.
func sortTransactions(txs []*domain.Transaction, opts store.ListOptions) {
	asc := opts.Order == store.OrderAsc

	switch opts.SortBy {
	case store.SortByDate:
		sort.SliceStable(txs, func(i, j int) bool {
			if asc {
				return txs[i].Date < txs[j].Date
			}
			return txs[i].Date > txs[j].Date
		})
	case store.SortByAmount:
		sort.SliceStable(txs, func(i, j int) bool {
			if asc {
				return txs[i].Amount < txs[j].Amount
			}
			return txs[i].Amount > txs[j].Amount
		})
	default:
		sort.SliceStable(txs, func(i, j int) bool {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		})
	}
}

// copyTransaction returns a deep-enough copy to keep callers from mutating
// stored state through returned pointers.
func copyTransaction(tx *domain.Transaction) *domain.Transaction {
	c := *tx
	if tx.Extra != nil {
		c.Extra = make(map[string]interface{}, len(tx.Extra))
		for k, v := range tx.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}
