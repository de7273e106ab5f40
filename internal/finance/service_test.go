package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finease/finease-server/internal/domain"
	"github.com/finease/finease-server/internal/logger"
	"github.com/finease/finease-server/internal/store"
	"github.com/finease/finease-server/internal/store/inmemory"
)

func newTestService() (*Service, *inmemory.Store) {
	recordStore := inmemory.NewStore()
	log := logger.NewWithWriter(nopWriter{})
	return NewService(recordStore, log), recordStore
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func mustCreate(t *testing.T, s *Service, owner string, amount float64, category, txType string) string {
	t.Helper()
	id, err := s.Create(context.Background(), owner, &domain.TransactionInput{
		Amount:   floatPtr(amount),
		Category: strPtr(category),
		Type:     strPtr(txType),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return id
}

func TestCreate_StampsOwnerAndCreatedAt(t *testing.T) {
	svc, _ := newTestService()
	stamped := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamped }

	// Client-supplied email/createdAt never reach the service: the payload
	// decoder strips them. The service stamps its own values.
	id, err := svc.Create(context.Background(), "alice@example.com", &domain.TransactionInput{
		Amount: floatPtr(100),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	detail, err := svc.Get(context.Background(), "alice@example.com", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Transaction.Email != "alice@example.com" {
		t.Errorf("owner = %q, want alice@example.com", detail.Transaction.Email)
	}
	if !detail.Transaction.CreatedAt.Equal(stamped) {
		t.Errorf("createdAt = %v, want %v", detail.Transaction.CreatedAt, stamped)
	}
}

func TestCreate_RequiresAmount(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "alice@example.com", &domain.TransactionInput{
		Category: strPtr("Food"),
	})
	if err == nil {
		t.Fatal("expected error for missing amount")
	}
	if !domain.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestCrossOwnerAccessIsForbidden(t *testing.T) {
	svc, _ := newTestService()
	id := mustCreate(t, svc, "alice@example.com", 50, "Food", domain.TypeExpense)

	ctx := context.Background()

	if _, err := svc.Get(ctx, "bob@example.com", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Get as other owner: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, "bob@example.com", id, &domain.TransactionInput{Amount: floatPtr(1)}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Update as other owner: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Delete(ctx, "bob@example.com", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Delete as other owner: err = %v, want ErrForbidden", err)
	}

	// The record is untouched.
	detail, err := svc.Get(ctx, "alice@example.com", id)
	if err != nil {
		t.Fatalf("Get as owner failed: %v", err)
	}
	if detail.Transaction.Amount != 50 {
		t.Errorf("amount = %v, want 50", detail.Transaction.Amount)
	}
}

func TestList_OnlyOwnRecords(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "alice@example.com", 10, "Food", domain.TypeExpense)
	mustCreate(t, svc, "alice@example.com", 20, "Food", domain.TypeExpense)
	mustCreate(t, svc, "bob@example.com", 99, "Food", domain.TypeExpense)

	txs, err := svc.List(context.Background(), "alice@example.com", store.ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d records, want 2", len(txs))
	}
	for _, tx := range txs {
		if tx.Email != "alice@example.com" {
			t.Errorf("leaked record owned by %q", tx.Email)
		}
	}
}

func TestGet_CategoryTypeAggregate(t *testing.T) {
	svc, _ := newTestService()
	owner := "alice@example.com"
	ids := []string{
		mustCreate(t, svc, owner, 10, "Food", domain.TypeExpense),
		mustCreate(t, svc, owner, 20, "Food", domain.TypeExpense),
		mustCreate(t, svc, owner, 30, "Food", domain.TypeExpense),
	}
	// Different category, type and owner must not contribute.
	mustCreate(t, svc, owner, 500, "Rent", domain.TypeExpense)
	mustCreate(t, svc, owner, 500, "Food", domain.TypeIncome)
	mustCreate(t, svc, "bob@example.com", 500, "Food", domain.TypeExpense)

	for _, id := range ids {
		detail, err := svc.Get(context.Background(), owner, id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if detail.TotalAmount != 60 {
			t.Errorf("totalAmount for %s = %v, want 60", id, detail.TotalAmount)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "alice@example.com", "no-such-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_PartialLeavesOtherFieldsUntouched(t *testing.T) {
	svc, _ := newTestService()
	owner := "alice@example.com"
	id := mustCreate(t, svc, owner, 42, "Food", domain.TypeExpense)

	modified, err := svc.Update(context.Background(), owner, id, &domain.TransactionInput{
		Category: strPtr("Groceries"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if modified != 1 {
		t.Errorf("modified = %d, want 1", modified)
	}

	detail, err := svc.Get(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	tx := detail.Transaction
	if tx.Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", tx.Category)
	}
	if tx.Amount != 42 {
		t.Errorf("amount changed: %v, want 42", tx.Amount)
	}
	if tx.Type != domain.TypeExpense {
		t.Errorf("type changed: %q", tx.Type)
	}
	if tx.Email != owner {
		t.Errorf("owner changed: %q", tx.Email)
	}
}

func TestUpdate_EmptyPayloadIsNoOp(t *testing.T) {
	svc, _ := newTestService()
	owner := "alice@example.com"
	id := mustCreate(t, svc, owner, 42, "Food", domain.TypeExpense)

	modified, err := svc.Update(context.Background(), owner, id, &domain.TransactionInput{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if modified != 0 {
		t.Errorf("modified = %d, want 0", modified)
	}
}

func TestDelete_MissingIDYieldsZeroCount(t *testing.T) {
	svc, _ := newTestService()

	deleted, err := svc.Delete(context.Background(), "alice@example.com", "no-such-id")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestDelete_RemovesRecord(t *testing.T) {
	svc, _ := newTestService()
	owner := "alice@example.com"
	id := mustCreate(t, svc, owner, 42, "Food", domain.TypeExpense)

	deleted, err := svc.Delete(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := svc.Get(context.Background(), owner, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("record still present after delete: err = %v", err)
	}
}

func TestSummarize(t *testing.T) {
	type record struct {
		txType string
		amount float64
	}
	tests := []struct {
		name        string
		records     []record
		wantIncome  float64
		wantExpense float64
		wantBalance float64
	}{
		{
			name: "income and expense",
			records: []record{
				{domain.TypeIncome, 100},
				{domain.TypeExpense, 30},
			},
			wantIncome:  100,
			wantExpense: 30,
			wantBalance: 70,
		},
		{
			name:        "no records",
			wantIncome:  0,
			wantExpense: 0,
			wantBalance: 0,
		},
		{
			name: "unknown type excluded",
			records: []record{
				{domain.TypeIncome, 100},
				{"Transfer", 1000},
			},
			wantIncome:  100,
			wantExpense: 0,
			wantBalance: 100,
		},
		{
			name: "negative expense counted as magnitude",
			records: []record{
				{domain.TypeIncome, 100},
				{domain.TypeExpense, -30},
			},
			wantIncome:  100,
			wantExpense: 30,
			wantBalance: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			owner := "alice@example.com"
			for _, rec := range tt.records {
				mustCreate(t, svc, owner, rec.amount, "General", rec.txType)
			}
			// Another caller's records never leak into the summary.
			mustCreate(t, svc, "bob@example.com", 9999, "General", domain.TypeIncome)

			overview, err := svc.Summarize(context.Background(), owner)
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if overview.TotalIncome != tt.wantIncome {
				t.Errorf("totalIncome = %v, want %v", overview.TotalIncome, tt.wantIncome)
			}
			if overview.TotalExpense != tt.wantExpense {
				t.Errorf("totalExpense = %v, want %v", overview.TotalExpense, tt.wantExpense)
			}
			if overview.TotalBalance != tt.wantBalance {
				t.Errorf("totalBalance = %v, want %v", overview.TotalBalance, tt.wantBalance)
			}
		})
	}
}
