package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransactionInput_AmountCoercion(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{
			name: "json number",
			body: `{"amount": 42.5}`,
			want: 42.5,
		},
		{
			name: "numeric string",
			body: `{"amount": "42.5"}`,
			want: 42.5,
		},
		{
			name: "numeric string with spaces",
			body: `{"amount": " 17 "}`,
			want: 17,
		},
		{
			name: "negative number",
			body: `{"amount": -3}`,
			want: -3,
		},
		{
			name:    "non-numeric string",
			body:    `{"amount": "abc"}`,
			wantErr: true,
		},
		{
			name:    "NaN string",
			body:    `{"amount": "NaN"}`,
			wantErr: true,
		},
		{
			name:    "Inf string",
			body:    `{"amount": "+Inf"}`,
			wantErr: true,
		},
		{
			name:    "boolean",
			body:    `{"amount": true}`,
			wantErr: true,
		},
		{
			name:    "empty string",
			body:    `{"amount": ""}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in TransactionInput
			err := json.Unmarshal([]byte(tt.body), &in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsValidation(err) {
					t.Errorf("expected ValidationError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if in.Amount == nil {
				t.Fatal("expected amount to be set")
			}
			if *in.Amount != tt.want {
				t.Errorf("amount = %v, want %v", *in.Amount, tt.want)
			}
		})
	}
}

func TestTransactionInput_StripsServerOwnedFields(t *testing.T) {
	body := `{
		"amount": 10,
		"email": "attacker@example.com",
		"createdAt": "2020-01-01T00:00:00Z",
		"_id": "abc",
		"id": "abc",
		"note": "lunch"
	}`

	var in TransactionInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	fields := in.Fields()
	for _, forbidden := range []string{"email", "createdAt", "_id", "id"} {
		if _, present := fields[forbidden]; present {
			t.Errorf("server-owned field %q leaked into payload", forbidden)
		}
	}
	if fields["note"] != "lunch" {
		t.Errorf("extra field note = %v, want lunch", fields["note"])
	}
	if fields["amount"] != 10.0 {
		t.Errorf("amount = %v, want 10", fields["amount"])
	}
}

func TestTransactionInput_PartialFields(t *testing.T) {
	var in TransactionInput
	if err := json.Unmarshal([]byte(`{"category": "Food"}`), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if in.Amount != nil || in.Type != nil || in.Date != nil {
		t.Error("unsupplied fields should stay nil")
	}

	fields := in.Fields()
	if len(fields) != 1 {
		t.Errorf("expected exactly one field, got %v", fields)
	}
	if fields["category"] != "Food" {
		t.Errorf("category = %v, want Food", fields["category"])
	}
}

func TestTransactionInput_RejectsNonObject(t *testing.T) {
	var in TransactionInput
	err := json.Unmarshal([]byte(`[1,2,3]`), &in)
	if err == nil {
		t.Fatal("expected error for non-object body")
	}
	if !IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestTransaction_MarshalJSON_FlattensExtra(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tx := &Transaction{
		ID:        "665f1c2e8b3a4d5e6f708192",
		Email:     "user@example.com",
		Amount:    42.5,
		Category:  "Food",
		Type:      TypeExpense,
		Date:      "2025-06-01",
		CreatedAt: created,
		Extra:     map[string]interface{}{"note": "lunch"},
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	if doc["_id"] != tx.ID {
		t.Errorf("_id = %v, want %v", doc["_id"], tx.ID)
	}
	if doc["email"] != tx.Email {
		t.Errorf("email = %v, want %v", doc["email"], tx.Email)
	}
	if doc["amount"] != 42.5 {
		t.Errorf("amount = %v, want 42.5", doc["amount"])
	}
	if doc["note"] != "lunch" {
		t.Errorf("extra field note = %v, want lunch", doc["note"])
	}
}
