package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Transaction type values used to discriminate the overview sums. Any other
// value is persisted as-is but excluded from income/expense totals.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
)

// Transaction is one persisted finance record. Email and CreatedAt are
// stamped by the server at creation time and are never taken from client
// input. Extra holds any additional fields the client sent; they round-trip
// through the store untouched.
type Transaction struct {
	ID        string
	Email     string
	Amount    float64
	Category  string
	Type      string
	Date      string
	CreatedAt time.Time
	Extra     map[string]interface{}
}

// MarshalJSON flattens Extra into the top-level object so responses look
// exactly like the stored document.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(t.Extra)+7)
	for k, v := range t.Extra {
		doc[k] = v
	}
	doc["_id"] = t.ID
	doc["email"] = t.Email
	doc["amount"] = t.Amount
	doc["category"] = t.Category
	doc["type"] = t.Type
	doc["date"] = t.Date
	doc["createdAt"] = t.CreatedAt
	return json.Marshal(doc)
}

// TransactionInput is a client payload for create and partial update.
// Known fields are nil when the client did not supply them, so an update
// only touches what was sent. Identity and audit fields (_id, email,
// createdAt) are silently dropped: the server owns them.
type TransactionInput struct {
	Amount   *float64
	Category *string
	Type     *string
	Date     *string
	Extra    map[string]interface{}
}

// serverOwnedFields are stripped from every client payload.
var serverOwnedFields = map[string]bool{
	"_id":       true,
	"id":        true,
	"email":     true,
	"createdAt": true,
}

// UnmarshalJSON decodes a payload, coercing amount from either a JSON
// number or a numeric string. A non-numeric amount is a ValidationError.
func (in *TransactionInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError("request body must be a JSON object")
	}

	*in = TransactionInput{}
	for key, val := range raw {
		if serverOwnedFields[key] {
			continue
		}
		switch key {
		case "amount":
			amount, err := coerceAmount(val)
			if err != nil {
				return err
			}
			in.Amount = &amount
		case "category":
			s, err := decodeString(key, val)
			if err != nil {
				return err
			}
			in.Category = &s
		case "type":
			s, err := decodeString(key, val)
			if err != nil {
				return err
			}
			in.Type = &s
		case "date":
			s, err := decodeString(key, val)
			if err != nil {
				return err
			}
			in.Date = &s
		default:
			var v interface{}
			if err := json.Unmarshal(val, &v); err != nil {
				return NewValidationError("field %q is not valid JSON", key)
			}
			if in.Extra == nil {
				in.Extra = make(map[string]interface{})
			}
			in.Extra[key] = v
		}
	}
	return nil
}

// Fields returns the supplied fields as a flat document, suitable for a
// partial update. Server-owned fields never appear in the result.
func (in *TransactionInput) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, len(in.Extra)+4)
	for k, v := range in.Extra {
		fields[k] = v
	}
	if in.Amount != nil {
		fields["amount"] = *in.Amount
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Date != nil {
		fields["date"] = *in.Date
	}
	return fields
}

// coerceAmount accepts a JSON number or a numeric string and returns a
// finite float64. Everything else is a ValidationError.
func coerceAmount(raw json.RawMessage) (float64, error) {
	var amount float64

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, NewValidationError("amount %q is not a number", s)
		}
		amount = parsed
	} else if err := json.Unmarshal(raw, &amount); err != nil {
		return 0, NewValidationError("amount must be a number or a numeric string")
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, NewValidationError("amount must be a finite number")
	}
	return amount, nil
}

func decodeString(key string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", NewValidationError("field %q must be a string", key)
	}
	return s, nil
}

// String implements fmt.Stringer for log output.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{id=%s owner=%s amount=%.2f type=%s category=%s}",
		t.ID, t.Email, t.Amount, t.Type, t.Category)
}
