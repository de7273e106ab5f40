package mongo

import (
	"strconv"
	"time"

	"github.com/finease/finease-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names of the transaction document. The collection predates this
// service, so the keys follow the existing documents rather than Go naming.
const (
	fieldID        = "_id"
	fieldEmail     = "email"
	fieldAmount    = "amount"
	fieldCategory  = "category"
	fieldType      = "type"
	fieldDate      = "date"
	fieldCreatedAt = "createdAt"
)

// docFromTransaction flattens a Transaction into a bson document, extras
// inline alongside the fixed fields. The _id is left for the driver to
// assign.
func docFromTransaction(tx *domain.Transaction) bson.M {
	doc := bson.M{
		fieldEmail:     tx.Email,
		fieldAmount:    tx.Amount,
		fieldCategory:  tx.Category,
		fieldType:      tx.Type,
		fieldDate:      tx.Date,
		fieldCreatedAt: primitive.NewDateTimeFromTime(tx.CreatedAt),
	}
	for k, v := range tx.Extra {
		doc[k] = v
	}
	return doc
}

// transactionFromDoc rebuilds a Transaction from a raw document. Unknown
// keys land in Extra; numeric fields tolerate the int32/int64/float64
// variants bson decoding produces.
func transactionFromDoc(doc bson.M) *domain.Transaction {
	tx := &domain.Transaction{}

	for key, val := range doc {
		switch key {
		case fieldID:
			if oid, ok := val.(primitive.ObjectID); ok {
				tx.ID = oid.Hex()
			}
		case fieldEmail:
			tx.Email, _ = val.(string)
		case fieldAmount:
			tx.Amount = asFloat64(val)
		case fieldCategory:
			tx.Category, _ = val.(string)
		case fieldType:
			tx.Type, _ = val.(string)
		case fieldDate:
			tx.Date, _ = val.(string)
		case fieldCreatedAt:
			tx.CreatedAt = asTime(val)
		default:
			if tx.Extra == nil {
				tx.Extra = make(map[string]interface{})
			}
			tx.Extra[key] = val
		}
	}

	return tx
}

func asFloat64(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case primitive.Decimal128:
		f, _ := strconv.ParseFloat(v.String(), 64)
		return f
	default:
		return 0
	}
}

func asTime(val interface{}) time.Time {
	switch v := val.(type) {
	case primitive.DateTime:
		return v.Time()
	case time.Time:
		return v
	default:
		return time.Time{}
	}
}
