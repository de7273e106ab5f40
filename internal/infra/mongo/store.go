package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/finease/finease-server/internal/domain"
	"github.com/finease/finease-server/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store is the MongoDB implementation of RecordStore. It holds a shared
// client so every operation reuses the driver's connection pool.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB, pings the deployment to confirm the
// connection, and binds the transaction collection.
func NewStore(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("NewStore: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("NewStore: ping: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the underlying client. This should be called when the
// store is no longer needed to release resources.
func (s *Store) Close(ctx context.Context) error {
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

// List implements the RecordStore interface. The owner filter is always
// applied; callers never choose the filter email.
func (s *Store) List(ctx context.Context, owner string, opts store.ListOptions) ([]*domain.Transaction, error) {
	filter := bson.M{"email": owner}
	findOpts := options.Find().SetSort(sortSpec(opts))

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("List: find: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*domain.Transaction
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("List: decode: %w", err)
		}
		result = append(result, transactionFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("List: cursor: %w", err)
	}

	return result, nil
}

// FindByID implements the RecordStore interface.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByID: find one: %w", err)
	}

	return transactionFromDoc(doc), nil
}

// Insert implements the RecordStore interface.
func (s *Store) Insert(ctx context.Context, tx *domain.Transaction) (string, error) {
	res, err := s.coll.InsertOne(ctx, docFromTransaction(tx))
	if err != nil {
		return "", fmt.Errorf("Insert: insert one: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("Insert: unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Update implements the RecordStore interface. Only the supplied fields are
// set; everything else on the document is untouched.
func (s *Store) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("Update: update one: %w", err)
	}
	return res.ModifiedCount, nil
}

// Delete implements the RecordStore interface. Deleting an unknown
// identifier returns a zero count, not an error.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("Delete: delete one: %w", err)
	}
	return res.DeletedCount, nil
}

// SumByCategoryType implements the RecordStore interface with a grouped-sum
// aggregation over the owner's records sharing category and type.
func (s *Store) SumByCategoryType(ctx context.Context, owner, category, txType string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"email":    owner,
			"category": category,
			"type":     txType,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalAmount": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("SumByCategoryType: aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	var agg []struct {
		TotalAmount float64 `bson:"totalAmount"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		return 0, fmt.Errorf("SumByCategoryType: decode: %w", err)
	}

	if len(agg) == 0 {
		return 0, nil
	}
	return agg[0].TotalAmount, nil
}

// sortSpec maps ListOptions onto a Mongo sort document. Unknown sort keys
// fall back to createdAt descending.
func sortSpec(opts store.ListOptions) bson.D {
	dir := -1
	if opts.Order == store.OrderAsc {
		dir = 1
	}

	switch opts.SortBy {
	case store.SortByDate:
		return bson.D{{Key: "date", Value: dir}}
	case store.SortByAmount:
		return bson.D{{Key: "amount", Value: dir}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// objectID parses a hex identifier, reporting a ValidationError on garbage
// so handlers answer 400 rather than 500.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NewValidationError("malformed identifier %q", id)
	}
	return oid, nil
}
