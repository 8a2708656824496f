package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortField is one key of a sort specification
type SortField struct {
	Field string
	Desc  bool
}

// Repository provides generic CRUD operations for MongoDB
type Repository[T any] struct {
	collection *mongo.Collection
}

// NewRepository creates a new generic repository
func NewRepository[T any](db *mongo.Database, collectionName string) *Repository[T] {
	return &Repository[T]{
		collection: db.Collection(collectionName),
	}
}

// Collection exposes the underlying collection for index management
func (r *Repository[T]) Collection() *mongo.Collection {
	return r.collection
}

func OpenConnection(ctx context.Context, uri string, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(database), nil
}

// Create inserts a new document and returns its ObjectID
func (r *Repository[T]) Create(ctx context.Context, document T) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid, nil
}

// FindByID finds a document by its ObjectID
func (r *Repository[T]) FindByID(ctx context.Context, id primitive.ObjectID, opts ...*options.FindOneOptions) (*T, error) {
	return r.FindOne(ctx, bson.M{"_id": id}, opts...)
}

// FindOne finds a single document matching the filter
func (r *Repository[T]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var result T
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindFirst returns the first document in sort order, or mongo.ErrNoDocuments
func (r *Repository[T]) FindFirst(ctx context.Context, filter bson.M, sort ...SortField) (*T, error) {
	return r.FindOne(ctx, filter, options.FindOne().SetSort(sortDoc(sort)))
}

// FindAll finds all documents matching the filter in the given order
func (r *Repository[T]) FindAll(ctx context.Context, filter bson.M, sort ...SortField) ([]T, error) {
	findOptions := options.Find()
	if len(sort) > 0 {
		findOptions.SetSort(sortDoc(sort))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]T, 0)
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Update applies a $set to a single document matching the filter
func (r *Repository[T]) Update(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	return r.collection.UpdateOne(ctx, filter, bson.M{"$set": update})
}

// Apply runs an arbitrary update document ($addToSet, $pull, ...) on one document
func (r *Repository[T]) Apply(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	return r.collection.UpdateOne(ctx, filter, update)
}

// UpdateMany updates multiple documents matching the filter
func (r *Repository[T]) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	return r.collection.UpdateMany(ctx, filter, bson.M{"$set": update})
}

// Upsert applies update to the document matching filter, inserting it when absent, and
// returns the document after the update.
func (r *Repository[T]) Upsert(ctx context.Context, filter bson.M, update bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Count counts documents matching the filter
func (r *Repository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

// Exists checks if a document matching the filter exists
func (r *Repository[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func sortDoc(fields []SortField) bson.D {
	doc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		order := 1
		if f.Desc {
			order = -1
		}
		doc = append(doc, bson.E{Key: f.Field, Value: order})
	}
	return doc
}
