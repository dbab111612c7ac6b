package models

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the slice of *mongo.Collection the resolver needs. Tests
// substitute an in-memory implementation.
type Collection interface {
	Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...options.Lister[options.CountOptions]) (int64, error)
}

// Opener yields the handle for a named collection.
type Opener func(name string) Collection

// BaseModel gives uniform access to one collection. Documents carry two
// identity fields: the application-assigned "id" string (e.g.
// "project_1700000000000") and the Mongo "_id". Lookups by identifier probe
// the "id" field first and fall back to "_id" only when the value parses as
// an ObjectID hex, so either key coming off the wire resolves.
type BaseModel struct {
	name string
	col  Collection
}

func NewBaseModel(name string, open Opener) *BaseModel {
	return &BaseModel{name: name, col: open(name)}
}

func (m *BaseModel) Name() string { return m.name }

// FindAll returns every document matching the equality filter; a nil filter
// matches the whole collection.
func (m *BaseModel) FindAll(ctx context.Context, filter bson.M) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, m.storageErr("find", err)
	}
	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, m.storageErr("find", err)
	}
	return docs, nil
}

// FindByID resolves a document by either identifier. Returns (nil, nil)
// when neither probe matches.
func (m *BaseModel) FindByID(ctx context.Context, id string) (bson.M, error) {
	var doc bson.M
	err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, m.storageErr("findOne", err)
	}

	oid, oidErr := bson.ObjectIDFromHex(id)
	if oidErr != nil {
		return nil, nil
	}
	err = m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, m.storageErr("findOne", err)
	}
	return doc, nil
}

// FindOne is a plain single-document equality lookup; no identifier
// fallback. Returns (nil, nil) when nothing matches.
func (m *BaseModel) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, m.storageErr("findOne", err)
	}
	return doc, nil
}

// Create inserts data with fresh createdAt/updatedAt stamps and returns it
// together with the assigned "_id". The caller's map is not mutated.
func (m *BaseModel) Create(ctx context.Context, data bson.M) (bson.M, error) {
	doc := make(bson.M, len(data)+3)
	for k, v := range data {
		doc[k] = v
	}
	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, m.storageErr("insertOne", err)
	}
	doc["_id"] = res.InsertedID
	return doc, nil
}

// UpdateByID applies a $set patch through the same dual-identifier probe as
// FindByID. The "_id" field is stripped out of the patch first (store
// identifiers are immutable) and updatedAt is restamped. A zero MatchedCount
// means neither probe found the document.
func (m *BaseModel) UpdateByID(ctx context.Context, id string, data bson.M) (*mongo.UpdateResult, error) {
	set := make(bson.M, len(data)+1)
	for k, v := range data {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()
	patch := bson.M{"$set": set}

	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, patch)
	if err != nil {
		return nil, m.storageErr("updateOne", err)
	}
	if res.MatchedCount > 0 {
		return res, nil
	}

	oid, oidErr := bson.ObjectIDFromHex(id)
	if oidErr != nil {
		return res, nil
	}
	res, err = m.col.UpdateOne(ctx, bson.M{"_id": oid}, patch)
	if err != nil {
		return nil, m.storageErr("updateOne", err)
	}
	return res, nil
}

// DeleteByID removes a document through the dual-identifier probe. A zero
// DeletedCount means neither probe found it.
func (m *BaseModel) DeleteByID(ctx context.Context, id string) (*mongo.DeleteResult, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, m.storageErr("deleteOne", err)
	}
	if res.DeletedCount > 0 {
		return res, nil
	}

	oid, oidErr := bson.ObjectIDFromHex(id)
	if oidErr != nil {
		return res, nil
	}
	res, err = m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, m.storageErr("deleteOne", err)
	}
	return res, nil
}

func (m *BaseModel) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := m.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, m.storageErr("countDocuments", err)
	}
	return n, nil
}

func (m *BaseModel) storageErr(op string, err error) error {
	log.Printf("storage error on %s.%s: %v", m.name, op, err)
	return &StorageError{Collection: m.name, Op: op, Err: err}
}
