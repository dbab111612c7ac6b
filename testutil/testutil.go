// Package testutil provides an in-memory stand-in for the Mongo collection
// handle plus small HTTP helpers, so handler and service tests run without a
// database.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/interiora/interiorabackend/models"
)

// FakeDB hands out named FakeCollections; its Open method satisfies
// models.Opener.
type FakeDB struct {
	mu          sync.Mutex
	collections map[string]*FakeCollection
}

func NewFakeDB() *FakeDB {
	return &FakeDB{collections: make(map[string]*FakeCollection)}
}

func (db *FakeDB) Open(name string) models.Collection {
	return db.Collection(name)
}

// Collection returns the named fake, creating it on first use. Use it to
// seed fixtures or inject faults.
func (db *FakeDB) Collection(name string) *FakeCollection {
	db.mu.Lock()
	defer db.mu.Unlock()
	col, ok := db.collections[name]
	if !ok {
		col = &FakeCollection{}
		db.collections[name] = col
	}
	return col
}

// Seed inserts fixture documents, assigning an ObjectID to any document
// without one.
func (db *FakeDB) Seed(name string, docs ...bson.M) {
	col := db.Collection(name)
	col.mu.Lock()
	defer col.mu.Unlock()
	for _, d := range docs {
		col.docs = append(col.docs, withID(d))
	}
}

// FakeCollection implements models.Collection over a slice of documents
// with equality-only filter matching. Setting Err makes every operation
// fail with it, simulating a store fault.
type FakeCollection struct {
	mu   sync.Mutex
	docs []bson.M
	Err  error
}

func (c *FakeCollection) All() []bson.M {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bson.M, len(c.docs))
	copy(out, c.docs)
	return out
}

func (c *FakeCollection) Find(_ context.Context, filter interface{}, _ ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	matched := make([]interface{}, 0)
	for _, d := range c.docs {
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	return mongo.NewCursorFromDocuments(matched, nil, nil)
}

func (c *FakeCollection) FindOne(_ context.Context, filter interface{}, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		// A nil document would turn the injected error into ErrNoDocuments,
		// so pass a placeholder alongside it.
		return mongo.NewSingleResultFromDocument(bson.M{}, c.Err, nil)
	}
	for _, d := range c.docs {
		if matches(d, filter) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
}

func (c *FakeCollection) InsertOne(_ context.Context, document interface{}, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	doc, ok := document.(bson.M)
	if !ok {
		raw, err := bson.Marshal(document)
		if err != nil {
			return nil, err
		}
		doc = bson.M{}
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	}
	stored := withID(doc)
	c.docs = append(c.docs, stored)
	return &mongo.InsertOneResult{InsertedID: stored["_id"]}, nil
}

func (c *FakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, _ ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	res := &mongo.UpdateResult{}
	for _, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		res.MatchedCount = 1
		if u, ok := update.(bson.M); ok {
			if set, ok := u["$set"].(bson.M); ok {
				for k, v := range set {
					d[k] = v
				}
				res.ModifiedCount = 1
			}
		}
		break
	}
	return res, nil
}

func (c *FakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	for i, d := range c.docs {
		if matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

func (c *FakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...options.Lister[options.CountOptions]) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func withID(doc bson.M) bson.M {
	stored := make(bson.M, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = bson.NewObjectID()
	}
	return stored
}

func matches(doc bson.M, filter interface{}) bool {
	f, ok := filter.(bson.M)
	if !ok {
		return false
	}
	for k, want := range f {
		got, present := doc[k]
		if !present {
			return false
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(got, want interface{}) bool {
	if g, ok := got.(bson.ObjectID); ok {
		w, ok := want.(bson.ObjectID)
		return ok && g == w
	}
	return reflect.DeepEqual(got, want)
}

// PerformRequest runs one JSON request through the router and returns the
// recorder.
func PerformRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals a response body into a map.
func DecodeJSON(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}
