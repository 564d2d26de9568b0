package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore implements Store on a MongoDB database. Batch commits run in a
// single multi-document transaction, so they are atomic across collections.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (m *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	var raw bson.M
	if err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return docFromRaw(raw), nil
}

func (m *MongoStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	q := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case "==":
			q[f.Field] = f.Value
		case "in":
			q[f.Field] = bson.M{"$in": f.Value}
		default:
			return nil, fmt.Errorf("query %s: unsupported op %q", collection, f.Op)
		}
	}
	cur, err := m.db.Collection(collection).Find(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, *docFromRaw(raw))
	}
	return out, cur.Err()
}

func (m *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, updateDoc(fields))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, bson.M(fields))
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprintf("%v", res.InsertedID), nil
	}
	return oid.Hex(), nil
}

func (m *MongoStore) Batch() Batch {
	return &mongoBatch{store: m}
}

type mongoOp struct {
	collection string
	id         string
	fields     map[string]any // nil means delete the document
}

type mongoBatch struct {
	store *MongoStore
	ops   []mongoOp
}

func (b *mongoBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, mongoOp{collection: collection, id: id, fields: fields})
}

func (b *mongoBatch) Delete(collection, id string) {
	b.ops = append(b.ops, mongoOp{collection: collection, id: id})
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	sess, err := b.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("batch session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range b.ops {
			oid, err := primitive.ObjectIDFromHex(op.id)
			if err != nil {
				return nil, fmt.Errorf("batch %s/%s: %w", op.collection, op.id, err)
			}
			col := b.store.db.Collection(op.collection)
			// a mutation targeting a missing document aborts the whole
			// transaction, matching the memory backend's all-or-nothing check
			if op.fields == nil {
				res, err := col.DeleteOne(sc, bson.M{"_id": oid})
				if err != nil {
					return nil, err
				}
				if res.DeletedCount == 0 {
					return nil, fmt.Errorf("batch %s/%s: %w", op.collection, op.id, ErrNotFound)
				}
				continue
			}
			res, err := col.UpdateOne(sc, bson.M{"_id": oid}, updateDoc(op.fields))
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("batch %s/%s: %w", op.collection, op.id, ErrNotFound)
			}
		}
		return nil, nil
	})
	return err
}

// updateDoc splits a field map into $set / $unset, translating the
// remove-field sentinel into $unset so deletion never persists a null.
func updateDoc(fields map[string]any) bson.M {
	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		if IsDeleteField(v) {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func docFromRaw(raw bson.M) *Document {
	id := ""
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	delete(raw, "_id")
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = normalize(v)
	}
	return &Document{ID: id, Fields: fields}
}

// normalize converts driver-specific decode types into the plain Go values
// the router layer works with (time.Time, map[string]any, []any).
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	}
	return v
}
