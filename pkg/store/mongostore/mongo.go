// Package mongostore implements scene persistence on MongoDB.
//
// Scenes are stored as JSON blobs in one collection, keyed by scene ID.
// Storing the canonical JSON rather than a BSON mapping keeps the wire
// representation identical to the scene file format.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harmonyhq/linework/pkg/sketch"
	"github.com/harmonyhq/linework/pkg/store"
)

const collectionName = "scenes"

// Store is a MongoDB-backed scene store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// sceneDoc is the stored document shape.
type sceneDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name,omitempty"`
	Layers    int       `bson:"layers"`
	Polylines int       `bson:"polylines"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// New connects to MongoDB at uri and returns a store over the given
// database. The connection is verified with a ping before returning.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// GetScene returns the scene with the given ID, or store.ErrNotFound.
func (s *Store) GetScene(ctx context.Context, id string) (*sketch.Scene, error) {
	var doc sceneDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find scene %s: %w", id, err)
	}
	var scene sketch.Scene
	if err := json.Unmarshal(doc.Data, &scene); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", id, err)
	}
	return &scene, nil
}

// PutScene creates or replaces the scene keyed by its ID.
func (s *Store) PutScene(ctx context.Context, scene *sketch.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("encode scene %s: %w", scene.ID, err)
	}
	doc := sceneDoc{
		ID:        scene.ID,
		Name:      scene.Name,
		Layers:    len(scene.Layers),
		Polylines: len(scene.Polylines),
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": scene.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put scene %s: %w", scene.ID, err)
	}
	return nil
}

// DeleteScene removes the scene, or returns store.ErrNotFound.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete scene %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListScenes returns scene summaries sorted by ID.
func (s *Store) ListScenes(ctx context.Context) ([]store.SceneInfo, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "layers": 1, "polylines": 1}).
		SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer cur.Close(ctx)

	var out []store.SceneInfo
	for cur.Next(ctx) {
		var doc sceneDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode scene row: %w", err)
		}
		out = append(out, store.SceneInfo{
			ID:        doc.ID,
			Name:      doc.Name,
			Layers:    doc.Layers,
			Polylines: doc.Polylines,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return out, nil
}

// Close disconnects the MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
