package store

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/movie"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// mongoDoc is the stored document. The movie payload is kept as raw
// JSON rather than BSON so the document round-trips byte-identically
// with the upstream service's format.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	TreeCount int       `bson:"tree_count"`
	CreatedAt time.Time `bson:"created_at"`
	Movie     []byte    `bson:"movie"`
}

// MongoStore persists movies in a MongoDB collection, keyed by content
// hash.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "phylomovie"
	}
	if cfg.Collection == "" {
		cfg.Collection = "movies"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "pinging mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*movie.Data, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeMovieNotFound, "movie %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "loading movie %s", id)
	}

	var data movie.Data
	if err := json.Unmarshal(doc.Movie, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parsing stored movie %s", id)
	}
	if err := data.Init(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *MongoStore) Put(ctx context.Context, data *movie.Data) (string, error) {
	if err := data.Validate(); err != nil {
		return "", err
	}
	id, err := data.Hash()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "encoding movie %s", id)
	}

	doc := mongoDoc{
		ID:        id,
		Name:      data.Name(),
		TreeCount: data.TreeCount(),
		CreatedAt: time.Now().UTC(),
		Movie:     raw,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "storing movie %s", id)
	}
	return id, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "deleting movie %s", id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"movie": 0}).
		SetSort(bson.M{"created_at": -1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "listing movies")
	}
	defer cursor.Close(ctx)

	var infos []Info
	for cursor.Next(ctx) {
		var doc mongoDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decoding movie listing")
		}
		infos = append(infos, Info{
			ID:        doc.ID,
			Name:      doc.Name,
			TreeCount: doc.TreeCount,
			CreatedAt: doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterating movie listing")
	}
	return infos, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
