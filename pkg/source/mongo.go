package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
)

// MongoConfig configures a [MongoSource].
type MongoConfig struct {
	URI        string `toml:"uri" validate:"required"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Defaults for [MongoConfig].
const (
	DefaultMongoDatabase   = "termtree"
	DefaultMongoCollection = "terms"
	mongoConnectTimeout    = 10 * time.Second
)

// storedTerm is one document of the term collection. Anchors are the labels
// of current terms the stored term was looked up for; Fetch matches on them.
type storedTerm struct {
	term.Term `bson:",inline"`
	Source    string    `bson:"source"`
	Anchors   []string  `bson:"anchors"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoSource reads dependency and derived terms from a MongoDB collection.
type MongoSource struct {
	cfg    MongoConfig
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects, pings and ensures the lookup indexes exist.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping mongo")
	}

	s := &MongoSource{cfg: cfg, client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoSource) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source", Value: 1}, {Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "anchors", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Name returns "mongo".
func (s *MongoSource) Name() string { return "mongo" }

// Key identifies the collection by connection string, database and name.
func (s *MongoSource) Key() string {
	return identity("mongo", s.cfg.URI, s.cfg.Database, s.cfg.Collection)
}

// Fetch returns every stored term anchored at one of labels, or every stored
// term when labels is empty. Results are ordered by source, then id.
func (s *MongoSource) Fetch(ctx context.Context, labels []string) (Snapshot, error) {
	filter := bson.M{"source": bson.M{"$in": []string{term.SourceDependencies, term.SourceDerived}}}
	if len(labels) > 0 {
		filter["anchors"] = bson.M{"$in": labels}
	}
	opts := options.Find().SetSort(bson.D{{Key: "source", Value: 1}, {Key: "id", Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "find terms")
	}
	var docs []storedTerm
	if err := cur.All(ctx, &docs); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "read terms")
	}

	var out Snapshot
	for _, d := range docs {
		switch d.Source {
		case term.SourceDependencies:
			out.Dependencies = append(out.Dependencies, d.Term)
		case term.SourceDerived:
			out.Derived = append(out.Derived, d.Term)
		}
	}
	return out, nil
}

// Put upserts terms under source, adding anchors to any anchors they already
// have. source must be dependencies or derived.
func (s *MongoSource) Put(ctx context.Context, source string, anchors []string, terms []term.Term) error {
	if source != term.SourceDependencies && source != term.SourceDerived {
		return errors.New(errors.ErrCodeInvalidInput, "cannot store terms with source %q", source)
	}
	if len(terms) == 0 {
		return nil
	}
	if anchors == nil {
		anchors = []string{}
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(terms))
	for _, t := range terms {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"source": source, "id": t.ID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"label":           t.Label,
					"curation_status": t.CurationStatus,
					"origin":          t.Origin,
					"parents":         t.Parents,
					"relations":       t.Relations,
					"updated_at":      now,
				},
				"$addToSet": bson.M{"anchors": bson.M{"$each": anchors}},
			}).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "store terms")
	}
	return nil
}

// PutSnapshot stores both lists of snap under anchors.
func (s *MongoSource) PutSnapshot(ctx context.Context, anchors []string, snap Snapshot) error {
	if err := s.Put(ctx, term.SourceDependencies, anchors, snap.Dependencies); err != nil {
		return err
	}
	return s.Put(ctx, term.SourceDerived, anchors, snap.Derived)
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
