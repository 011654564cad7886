// Package mongostore implements the store on MongoDB, one collection per
// record type.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"yarn-backend/internal/store"
)

const opTimeout = 10 * time.Second

const (
	colCategories = "yarnCategories"
	colParties    = "parties"
	colInEntries  = "inEntries"
	colExEntries  = "exEntries"
	colRoles      = "roles"
	colUsers      = "users"
	colAuditLogs  = "auditLogs"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, checks the connection and ensures indexes.
func Open(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("mongo connected", zap.String("database", dbName))
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		colCategories: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		colRoles:      {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "roleId", Value: 1}}},
		},
		colInEntries: {
			{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "lotNo", Value: 1}}},
			{Keys: bson.D{{Key: "partyId", Value: 1}}},
		},
		colExEntries: {{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "lotNo", Value: 1}}}},
		colAuditLogs: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func insert(ctx context.Context, c *mongo.Collection, doc any, what string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := c.InsertOne(ctx, doc)
	return translate(err, what)
}

func replace(ctx context.Context, c *mongo.Collection, id string, doc any, what string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err, what)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func findOne(ctx context.Context, c *mongo.Collection, filter bson.M, out any, what string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return translate(c.FindOne(ctx, filter).Decode(out), what)
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts *options.FindOptions, what string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, what)
	}
	res := make([]T, 0)
	if err := cur.All(ctx, &res); err != nil {
		return nil, translate(err, what)
	}
	return res, nil
}

func deleteOne(ctx context.Context, c *mongo.Collection, id string, what string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, what)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func exists(ctx context.Context, c *mongo.Collection, filter bson.M, what string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	n, err := c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, what)
	}
	return n > 0, nil
}

func entryFilter(f store.EntryFilter) bson.M {
	filter := bson.M{}
	if f.CategoryID != "" {
		filter["categoryId"] = f.CategoryID
	}
	if f.LotNo != "" {
		filter["lotNo"] = f.LotNo
	}
	date := bson.M{}
	if !f.From.IsZero() {
		date["$gte"] = f.From
	}
	if !f.To.IsZero() {
		date["$lt"] = f.To
	}
	if len(date) > 0 {
		filter["entryDate"] = date
	}
	return filter
}

var byEntryDate = options.Find().SetSort(bson.D{{Key: "entryDate", Value: 1}, {Key: "createdAt", Value: 1}})

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
