package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// Store groups the Mongo repositories and creates their indexes.
type Store struct {
	DB         *mongo.Database
	Users      *UserRepository
	Properties *PropertyRepository
	Visits     *VisitRepository
	Reviews    *ReviewRepository
	Sessions   *SessionStore
}

func NewStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{
		DB:         db,
		Users:      NewUserRepository(db),
		Properties: NewPropertyRepository(db),
		Visits:     NewVisitRepository(db),
		Reviews:    NewReviewRepository(db),
		Sessions:   NewSessionStore(db),
	}
	for _, idx := range []interface {
		ensureIndexes(ctx context.Context) error
	}{s.Users, s.Properties, s.Visits, s.Reviews, s.Sessions} {
		if err := idx.ensureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo: ensure indexes: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Factory() Factory {
	return Factory{
		DB:             s.DB,
		UsersRepo:      s.Users,
		PropertiesRepo: s.Properties,
		VisitsRepo:     s.Visits,
		ReviewsRepo:    s.Reviews,
	}
}

// Clear deletes every document in the entity collections.
func (s *Store) Clear(ctx context.Context) error {
	for _, col := range []*mongo.Collection{s.Users.col, s.Properties.col, s.Visits.col, s.Reviews.col, s.Sessions.col} {
		if _, err := col.DeleteMany(ctx, map[string]any{}); err != nil {
			return fmt.Errorf("mongo: clear %s: %w", col.Name(), err)
		}
	}
	return nil
}
