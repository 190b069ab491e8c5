package access

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/signalmaster/internal/config"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GrantDocument is one participant/room/token grant as the front-end stores it.
type GrantDocument struct {
	Participant string    `bson:"participant"`
	Room        string    `bson:"room"`
	Token       string    `bson:"token"`
	GrantedAt   time.Time `bson:"granted_at,omitempty"`
}

type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("module", "access.mongo").Str("db", cfg.Database).Str("collection", cfg.Collection).Msg("connected")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room", Value: 1}, {Key: "participant", Value: 1}, {Key: "token", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create grant index: %w", err)
	}
	return nil
}

func (s *MongoStore) HasAccess(ctx context.Context, claim domain.Claim) (bool, error) {
	filter := bson.D{
		{Key: "participant", Value: claim.Participant},
		{Key: "room", Value: claim.Room},
		{Key: "token", Value: claim.Token},
	}
	n, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count grants: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
