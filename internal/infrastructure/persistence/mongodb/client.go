// Package mongodb implements the storefront repositories on MongoDB.
// It is the default store; the GORM package in persistence covers postgres and sqlite.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names
const (
	ProductsCollection = "products"
	UsersCollection    = "users"
	OrdersCollection   = "orders"
)

// Client wraps the driver client and the storefront database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	host   string
}

// Connect dials MongoDB with the configured URI, pings the primary and logs
// the connected host. Callers treat an error as fatal.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, zapLogger *zap.Logger) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(logger.NewMongoCommandMonitor(zapLogger, cfg.SlowQueryThresh))
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	if cfg.MaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.MaxIdleConns))
	}
	if cfg.ConnMaxIdleTime > 0 {
		opts.SetMaxConnIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	host := cfg.MongoHost()
	zapLogger.Info("MongoDB connected",
		zap.String("host", host),
		zap.String("database", cfg.Name),
	)

	return &Client{
		client: client,
		db:     client.Database(cfg.Name),
		host:   host,
	}, nil
}

// Database returns the storefront database handle
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Host returns the host the client connected to
func (c *Client) Host() string {
	return c.host
}

// Ping checks that the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Purge deletes every order, product and user
func (c *Client) Purge(ctx context.Context) error {
	for _, name := range []string{OrdersCollection, ProductsCollection, UsersCollection} {
		if _, err := c.db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("failed to purge %s: %w", name, err)
		}
	}
	return nil
}

// EnsureIndexes creates the unique user and payment indexes and the order
// owner index. It is idempotent.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	return EnsureIndexes(ctx, c.db)
}

// EnsureIndexes creates the storefront indexes on db
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	orders := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_created")},
		{Keys: bson.D{{Key: "isPaid", Value: 1}}, Options: options.Index().SetName("is_paid")},
		{
			Keys:    bson.D{{Key: "paymentResult.id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_payment_id").
				SetPartialFilterExpression(bson.M{"paymentResult.id": bson.M{"$gt": ""}}),
		},
	}
	if _, err := db.Collection(OrdersCollection).Indexes().CreateMany(ctx, orders); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	products := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created")},
	}
	if _, err := db.Collection(ProductsCollection).Indexes().CreateMany(ctx, products); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}
