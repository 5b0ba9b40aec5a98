// Package database owns the process-wide MongoDB client.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	Vehicles      = "vehicles"
	Users         = "users"
	Ratings       = "ratings"
	Notifications = "notifications"
	Categories    = "categories"
	Favorites     = "favorites"
)

var ErrNotInitialized = errors.New("database client is not initialized")

var (
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
)

// Init connects once and returns the shared database handle. Later calls
// return the existing handle.
func Init(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetAppName("vehiclestore-backend")

	logrus.Info("Connecting to MongoDB...")
	c, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	client = c
	db = c.Database(cfg.DBName)
	logrus.WithField("db", cfg.DBName).Info("Connected to MongoDB")
	return db, nil
}

// Database returns the handle created by Init.
func Database() (*mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()
	if db == nil {
		return nil, ErrNotInitialized
	}
	return db, nil
}

func Ping(ctx context.Context) error {
	mu.Lock()
	c := client
	mu.Unlock()
	if c == nil {
		return ErrNotInitialized
	}
	return c.Ping(ctx, readpref.Primary())
}

// Shutdown disconnects the client. It is safe to call more than once.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client, db = nil, nil
	if err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	logrus.Info("MongoDB connection closed")
	return nil
}
