package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carelink/carelink-api/internal/repository"
)

// Collection names.
const (
	usersCollection    = "users"
	patientsCollection = "patients"
	doctorsCollection  = "doctors"
	mappingsCollection = "mappings"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DB wraps a mongo database handle shared by the repositories.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewDB(cfg Config) (*DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

// EnsureIndexes creates the unique indexes the services rely on: the
// compound (patient, doctor) index backs duplicate-assignment prevention
// under concurrent creates, and the email index backs registration.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(mappingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "patient", Value: 1}, {Key: "doctor", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapping index: %w", err)
	}

	_, err = d.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	return nil
}

// Ping verifies store connectivity, used by the readiness probe.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// translateError maps driver errors to the repository sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
