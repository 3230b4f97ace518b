// Package store implements the document-store contract over MongoDB: one
// interaction-log document per customer (append-to-array upserts) and one
// conversation-summary document per customer (set-field upserts), both keyed
// by the customer's ObjectId.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

const (
	customersCollection    = "customers"
	interactionsCollection = "interactions"
	summariesCollection    = "convosummary"
)

type Config struct {
	URI            string        `envconfig:"URI" split_words:"true" required:"true"`
	Database       string        `envconfig:"DATABASE" split_words:"true" default:"crm_db"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" split_words:"true" default:"10s"`
}

// Mongo holds the connected client and collection handles. It is constructed
// with Connect and must be released with Close; it is injected into the
// workflows rather than captured from process-wide state.
type Mongo struct {
	client       *mongo.Client
	customers    *mongo.Collection
	interactions *mongo.Collection
	summaries    *mongo.Collection
}

var _ contractx.Store = (*Mongo)(nil)

func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("mongodb uri is required")
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageErr("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageErr("ping", err)
	}

	database := strings.TrimSpace(cfg.Database)
	if database == "" {
		database = "crm_db"
	}
	db := client.Database(database)

	return &Mongo{
		client:       client,
		customers:    db.Collection(customersCollection),
		interactions: db.Collection(interactionsCollection),
		summaries:    db.Collection(summariesCollection),
	}, nil
}

func MustConnect(ctx context.Context, cfg Config) *Mongo {
	m, err := Connect(ctx, cfg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Exists(ctx context.Context, customerID string) (bool, error) {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return false, err
	}

	n, err := m.customers.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, storageErr("count customers", err)
	}
	return n > 0, nil
}

type interactionDocument struct {
	ID           primitive.ObjectID            `bson:"_id"`
	Interactions []contractx.InteractionRecord `bson:"interactions"`
}

func (m *Mongo) Log(ctx context.Context, customerID string) ([]contractx.InteractionRecord, error) {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return nil, err
	}

	var doc interactionDocument
	err = m.interactions.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []contractx.InteractionRecord{}, nil
	}
	if err != nil {
		return nil, storageErr("read interaction log", err)
	}
	return doc.Interactions, nil
}

func (m *Mongo) Count(ctx context.Context, customerID string) (int, error) {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return 0, err
	}

	var doc interactionDocument
	err = m.interactions.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"interactions": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("count interactions", err)
	}
	return len(doc.Interactions), nil
}

func (m *Mongo) Append(ctx context.Context, customerID string, rec contractx.InteractionRecord) error {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return err
	}

	_, err = m.interactions.UpdateByID(ctx, oid,
		bson.M{"$push": bson.M{"interactions": rec}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storageErr("append interaction", err)
	}
	return nil
}

type summaryDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Summary     string             `bson:"summary"`
	LastUpdated time.Time          `bson:"last_updated"`
}

func (m *Mongo) ReadSummary(ctx context.Context, customerID string) (contractx.ConversationSummary, error) {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return contractx.ConversationSummary{}, err
	}

	var doc summaryDocument
	err = m.summaries.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return contractx.ConversationSummary{}, fmt.Errorf("%w: customer id=%s", contractx.ErrSummaryNotFound, customerID)
	}
	if err != nil {
		return contractx.ConversationSummary{}, storageErr("read summary", err)
	}

	return contractx.ConversationSummary{
		CustomerID:  customerID,
		Summary:     doc.Summary,
		LastUpdated: doc.LastUpdated,
	}, nil
}

func (m *Mongo) WriteSummary(ctx context.Context, customerID string, summary string, at time.Time) error {
	oid, err := objectIDFromCustomerID(customerID)
	if err != nil {
		return err
	}

	_, err = m.summaries.UpdateByID(ctx, oid,
		bson.M{"$set": bson.M{
			"summary":      summary,
			"last_updated": at.UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storageErr("write summary", err)
	}
	return nil
}

func objectIDFromCustomerID(customerID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(customerID))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", contractx.ErrInvalidIdentifier, customerID)
	}
	return oid, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contractx.ErrStorageUnavailable, op, err)
}
