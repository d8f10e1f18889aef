// Package mongostore implements the document stores on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"rightswatch/core/store"
)

const (
	CasesCollection         = "cases"
	StatusHistoryCollection = "case_status_history"
	ReportsCollection       = "incident_reports"
	IndividualsCollection   = "individuals"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique external-key indexes and the ledger lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{CasesCollection, mongo.IndexModel{Keys: bson.D{{Key: "case_id", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{CasesCollection, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
		{ReportsCollection, mongo.IndexModel{Keys: bson.D{{Key: "report_id", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{ReportsCollection, mongo.IndexModel{Keys: bson.D{{Key: "incident_details.location.country", Value: 1}}}},
		{StatusHistoryCollection, mongo.IndexModel{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	for _, m := range models {
		if _, err := db.Collection(m.collection).Indexes().CreateOne(ctx, m.model); err != nil {
			return fmt.Errorf("create index on %s: %w", m.collection, err)
		}
	}
	return nil
}

func mapWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func mapFindError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
