package repository

import (
	"context"
	"log"
	"time"

	"github.com/ragforge/pdfrag/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IngestRepo interface {
	SaveIngest(ctx context.Context, record *types.IngestRecord) error
	ListIngests(ctx context.Context, collectionName string, limit int) ([]*types.IngestRecord, error)
}

type ingestRepo struct {
	collection *mongo.Collection
}

func NewIngestRepo(db *mongo.Database) IngestRepo {
	// check if collection does not exist, create one
	collectionNames, err := db.ListCollectionNames(context.Background(), bson.D{})
	if err != nil {
		panic(err)
	}
	collectionExists := false
	for _, name := range collectionNames {
		if name == "ingests" {
			collectionExists = true
			break
		}
	}
	collection := db.Collection("ingests")
	if !collectionExists {
		indexes := []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "collection_name", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "created_at", Value: -1},
				},
			},
		}

		_, err = collection.Indexes().CreateMany(context.Background(), indexes)
		if err != nil {
			log.Printf("Error creating indexes: %v", err)
			return nil
		}
	}

	return &ingestRepo{
		collection: collection,
	}
}

func (r *ingestRepo) SaveIngest(ctx context.Context, record *types.IngestRecord) error {
	if record.ID == "" {
		record.ID = bson.NewObjectID().Hex()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *ingestRepo) ListIngests(ctx context.Context, collectionName string, limit int) ([]*types.IngestRecord, error) {
	filter := make(map[string]interface{})
	if collectionName != "" {
		filter["collection_name"] = collectionName
	}
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*types.IngestRecord
	for cursor.Next(ctx) {
		var record types.IngestRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
