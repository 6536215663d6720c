package repository

import (
	"context"
	"errors"

	"github.com/Rohit1034/HrudaySparshi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const homepageDocID = "main"

type HomepageRepository interface {
	Get(ctx context.Context) (*models.HomepageContent, error)
	Save(ctx context.Context, content *models.HomepageContent) error
}

type MongoHomepageRepository struct {
	collection *mongo.Collection
}

func NewMongoHomepageRepository(db *mongo.Database) *MongoHomepageRepository {
	return &MongoHomepageRepository{collection: db.Collection("homepage")}
}

func (r *MongoHomepageRepository) Get(ctx context.Context) (*models.HomepageContent, error) {
	var content models.HomepageContent
	err := r.collection.FindOne(ctx, bson.M{"_id": homepageDocID}).Decode(&content)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Save merges content into the singleton document, creating it if needed.
func (r *MongoHomepageRepository) Save(ctx context.Context, content *models.HomepageContent) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": homepageDocID},
		bson.M{"$set": content},
		options.Update().SetUpsert(true),
	)
	return err
}
