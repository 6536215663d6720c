package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpsertProfile(ctx context.Context, user *models.User) error
}

// MongoUserRepository stores profiles keyed by the identity provider's user id.
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertProfile writes the editable profile fields. The role is only set
// when the document is first created.
func (r *MongoUserRepository) UpsertProfile(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"fullName":    user.FullName,
			"email":       user.Email,
			"phoneNumber": user.PhoneNumber,
			"address":     user.Address,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"role":      models.RoleCustomer,
			"createdAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true))
	return err
}
