package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentable/internal/domain/identity"
	"rentable/internal/domain/shared/money"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ByID(ctx context.Context, id identity.UserID) (*identity.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

func (r *UserRepository) Save(ctx context.Context, user *identity.User) error {
	doc := userDocument{
		ID:      string(user.ID),
		Name:    user.Name,
		Email:   user.Email,
		Balance: user.Balance,
		Version: user.Version + 1,
	}
	filter := bson.M{"_id": doc.ID, "version": user.Version}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	user.Version = doc.Version
	return nil
}

type userDocument struct {
	ID      string      `bson:"_id"`
	Name    string      `bson:"name"`
	Email   string      `bson:"email"`
	Balance money.Money `bson:"balance"`
	Version int64       `bson:"version"`
}

func (d userDocument) toUser() *identity.User {
	return &identity.User{
		ID:      identity.UserID(d.ID),
		Name:    d.Name,
		Email:   d.Email,
		Balance: d.Balance,
		Version: d.Version,
	}
}
