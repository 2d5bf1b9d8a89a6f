package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aora/schemas"
	"aora/storage"
)

type UsersStorage struct {
	accountsCollection *mongo.Collection
}

func NewStorage(ctx context.Context, db *mongo.Database) *UsersStorage {
	accountsCollection := db.Collection("accounts")
	err := ensureIndexes(ctx, accountsCollection)
	if err != nil {
		panic(fmt.Sprintf("failed ensure index: %s", err))
	}

	return &UsersStorage{accountsCollection: accountsCollection}
}

func ensureIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	return nil
}

func (s *UsersStorage) PutAccount(ctx context.Context, record *storage.AccountRecord) error {
	stored := *record
	stored.Email = strings.ToLower(stored.Email)
	_, err := s.accountsCollection.InsertOne(ctx, &stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email %s", storage.ErrCollision, stored.Email)
		}
		return fmt.Errorf("%w: account insertion failed: %s", storage.StorageError, err.Error())
	}
	return nil
}

func (s *UsersStorage) GetAccount(ctx context.Context, id schemas.UserId) (*storage.AccountRecord, error) {
	return s.findOne(ctx, bson.M{"_id": string(id)})
}

func (s *UsersStorage) GetAccountByEmail(ctx context.Context, email string) (*storage.AccountRecord, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *UsersStorage) findOne(ctx context.Context, mongoQuery bson.M) (*storage.AccountRecord, error) {
	var record storage.AccountRecord
	err := s.accountsCollection.FindOne(ctx, mongoQuery).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: account", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: account lookup failed: %s", storage.StorageError, err.Error())
	}
	return &record, nil
}
