package mongostorage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

type mongoDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Fields    bson.M             `bson:"fields"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *mongoDocument) toDocument(collection string) *schemas.Document {
	fields := make(schemas.Fields, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return &schemas.Document{
		ID:         d.ID.Hex(),
		Collection: collection,
		Fields:     fields,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type DocumentStorage struct {
	db *mongo.Database
}

func Connect(ctx context.Context, mongoURL, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo failed: %w", err)
	}
	return client.Database(dbName), nil
}

// NewStorage ensures an index on every given field of every given collection.
func NewStorage(ctx context.Context, db *mongo.Database, indexedFields map[string][]string) *DocumentStorage {
	for collection, fields := range indexedFields {
		ensureIndexes(ctx, db.Collection(collection), fields)
	}
	return &DocumentStorage{db: db}
}

func ensureIndexes(ctx context.Context, collection *mongo.Collection, fields []string) {
	for _, field := range fields {
		indexModel := mongo.IndexModel{
			Keys: bson.D{{Key: "fields." + field, Value: 1}, {Key: "_id", Value: -1}},
		}
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			panic(fmt.Errorf("failed to ensure indexes %w", err))
		}
	}
}

func parseID(collection, id string) (primitive.ObjectID, error) {
	oid, err := schemas.PostId(id).ObjectID()
	if err != nil {
		// an id the store could never have assigned is simply absent
		return primitive.NilObjectID, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	return oid, nil
}

func (s *DocumentStorage) CreateDocument(ctx context.Context, collection string, fields schemas.Fields) (*schemas.Document, error) {
	newDoc := &mongoDocument{
		ID:        primitive.NewObjectID(),
		Fields:    bson.M(fields.Copy()),
		CreatedAt: s.Now(),
		UpdatedAt: s.Now(),
	}

	_, err := s.db.Collection(collection).InsertOne(ctx, newDoc)
	if err != nil {
		return nil, fmt.Errorf("%w: insertion failed: %s", storage.StorageError, err.Error())
	}
	return newDoc.toDocument(collection), nil
}

func (s *DocumentStorage) GetDocument(ctx context.Context, collection, id string) (*schemas.Document, error) {
	oid, err := parseID(collection, id)
	if err != nil {
		return nil, err
	}

	var doc mongoDocument
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("%w: failed to extract, cause %s", storage.StorageError, err.Error())
	}
	return doc.toDocument(collection), nil
}

func (s *DocumentStorage) UpdateDocument(ctx context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error) {
	oid, err := parseID(collection, id)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updatedAt", Value: s.Now()}}
	for k, v := range fields {
		set = append(set, bson.E{Key: "fields." + k, Value: v})
	}
	mongoCommand := bson.D{{Key: "$set", Value: set}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := s.db.Collection(collection).FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, mongoCommand, opts)

	var edited mongoDocument
	err = result.Decode(&edited)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("%w: mongo error:%s", storage.StorageError, err.Error())
	}
	return edited.toDocument(collection), nil
}

func (s *DocumentStorage) DeleteDocument(ctx context.Context, collection, id string) error {
	oid, err := parseID(collection, id)
	if err != nil {
		return err
	}

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: deletion failed: %s", storage.StorageError, err.Error())
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	return nil
}

func (s *DocumentStorage) ListDocuments(ctx context.Context, collection string, query plain.ListQuery) ([]*schemas.Document, string, error) {
	query, size, err := plain.CorrectDestruct(query)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", storage.ErrInvalidArgument, err.Error())
	}

	mongoFilter, err := buildFilter(query)
	if err != nil {
		return nil, "", err
	}
	// one extra document tells whether there is a next page
	filterOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(size + 1))

	cursor, err := s.db.Collection(collection).Find(ctx, mongoFilter, filterOptions)
	if err != nil {
		return nil, "", fmt.Errorf("%w: search failed: %s", storage.StorageError, err.Error())
	}
	var docList []*mongoDocument
	if err = cursor.All(ctx, &docList); err != nil {
		return nil, "", fmt.Errorf("%w: documents mapping failed: %s", storage.StorageError, err.Error())
	}

	nextCursor := ""
	if len(docList) > size {
		docList = docList[:size]
		nextCursor = docList[size-1].ID.Hex()
	}

	result := make([]*schemas.Document, 0, len(docList))
	for _, doc := range docList {
		result = append(result, doc.toDocument(collection))
	}
	return result, nextCursor, nil
}

func buildFilter(query plain.ListQuery) (bson.M, error) {
	mongoFilter := bson.M{}
	for field, value := range query.Equal {
		mongoFilter["fields."+field] = value
	}
	if query.SearchTerm != "" {
		mongoFilter["fields."+query.SearchField] = primitive.Regex{
			Pattern: regexp.QuoteMeta(query.SearchTerm),
			Options: "i",
		}
	}
	if query.LastSeenID != "" {
		lastSeen, err := primitive.ObjectIDFromHex(query.LastSeenID)
		if err != nil {
			return nil, fmt.Errorf("%w: incorrect page token: %s", storage.ErrInvalidArgument, query.LastSeenID)
		}
		mongoFilter["_id"] = bson.M{"$lt": lastSeen}
	}
	return mongoFilter, nil
}

func (s *DocumentStorage) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
