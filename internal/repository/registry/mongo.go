package registry

import (
	"context"

	"chain_chat/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type (
	MongoStore struct {
		collection *mongo.Collection
	}

	keyRecord struct {
		Account   string `bson:"_id"`
		PublicKey string `bson:"public_key"`
	}
)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("registry"),
	}
}

func (r *MongoStore) Get(ctx context.Context, account model.Account) (model.PublicKey, error) {
	filter := bson.M{
		"_id": account.Hex(),
	}

	var rec keyRecord
	err := r.collection.FindOne(ctx, filter).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return model.PublicKey{}, nil
	}
	if err != nil {
		return model.PublicKey{}, err
	}

	return model.ParsePublicKey(rec.PublicKey)
}

func (r *MongoStore) Put(ctx context.Context, account model.Account, key model.PublicKey) error {
	filter := bson.M{
		"_id": account.Hex(),
	}
	// Stored in canonical form; ParsePublicKey re-pads on read.
	update := bson.M{
		"$set": bson.M{"public_key": key.Canonical()},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
