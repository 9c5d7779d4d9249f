package message

import (
	"context"

	"chain_chat/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const metaDocID = "ledger"

type (
	MongoStore struct {
		messages *mongo.Collection
		indexes  *mongo.Collection
		meta     *mongo.Collection
	}

	messageDoc struct {
		ID            string `bson:"_id"`
		model.Message `bson:",inline"`
	}

	indexDoc struct {
		Account string   `bson:"_id"`
		IDs     []string `bson:"ids"`
	}
)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		messages: db.Collection("permanent_messages"),
		indexes:  db.Collection("permanent_indexes"),
		meta:     db.Collection("ledger_meta"),
	}
}

func (r *MongoStore) Get(ctx context.Context, id model.Hash) (*model.Message, error) {
	filter := bson.M{
		"_id": id.Hex(),
	}

	var doc messageDoc
	err := r.messages.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	msg := doc.Message
	return &msg, nil
}

func (r *MongoStore) Put(ctx context.Context, id model.Hash, msg *model.Message) error {
	_, err := r.messages.InsertOne(ctx, &messageDoc{ID: id.Hex(), Message: *msg})
	return err
}

func (r *MongoStore) AppendIndex(ctx context.Context, account model.Account, id model.Hash) error {
	filter := bson.M{
		"_id": account.Hex(),
	}
	update := bson.M{
		"$push": bson.M{"ids": id.Hex()},
	}

	_, err := r.indexes.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoStore) Index(ctx context.Context, account model.Account) ([]model.Hash, error) {
	filter := bson.M{
		"_id": account.Hex(),
	}

	var doc indexDoc
	err := r.indexes.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]model.Hash, 0, len(doc.IDs))
	for _, s := range doc.IDs {
		id, err := model.ParseHash(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *MongoStore) LoadMeta(ctx context.Context) (*Meta, error) {
	filter := bson.M{
		"_id": metaDocID,
	}

	var meta Meta
	err := r.meta.FindOne(ctx, filter).Decode(&meta)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *MongoStore) SaveMeta(ctx context.Context, meta *Meta) error {
	filter := bson.M{
		"_id": metaDocID,
	}
	update := bson.M{
		"$set": meta,
	}

	_, err := r.meta.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
