package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

const collectionName = "transactions"

// TransactionDocument представляет документ в коллекции MongoDB
type TransactionDocument struct {
	TxID        string    `bson:"txid"`
	BuyerID     int64     `bson:"user_id"`
	ProductName string    `bson:"product"`
	Currency    string    `bson:"currency"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d TransactionDocument) toDomain() repository.TransactionRecord {
	return repository.TransactionRecord{
		BuyerID:     d.BuyerID,
		ProductName: d.ProductName,
		TxID:        d.TxID,
		Currency:    d.Currency,
		Status:      repository.Status(d.Status),
	}
}

// Repository реализует TransactionRepository используя MongoDB
type Repository struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewRepository создаёт репозиторий и уникальный индекс на txid
func NewRepository(ctx context.Context, client *mongo.Client, dbName string) (*Repository, error) {
	col := client.Database(dbName).Collection(collectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "txid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create transaction indexes: %w", err)
	}

	return &Repository{
		client: client,
		col:    col,
	}, nil
}

// Upsert заменяет документ по txid; created_at выставляется только при вставке.
// Pipeline-update оставляет completed статус как есть.
func (r *Repository) Upsert(ctx context.Context, rec repository.TransactionRecord) error {
	if err := repository.ValidateRecord(rec); err != nil {
		return err
	}

	now := time.Now().UTC()
	// $literal: строки покупателя не должны читаться как пути полей
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "user_id", Value: rec.BuyerID},
			{Key: "product", Value: bson.D{{Key: "$literal", Value: rec.ProductName}}},
			{Key: "currency", Value: bson.D{{Key: "$literal", Value: rec.Currency}}},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", string(repository.StatusCompleted)}}},
				string(repository.StatusCompleted),
				bson.D{{Key: "$literal", Value: string(rec.Status)}},
			}}}},
			{Key: "updated_at", Value: now},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", now}}}},
		}}},
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"txid": rec.TxID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", rec.TxID, err)
	}
	return nil
}

// UpdateStatus меняет статус только у pending документа.
// Фильтр по статусу делает переход атомарным; MatchedCount == 0: (false, nil).
func (r *Repository) UpdateStatus(ctx context.Context, txid string, status repository.Status) (bool, error) {
	if !status.Valid() {
		return false, repository.ErrInvalidStatus
	}

	filter := bson.M{
		"txid":   txid,
		"status": string(repository.StatusPending),
	}
	update := bson.M{
		"$set": bson.M{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update transaction %s status: %w", txid, err)
	}
	return res.MatchedCount > 0, nil
}

// Get возвращает документ по txid или ErrNotFound
func (r *Repository) Get(ctx context.Context, txid string) (repository.TransactionRecord, error) {
	var doc TransactionDocument
	err := r.col.FindOne(ctx, bson.M{"txid": txid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.TransactionRecord{}, repository.ErrNotFound
		}
		return repository.TransactionRecord{}, err
	}
	return doc.toDomain(), nil
}

// ListByStatus возвращает документы со статусом в порядке создания
func (r *Repository) ListByStatus(ctx context.Context, status repository.Status) ([]repository.TransactionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "txid", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]repository.TransactionRecord, 0)
	for cur.Next(ctx) {
		var doc TransactionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// Ping для readiness
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
