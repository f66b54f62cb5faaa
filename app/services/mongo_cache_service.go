package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/job-geocoder/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const locationsCollection = "locations"

// MongoLocationStore lưu cache tọa độ trong MongoDB, mỗi bộ (city, state, country) một document
type MongoLocationStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoLocationStore tạo mới MongoLocationStore và tạo indexes
func NewMongoLocationStore(db *mongo.Database, logger *zap.Logger) *MongoLocationStore {
	collection := db.Collection(locationsCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "created_at", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho locations", zap.Error(err))
	}

	return &MongoLocationStore{
		collection: collection,
		logger:     logger,
	}
}

// Find tìm document theo fingerprint của (city, state, country) literal
func (s *MongoLocationStore) Find(ctx context.Context, q models.LocationQuery) (*models.LocationCache, error) {
	var entry models.LocationCache
	err := s.collection.FindOne(ctx, bson.M{"fingerprint": q.Fingerprint()}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lỗi query MongoDB locations: %w", err)
	}
	return &entry, nil
}

// Insert thêm document; duplicate key được coi là thành công
func (s *MongoLocationStore) Insert(ctx context.Context, entry *models.LocationCache) error {
	doc := *entry
	if doc.Fingerprint == "" {
		doc.Fingerprint = doc.Query().Fingerprint()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := s.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		s.logger.Debug("Location đã có trong MongoDB", zap.String("fingerprint", doc.Fingerprint))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lỗi insert MongoDB locations: %w", err)
	}
	return nil
}

// Count đếm số document
func (s *MongoLocationStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("lỗi đếm documents trong MongoDB locations: %w", err)
	}
	return count, nil
}

// Recent lấy các document mới nhất
func (s *MongoLocationStore) Recent(ctx context.Context, limit int) ([]models.LocationCache, error) {
	if limit <= 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("lỗi query MongoDB locations: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LocationCache
	for cursor.Next(ctx) {
		var entry models.LocationCache
		if err := cursor.Decode(&entry); err != nil {
			s.logger.Warn("Lỗi decode location document", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, cursor.Err()
}
