package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Уникальный составной индекс (book_id, user_id) запрещает повторный отзыв
// одного пользователя на ту же книгу - проверка атомарна на уровне хранилища,
// поэтому гонка двух параллельных создании не даст дубликат
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "book_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetName("book_user_unique_idx").SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "book_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("book_created_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create review indexes")
	}

	return &reviewRepository{
		collection: collection,
	}
}

// Create создает новый отзыв
// Возвращает ErrDuplicateReview, если пара (book_id, user_id) уже существует
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "reviews")
	result, err := r.collection.InsertOne(ctx, review)
	timer.ObserveDuration()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetByBookID получает все отзывы книги, самые свежие первыми
// Использует индекс book_created_idx
func (r *reviewRepository) GetByBookID(ctx context.Context, bookID string) ([]entity.Review, error) {
	filter := bson.M{"book_id": bookID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "reviews")
	cursor, err := r.collection.Find(ctx, filter, opts)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// Update обновляет оценку и комментарий отзыва
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	filter := bson.M{"_id": review.ID}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	result, err := r.collection.UpdateOne(ctx, filter, update)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "reviews")
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// AverageRatingByBook считает среднюю оценку и количество отзывов книги
// одним aggregation pipeline. Нет отзывов - (0, 0)
func (r *reviewRepository) AverageRatingByBook(ctx context.Context, bookID string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"book_id": bookID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$book_id",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "reviews")
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].Avg, results[0].Count, nil
}
