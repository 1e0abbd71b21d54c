package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "books-service"

type bookRepository struct {
	collection *mongo.Collection
}

// NewBookRepository создает новый репозиторий книг
// Автоматически создает индексы для фильтрации и сортировки списка
func NewBookRepository(db *mongo.Database) BookRepository {
	collection := db.Collection("books")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "genre", Value: 1}},
			Options: options.Index().SetName("genre_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create book indexes")
	}

	return &bookRepository{
		collection: collection,
	}
}

// Create создает новую книгу
// Среднее значение рейтинга новой книги всегда 0 - отзывов еще нет
func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	book.CreatedAt = time.Now()
	book.AverageRating = 0

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "books")
	result, err := r.collection.InsertOne(ctx, book)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create book: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		book.ID = oid
	}

	return nil
}

// GetByID получает книгу по ID
func (r *bookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Некорректный hex не может ссылаться на существующую книгу
		return nil, ErrBookNotFound
	}

	var book entity.Book
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

// GetAll получает список книг с фильтрацией, сортировкой и пагинацией
func (r *bookRepository) GetAll(ctx context.Context, opts entity.ListBooksOptions) ([]entity.Book, error) {
	filter := bson.M{}
	if opts.Genre != "" {
		filter["genre"] = opts.Genre
	}
	if opts.Author != "" {
		filter["author"] = opts.Author
	}

	findOpts := options.Find().SetSort(parseSort(opts.Sort))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
		if opts.Page > 1 {
			findOpts.SetSkip(int64((opts.Page - 1) * opts.Limit))
		}
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "books")
	cursor, err := r.collection.Find(ctx, filter, findOpts)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

// GetAllIDs получает идентификаторы всех книг
// Используется фоновой сверкой рейтингов
func (r *bookRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	findOpts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find book ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode book ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}

	return ids, nil
}

// Search ищет книги по подстроке в названии или авторе без учета регистра
func (r *bookRepository) Search(ctx context.Context, term string) ([]entity.Book, error) {
	// Экранируем спецсимволы: ищем подстроку, а не регулярное выражение
	pattern := regexp.QuoteMeta(term)
	regex := primitive.Regex{Pattern: pattern, Options: "i"}

	filter := bson.M{
		"$or": []bson.M{
			{"title": regex},
			{"author": regex},
		},
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "books")
	cursor, err := r.collection.Find(ctx, filter)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

// UpdateAverageRating перезаписывает производное поле average_rating книги
// Единственная запись в books, которую делает пересчет рейтинга
func (r *bookRepository) UpdateAverageRating(ctx context.Context, id string, rating float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBookNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"average_rating": rating,
		},
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "books")
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update average rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBookNotFound
	}

	return nil
}

// parseSort преобразует параметр сортировки в формат MongoDB
// Префикс "-" означает сортировку по убыванию, по умолчанию -created_at
func parseSort(sort string) bson.D {
	if sort == "" {
		sort = "-created_at"
	}

	order := 1
	field := sort
	if strings.HasPrefix(sort, "-") {
		order = -1
		field = strings.TrimPrefix(sort, "-")
	}

	return bson.D{{Key: field, Value: order}}
}
