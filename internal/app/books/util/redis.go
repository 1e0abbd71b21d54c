package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName   = "books-service"
	booksCacheKey = "books:all"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SetBooks кеширует список книг без фильтров
// Кеш инвалидируется при добавлении книги и при пересчете рейтинга
func (r *RedisClient) SetBooks(ctx context.Context, books []entity.Book, ttl time.Duration) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal books: %w", err)
	}

	if err := r.client.Set(ctx, booksCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to set books in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) GetBooks(ctx context.Context) ([]entity.Book, error) {
	data, err := r.client.Get(ctx, booksCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, "books")
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, "get")
		return nil, fmt.Errorf("failed to get books from cache: %w", err)
	}

	var books []entity.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to unmarshal books: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "books")
	return books, nil
}

func (r *RedisClient) DeleteBooks(ctx context.Context) error {
	if err := r.client.Del(ctx, booksCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to delete books from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
