package util

import (
	"context"
	"time"

	"bookreviews/internal/app/books/entity"
)

// BookCache интерфейс для работы с Redis кешем списка книг
// Используется для dependency injection и упрощения тестирования
type BookCache interface {
	SetBooks(ctx context.Context, books []entity.Book, ttl time.Duration) error
	GetBooks(ctx context.Context) ([]entity.Book, error)
	DeleteBooks(ctx context.Context) error
	Close() error
}
