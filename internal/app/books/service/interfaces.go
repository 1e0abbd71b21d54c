package service

import (
	"context"
)

// RatingRecomputer пересчитывает производный средний рейтинг книги
// Отдельный интерфейс, чтобы lifecycle отзывов и фоновая сверка
// могли подменять агрегатор в тестах
type RatingRecomputer interface {
	Recompute(ctx context.Context, bookID string) error
}
