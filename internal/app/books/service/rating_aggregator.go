package service

import (
	"context"
	"fmt"
	"math"

	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/util"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"
)

// RatingAggregator поддерживает инвариант производного поля:
// average_rating книги всегда равен округленному среднему текущих оценок,
// или 0, когда отзывов нет. Пересчет идемпотентен - повторный вызов без
// изменений в отзывах записывает то же значение
type RatingAggregator struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
	cache      util.BookCache
}

// NewRatingAggregator создает новый агрегатор рейтинга с внедрением зависимостей
func NewRatingAggregator(
	bookRepo repository.BookRepository,
	reviewRepo repository.ReviewRepository,
	cache util.BookCache,
) *RatingAggregator {
	return &RatingAggregator{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		cache:      cache,
	}
}

// Recompute пересчитывает среднюю оценку книги по всем ее отзывам
// и перезаписывает average_rating одним обновлением в books
func (a *RatingAggregator) Recompute(ctx context.Context, bookID string) error {
	timer := metrics.NewRatingRecomputeTimer(serviceName)

	avg, count, err := a.reviewRepo.AverageRatingByBook(ctx, bookID)
	if err != nil {
		timer.Error()
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	// Без отзывов рейтинг ровно 0, иначе среднее с округлением до десятых
	rating := 0.0
	if count > 0 {
		rating = roundToTenth(avg)
	}

	if err := a.bookRepo.UpdateAverageRating(ctx, bookID, rating); err != nil {
		timer.Error()
		return fmt.Errorf("failed to store average rating: %w", err)
	}

	// Кешированный список книг содержит average_rating и теперь устарел
	if a.cache != nil {
		if err := a.cache.DeleteBooks(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate books cache after rating recompute")
		}
	}

	timer.Success()
	return nil
}

// roundToTenth округляет до одного знака после запятой,
// половина всегда вверх: 4.26 -> 4.3, 3.25 -> 3.3
func roundToTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
