package service

import (
	"context"
	"errors"
	"testing"

	"bookreviews/internal/app/books/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAggregatorMocks() (*mocks.MockBookRepository, *mocks.MockReviewRepository, *mocks.MockBookCache) {
	return new(mocks.MockBookRepository), new(mocks.MockReviewRepository), new(mocks.MockBookCache)
}

func TestRecompute_MeanIsRoundedToTenth(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()
	bookID := "book-1"

	// Среднее 4.26 должно сохраниться как 4.3
	reviewRepo.On("AverageRatingByBook", ctx, bookID).Return(4.26, 5, nil)
	bookRepo.On("UpdateAverageRating", ctx, bookID, 4.3).Return(nil)
	cache.On("DeleteBooks", ctx).Return(nil)

	err := aggregator.Recompute(ctx, bookID)

	assert.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRecompute_ZeroReviewsStoresZero(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()
	bookID := "book-empty"

	reviewRepo.On("AverageRatingByBook", ctx, bookID).Return(0.0, 0, nil)
	bookRepo.On("UpdateAverageRating", ctx, bookID, 0.0).Return(nil)
	cache.On("DeleteBooks", ctx).Return(nil)

	err := aggregator.Recompute(ctx, bookID)

	assert.NoError(t, err)
	bookRepo.AssertCalled(t, "UpdateAverageRating", ctx, bookID, 0.0)
}

func TestRecompute_Idempotent(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()
	bookID := "book-1"

	// Два вызова без изменений в отзывах записывают одно и то же значение
	reviewRepo.On("AverageRatingByBook", ctx, bookID).Return(3.5, 4, nil).Twice()
	bookRepo.On("UpdateAverageRating", ctx, bookID, 3.5).Return(nil).Twice()
	cache.On("DeleteBooks", ctx).Return(nil)

	assert.NoError(t, aggregator.Recompute(ctx, bookID))
	assert.NoError(t, aggregator.Recompute(ctx, bookID))

	bookRepo.AssertNumberOfCalls(t, "UpdateAverageRating", 2)
}

func TestRecompute_AggregationError(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()

	reviewRepo.On("AverageRatingByBook", ctx, "book-1").Return(0.0, 0, errors.New("db error"))

	err := aggregator.Recompute(ctx, "book-1")

	assert.Error(t, err)
	bookRepo.AssertNotCalled(t, "UpdateAverageRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecompute_StoreError(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()

	reviewRepo.On("AverageRatingByBook", ctx, "book-1").Return(4.0, 3, nil)
	bookRepo.On("UpdateAverageRating", ctx, "book-1", 4.0).Return(errors.New("write failed"))

	err := aggregator.Recompute(ctx, "book-1")

	assert.Error(t, err)
	cache.AssertNotCalled(t, "DeleteBooks", mock.Anything)
}

func TestRecompute_CacheErrorIgnored(t *testing.T) {
	bookRepo, reviewRepo, cache := newAggregatorMocks()
	aggregator := NewRatingAggregator(bookRepo, reviewRepo, cache)

	ctx := context.Background()

	reviewRepo.On("AverageRatingByBook", ctx, "book-1").Return(4.0, 3, nil)
	bookRepo.On("UpdateAverageRating", ctx, "book-1", 4.0).Return(nil)
	cache.On("DeleteBooks", ctx).Return(errors.New("redis down"))

	// Рейтинг записан, проблема с кешем не делает пересчет неудачным
	assert.NoError(t, aggregator.Recompute(ctx, "book-1"))
}

func TestRoundToTenth(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"half rounds up", 4.25, 4.3},
		{"above half rounds up", 4.26, 4.3},
		{"below half rounds down", 4.24, 4.2},
		{"mean of 3 4 5", 4.0, 4.0},
		{"mean of 3 4 5 2", 3.5, 3.5},
		{"one third", 10.0 / 3.0, 3.3},
		{"whole number", 5.0, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, roundToTenth(tt.in), 1e-9)
		})
	}
}
