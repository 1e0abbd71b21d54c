package processor

import (
	"context"

	"bookreviews/pkg/logger"

	"github.com/robfig/cron/v3"
)

// BookIDLister отдает идентификаторы всех книг для сверки
type BookIDLister interface {
	GetAllIDs(ctx context.Context) ([]string, error)
}

// RatingRecomputer пересчитывает средний рейтинг одной книги
type RatingRecomputer interface {
	Recompute(ctx context.Context, bookID string) error
}

// CronScheduler периодически сверяет производные рейтинги всех книг
// Ошибки пересчета при мутациях отзывов не фатальны и проглатываются,
// фоновая сверка ограничивает время жизни такого устаревшего рейтинга
type CronScheduler struct {
	cron       *cron.Cron
	books      BookIDLister
	aggregator RatingRecomputer
}

func NewCronScheduler(books BookIDLister, aggregator RatingRecomputer) *CronScheduler {
	return &CronScheduler{
		cron:       cron.New(),
		books:      books,
		aggregator: aggregator,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting rating reconciliation scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.ReconcileRatings(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// ReconcileRatings пересчитывает рейтинг каждой книги
// Ошибка по одной книге не прерывает обход остальных
func (s *CronScheduler) ReconcileRatings(ctx context.Context) {
	ids, err := s.books.GetAllIDs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list books for rating reconciliation")
		return
	}

	failed := 0
	for _, id := range ids {
		if err := s.aggregator.Recompute(ctx, id); err != nil {
			failed++
			logger.Warn().Err(err).Str("book_id", id).Msg("Failed to reconcile book rating")
		}
	}

	logger.Info().
		Int("books", len(ids)).
		Int("failed", failed).
		Msg("Rating reconciliation completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping rating reconciliation scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Rating reconciliation scheduler stopped")
}
