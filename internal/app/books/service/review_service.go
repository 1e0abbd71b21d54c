package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/infrastructure"
	"bookreviews/internal/app/books/repository"
	"bookreviews/pkg/logger"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrBookNotFound    = errors.New("book not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewAuthor = errors.New("review belongs to another user")
	ErrDuplicateReview = errors.New("user already reviewed this book")
)

// ReviewService обрабатывает жизненный цикл отзывов
// Каждая подтвержденная мутация отзыва (создание, обновление, удаление)
// синхронно вызывает ровно один пересчет рейтинга затронутой книги
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	bookRepo      repository.BookRepository
	aggregator    RatingRecomputer
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
	aggregator RatingRecomputer,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		bookRepo:      bookRepo,
		aggregator:    aggregator,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв на существующую книгу
// Дубликат по паре (book_id, user_id) отклоняет уникальный индекс хранилища,
// а не проверка чтением - гонка двух параллельных запросов не даст два отзыва
func (s *ReviewService) CreateReview(ctx context.Context, bookID string, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	// Книга должна существовать до каких-либо записей
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to verify book: %w", err)
	}

	review := &entity.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Пересчет после подтвержденной вставки - новый отзыв уже виден агрегации
	s.recompute(ctx, bookID)

	s.publishReviewEvent(ctx, "REVIEW_CREATED", review)

	return review, nil
}

// GetReviewsByBook получает все отзывы книги, самые свежие первыми
func (s *ReviewService) GetReviewsByBook(ctx context.Context, bookID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByBookID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// UpdateReview обновляет отзыв с проверкой авторства
// Менять можно только оценку и комментарий: nil-поле остается как было,
// указатель на пустую строку стирает комментарий
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	// Мутация разрешена только автору отзыва, админ-обход не предусмотрен
	if review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.recompute(ctx, review.BookID)

	s.publishReviewEvent(ctx, "REVIEW_UPDATED", review)

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой авторства
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	// Ссылку на книгу запоминаем до удаления - после него отзыв ее не несет
	bookID := review.BookID

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.recompute(ctx, bookID)

	s.publishReviewEvent(ctx, "REVIEW_DELETED", review)

	return nil
}

// recompute вызывает пересчет рейтинга после подтвержденной мутации
// Ошибка пересчета не откатывает мутацию: отзывы - источник истины,
// рейтинг - производный кеш, который исправит следующая мутация или
// фоновая сверка
func (s *ReviewService) recompute(ctx context.Context, bookID string) {
	if err := s.aggregator.Recompute(ctx, bookID); err != nil {
		logger.Error().
			Err(err).
			Str("book_id", bookID).
			Msg("Failed to recompute average rating")
	}
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Отзыв уже сохранен, проблемы с Kafka не критичны
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		BookID:    review.BookID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to marshal review event")
		return
	}

	// Ключ = ReviewID для партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Msg("Failed to publish review event")
	}
}
