package repository

import (
	"context"
	"errors"

	"bookreviews/internal/app/books/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrBookNotFound    = errors.New("book not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("duplicate review")
)

// BookRepository определяет методы для работы с книгами в MongoDB
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	GetAll(ctx context.Context, opts entity.ListBooksOptions) ([]entity.Book, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, term string) ([]entity.Book, error)
	UpdateAverageRating(ctx context.Context, id string, rating float64) error
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByBookID(ctx context.Context, bookID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	AverageRatingByBook(ctx context.Context, bookID string) (float64, int, error)
}
