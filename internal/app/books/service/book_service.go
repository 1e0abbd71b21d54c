package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/util"
	"bookreviews/pkg/logger"
)

const serviceName = "books-service"

var (
	ErrEmptySearchTerm = errors.New("search term is required")
)

// BookService обрабатывает бизнес-логику каталога книг
// Координирует работу репозитория и Redis кеша
type BookService struct {
	bookRepo repository.BookRepository
	cache    util.BookCache
}

// NewBookService создает новый сервис книг с внедрением зависимостей
func NewBookService(bookRepo repository.BookRepository, cache util.BookCache) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		cache:    cache,
	}
}

// CreateBook добавляет новую книгу
// Рейтинг новой книги равен 0, пересчет не нужен - отзывов еще нет
func (s *BookService) CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error) {
	book := &entity.Book{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Description: req.Description,
		UserID:      userID,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	// Инвалидируем кеш списка, книга уже создана - проблемы с кешем не критичны
	if err := s.cache.DeleteBooks(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate books cache")
	}

	return book, nil
}

// GetBook получает книгу по ID
func (s *BookService) GetBook(ctx context.Context, id string) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// GetAllBooks получает список книг
// Выборка без фильтров кешируется в Redis, остальные идут мимо кеша
func (s *BookService) GetAllBooks(ctx context.Context, opts entity.ListBooksOptions) ([]entity.Book, error) {
	if opts.IsDefault() {
		books, err := s.cache.GetBooks(ctx)
		if err == nil && books != nil {
			return books, nil
		}
	}

	books, err := s.bookRepo.GetAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}

	if opts.IsDefault() {
		if err := s.cache.SetBooks(ctx, books, time.Hour); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache books")
		}
	}

	return books, nil
}

// SearchBooks ищет книги по подстроке в названии или авторе
// Пустой поисковый запрос - ошибка клиента
func (s *BookService) SearchBooks(ctx context.Context, term string) ([]entity.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptySearchTerm
	}

	books, err := s.bookRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	return books, nil
}
