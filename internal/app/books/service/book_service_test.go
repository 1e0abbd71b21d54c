package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateBook_Success(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	req := &entity.CreateBookRequest{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"}

	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Book).ID = primitive.NewObjectID()
	})
	cache.On("DeleteBooks", ctx).Return(nil)

	book, err := service.CreateBook(ctx, "user-123", req)

	assert.NoError(t, err)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "user-123", book.UserID)
	cache.AssertCalled(t, "DeleteBooks", ctx)
}

func TestCreateBook_CacheErrorIgnored(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	req := &entity.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi"}

	bookRepo.On("Create", ctx, mock.Anything).Return(nil)
	cache.On("DeleteBooks", ctx).Return(errors.New("redis down"))

	book, err := service.CreateBook(ctx, "user-123", req)

	assert.NoError(t, err)
	assert.NotNil(t, book)
}

func TestCreateBook_RepoError(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()

	bookRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	book, err := service.CreateBook(ctx, "user-123", &entity.CreateBookRequest{Title: "X", Author: "Y", Genre: "Z"})

	assert.Error(t, err)
	assert.Nil(t, book)
	cache.AssertNotCalled(t, "DeleteBooks", mock.Anything)
}

func TestGetBook_NotFound(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	bookRepo.On("GetByID", ctx, id).Return(nil, repository.ErrBookNotFound)

	book, err := service.GetBook(ctx, id)

	assert.Nil(t, book)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestGetAllBooks_CacheHit(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	cached := []entity.Book{{ID: primitive.NewObjectID(), Title: "Cached"}}

	cache.On("GetBooks", ctx).Return(cached, nil)

	books, err := service.GetAllBooks(ctx, entity.ListBooksOptions{})

	assert.NoError(t, err)
	assert.Equal(t, cached, books)
	// При попадании в кеш база не трогается
	bookRepo.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)
}

func TestGetAllBooks_CacheMiss(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	opts := entity.ListBooksOptions{}
	stored := []entity.Book{{ID: primitive.NewObjectID(), Title: "Stored"}}

	cache.On("GetBooks", ctx).Return(nil, nil)
	bookRepo.On("GetAll", ctx, opts).Return(stored, nil)
	cache.On("SetBooks", ctx, stored, time.Hour).Return(nil)

	books, err := service.GetAllBooks(ctx, opts)

	assert.NoError(t, err)
	assert.Equal(t, stored, books)
	cache.AssertCalled(t, "SetBooks", ctx, stored, time.Hour)
}

func TestGetAllBooks_FilteredBypassesCache(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	opts := entity.ListBooksOptions{Genre: "Fantasy"}
	stored := []entity.Book{{ID: primitive.NewObjectID(), Genre: "Fantasy"}}

	bookRepo.On("GetAll", ctx, opts).Return(stored, nil)

	books, err := service.GetAllBooks(ctx, opts)

	assert.NoError(t, err)
	assert.Len(t, books, 1)
	cache.AssertNotCalled(t, "GetBooks", mock.Anything)
	cache.AssertNotCalled(t, "SetBooks", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchBooks_EmptyTerm(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	for _, term := range []string{"", "   "} {
		books, err := service.SearchBooks(context.Background(), term)

		assert.Nil(t, books)
		assert.ErrorIs(t, err, ErrEmptySearchTerm)
	}
	bookRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchBooks_Success(t *testing.T) {
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockBookCache)
	service := NewBookService(bookRepo, cache)

	ctx := context.Background()
	found := []entity.Book{{ID: primitive.NewObjectID(), Author: "J.R.R. Tolkien"}}

	bookRepo.On("Search", ctx, "tolkien").Return(found, nil)

	books, err := service.SearchBooks(ctx, "tolkien")

	assert.NoError(t, err)
	assert.Len(t, books, 1)
}
